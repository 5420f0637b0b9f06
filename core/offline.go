package core

import (
	"context"
	"log/slog"

	"github.com/encodeous/nlsr/state"
)

// CalculateOnce runs a single routing calculation over the LSAs of snap, as seen by the router configured in ncfg,
// without starting the main loop
func CalculateOnce(ncfg state.LocalCfg, snap *state.LsdbSnapshot, logger *slog.Logger, fib Fib) (*NlsrRouter, error) {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(context.Canceled)

	s := &state.State{
		Modules: make(map[string]state.NyModule),
		Env: &state.Env{
			Context:         ctx,
			Cancel:          cancel,
			DispatchChannel: make(chan func(*state.State) error, 128),
			LocalCfg:        ncfg,
			Log:             logger,
		},
	}
	r := &NlsrRouter{Fib: fib}
	err := r.Init(s)
	if err != nil {
		return nil, err
	}
	r.stopTimers()
	feed := &LsaFeed{}
	feed.Apply(s, r.Lsdb, snap)
	r.Calculate(s)
	return r, nil
}
