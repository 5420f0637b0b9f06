//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"slices"
	"sync"
	"time"

	"github.com/encodeous/nlsr/core"
	"github.com/encodeous/nlsr/state"
	"github.com/encodeous/tint"
)

type Signal chan bool

func NewSignal() Signal {
	return make(chan bool)
}
func (s Signal) Trigger() {
	select {
	case <-s:
	default:
		close(s)
	}
}
func (s Signal) Triggered() bool {
	select {
	case <-s:
		return true
	default:
		return false
	}
}
func (s Signal) Wait() {
	<-s
}

func RouterName(id string) state.Name {
	return state.MustName("/ndn/site/" + id)
}

func FaceOf(id string) string {
	return "udp4://" + id + ":6363"
}

// VirtualHarness runs several routers in one process. LSAs originated by a router are flooded to every other
// router, standing in for the sync protocol.
type VirtualHarness struct {
	Context context.Context
	Cancel  context.CancelCauseFunc
	Ids     []string
	Local   []state.LocalCfg
	States  []*state.State
	Verbose bool

	wg sync.WaitGroup
}

func (v *VirtualHarness) IndexOf(id string) int {
	return slices.Index(v.Ids, id)
}

func (v *VirtualHarness) NewNode(id string, prefixes ...string) *state.LocalCfg {
	interval := 20 * time.Millisecond
	cfg := state.LocalCfg{
		Router:              RouterName(id),
		MaxFacesPerPrefix:   1,
		RoutingCalcInterval: &interval,
	}
	for _, p := range prefixes {
		cfg.Prefixes = append(cfg.Prefixes, state.MustName(p))
	}
	v.Ids = append(v.Ids, id)
	v.Local = append(v.Local, cfg)
	return &v.Local[len(v.Local)-1]
}

// AddLink connects a and b in both directions
func (v *VirtualHarness) AddLink(a, b string, cost float64) {
	ai, bi := v.IndexOf(a), v.IndexOf(b)
	v.Local[ai].Neighbours = append(v.Local[ai].Neighbours, state.NeighbourCfg{Name: RouterName(b), FaceUri: FaceOf(b), Cost: cost})
	v.Local[bi].Neighbours = append(v.Local[bi].Neighbours, state.NeighbourCfg{Name: RouterName(a), FaceUri: FaceOf(a), Cost: cost})
}

func (v *VirtualHarness) logger(id string) *slog.Logger {
	level := slog.LevelInfo
	if v.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:        level,
		TimeFormat:   "15:04:05.000",
		CustomPrefix: id,
	}))
}

func (v *VirtualHarness) Start() chan error {
	ctx, cancel := context.WithCancelCause(context.Background())
	v.Context = ctx
	v.Cancel = cancel
	v.States = make([]*state.State, len(v.Ids))
	errChan := make(chan error, 128)
	started := make([]chan *state.State, len(v.Ids))

	for idx, id := range v.Ids {
		started[idx] = make(chan *state.State, 1)
		v.wg.Add(1)
		go func() {
			defer v.wg.Done()
			labels := pprof.Labels("nlsr node", id)
			pprof.Do(context.Background(), labels, func(_ context.Context) {
				var s *state.State
				cErr := core.Start(v.Local[idx], v.logger(id), func(ns *state.State) {
					s = ns
					started[idx] <- ns
				})
				if cErr != nil {
					errChan <- cErr
				}
				if s == nil {
					close(started[idx])
				}
			})
		}()
	}
	for idx := range v.Ids {
		select {
		case s, ok := <-started[idx]:
			if !ok {
				return errChan
			}
			v.States[idx] = s
		case <-ctx.Done():
			return errChan
		}
	}
	for idx := range v.Ids {
		_, err := v.States[idx].DispatchWait(func(s *state.State) (any, error) {
			v.attachFlooding(idx, s)
			return nil, nil
		})
		if err != nil {
			errChan <- err
		}
	}
	return errChan
}

// attachFlooding sends every LSA router idx originates to every other router. It runs on the dispatch goroutine of idx.
func (v *VirtualHarness) attachFlooding(idx int, s *state.State) {
	r := core.Get[*core.NlsrRouter](s)
	flood := func(lsa state.Lsa) {
		for other, o := range v.States {
			if other == idx {
				continue
			}
			go o.Dispatch(func(s *state.State) error {
				core.Get[*core.NlsrRouter](s).Lsdb.Install(lsa)
				return nil
			})
		}
	}
	r.Lsdb.OnChange(func(ev core.LsaEvent) {
		if ev.Key.Origin != s.Router || (ev.Kind != core.LsaInstalled && ev.Kind != core.LsaUpdated) {
			return
		}
		if lsa, ok := r.Lsdb.Find(ev.Key); ok {
			flood(lsa)
		}
	})
	for _, lsa := range r.Lsdb.All() {
		if lsa.Origin() == s.Router {
			flood(lsa)
		}
	}
}

// Do runs fun on the dispatch goroutine of router id
func (v *VirtualHarness) Do(id string, fun func(s *state.State, r *core.NlsrRouter) (any, error)) (any, error) {
	idx := v.IndexOf(id)
	if idx == -1 {
		return nil, fmt.Errorf("unknown node %s", id)
	}
	return v.States[idx].DispatchWait(func(s *state.State) (any, error) {
		return fun(s, core.Get[*core.NlsrRouter](s))
	})
}

// SetLink marks the link between a and b as up or down on both ends
func (v *VirtualHarness) SetLink(a, b string, up bool) error {
	status := state.StatusInactive
	if up {
		status = state.StatusActive
	}
	_, err := v.Do(a, func(s *state.State, r *core.NlsrRouter) (any, error) {
		return nil, r.SetNeighbourStatus(s, RouterName(b), status)
	})
	if err != nil {
		return err
	}
	_, err = v.Do(b, func(s *state.State, r *core.NlsrRouter) (any, error) {
		return nil, r.SetNeighbourStatus(s, RouterName(a), status)
	})
	return err
}

// Route returns the FIB next hops of id for prefix
func (v *VirtualHarness) Route(id string, prefix string) ([]state.NextHop, error) {
	res, err := v.Do(id, func(s *state.State, r *core.NlsrRouter) (any, error) {
		f, ok := r.Fib.(*core.ForwardingTable)
		if !ok {
			return nil, errors.New("fib is not a forwarding table")
		}
		e, ok := f.Find(state.MustName(prefix))
		if !ok {
			return []state.NextHop(nil), nil
		}
		return e.NextHops.Hops(), nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]state.NextHop), nil
}

func (v *VirtualHarness) Stop() {
	v.Cancel(fmt.Errorf("stopping harness"))
	for _, s := range v.States {
		if s != nil {
			s.Cancel(fmt.Errorf("stopping harness"))
		}
	}
	v.wg.Wait()
}
