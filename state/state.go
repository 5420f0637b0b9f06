package state

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var (
	NodeConfigPath   = "node.yaml"
	LsdbSnapshotPath = ""
)

type NyModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on a single Goroutine
type State struct {
	*Env
	Modules     map[string]NyModule
	Adjacencies *AdjacencyList
}

func (s *State) GetModule(name string) NyModule {
	return s.Modules[name]
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	LocalCfg
	Context  context.Context
	Cancel   context.CancelCauseFunc
	Log      *slog.Logger
	Started  atomic.Bool
	Stopping atomic.Bool
}
