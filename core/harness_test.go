package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/nlsr/state"
	"github.com/google/go-cmp/cmp"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

// FibHarness records every call made to the Fib and Registrar interfaces
type FibHarness struct {
	actions []HarnessEvent
}

func (h *FibHarness) Update(prefix state.Name, hops state.NexthopList) {
	h.actions = append(h.actions, MakeEvent("UPDATE", prefix, hops.String()))
}

func (h *FibHarness) Remove(prefix state.Name) {
	h.actions = append(h.actions, MakeEvent("REMOVE", prefix))
}

func (h *FibHarness) Register(prefix state.Name, hop state.NextHop) {
	h.actions = append(h.actions, MakeEvent("REGISTER", prefix, hop.FaceUri, hop.AdjustedCost()))
}

func (h *FibHarness) Unregister(prefix state.Name, face string) {
	h.actions = append(h.actions, MakeEvent("UNREGISTER", prefix, face))
}

func (h *FibHarness) GetActions() HarnessEvents {
	x := h.actions
	h.actions = make([]HarnessEvent, 0)
	return x
}

type HarnessEvents []HarnessEvent

func (e HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range e {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

func (e HarnessEvents) count(msg string, args ...any) int {
	n := 0
	for _, event := range e {
		if event.Message != msg || len(event.Args) < len(args) {
			continue
		}
		match := true
		for i, arg := range args {
			if !cmp.Equal(event.Args[i], arg) {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.count(msg, args...) > 0 {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.count(msg, args...) > 0 {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

func (e HarnessEvents) AssertCount(t *testing.T, n int, msg string, args ...any) {
	t.Helper()
	if c := e.count(msg, args...); c != n {
		t.Fatal("Expected ", n, " events ", msg, " with args: ", args, " but found ", c, " in ", e)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func rn(name string) state.Name {
	return state.MustName("/ndn/site/" + name)
}

func face(name string) string {
	return "udp4://" + strings.ToLower(name) + ":6363"
}

func link(name string, cost float64) state.Adjacent {
	return state.Adjacent{
		Name:     rn(name),
		FaceUri:  face(name),
		LinkCost: cost,
		Status:   state.StatusActive,
	}
}

func adjLsa(origin string, seq uint64, links ...state.Adjacent) *state.AdjLsa {
	return &state.AdjLsa{
		LsaHeader:   state.LsaHeader{OriginRouter: rn(origin), Seq: seq},
		Adjacencies: links,
	}
}

func coordLsa(origin string, seq uint64, radius float64, angles ...float64) *state.CoordinateLsa {
	return &state.CoordinateLsa{
		LsaHeader: state.LsaHeader{OriginRouter: rn(origin), Seq: seq},
		Radius:    radius,
		Angles:    angles,
	}
}

func nameLsa(origin string, seq uint64, prefixes ...string) *state.NameLsa {
	names := make([]state.Name, 0, len(prefixes))
	for _, p := range prefixes {
		names = append(names, state.MustName(p))
	}
	return &state.NameLsa{
		LsaHeader: state.LsaHeader{OriginRouter: rn(origin), Seq: seq},
		Prefixes:  names,
	}
}

// linkStateNet builds the adjacency LSAs of an undirected network given as (a, b, cost) triples
func linkStateNet(edges ...state.Pair[string, state.Pair[string, float64]]) []*state.AdjLsa {
	links := make(map[string][]state.Adjacent)
	order := make([]string, 0)
	add := func(from, to string, cost float64) {
		if _, ok := links[from]; !ok {
			order = append(order, from)
		}
		links[from] = append(links[from], link(to, cost))
	}
	for _, e := range edges {
		add(e.V1, e.V2.V1, e.V2.V2)
		add(e.V2.V1, e.V1, e.V2.V2)
	}
	slices.Sort(order)
	out := make([]*state.AdjLsa, 0, len(order))
	for _, r := range order {
		out = append(out, adjLsa(r, 1, links[r]...))
	}
	return out
}

func edge(a, b string, cost float64) state.Pair[string, state.Pair[string, float64]] {
	return state.Pair[string, state.Pair[string, float64]]{V1: a, V2: state.Pair[string, float64]{V1: b, V2: cost}}
}

// selfAdjacencies is the adjacency list of router self, taken from its own LSA
func selfAdjacencies(lsas []*state.AdjLsa, self string) *state.AdjacencyList {
	for _, l := range lsas {
		if l.Origin() == rn(self) {
			return state.NewAdjacencyList(l.Adjacencies...)
		}
	}
	return state.NewAdjacencyList()
}

func newTestState(cfg state.LocalCfg) (*state.State, chan func(*state.State) error, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(context.Background())
	dispatch := make(chan func(*state.State) error, 128)
	state.ExpandLocalConfig(&cfg)
	s := &state.State{
		Modules: make(map[string]state.NyModule),
		Env: &state.Env{
			Context:         ctx,
			Cancel:          cancel,
			DispatchChannel: dispatch,
			LocalCfg:        cfg,
			Log:             testLogger(),
		},
	}
	return s, dispatch, cancel
}

func hopsOf(l state.NexthopList) []state.NextHop {
	return l.Hops()
}
