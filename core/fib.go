package core

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/encodeous/nlsr/perf"
	"github.com/encodeous/nlsr/state"
)

// Fib receives the next hops computed for each name prefix. Both operations must be idempotent.
type Fib interface {
	Update(prefix state.Name, hops state.NexthopList)
	Remove(prefix state.Name)
}

// Registrar installs and withdraws individual routes in the forwarder
type Registrar interface {
	Register(prefix state.Name, hop state.NextHop)
	Unregister(prefix state.Name, face string)
}

type LogRegistrar struct {
	Log *slog.Logger
}

func (r LogRegistrar) Register(prefix state.Name, hop state.NextHop) {
	r.Log.Debug("register route", "prefix", prefix, "face", hop.FaceUri, "cost", hop.AdjustedCost())
}

func (r LogRegistrar) Unregister(prefix state.Name, face string) {
	r.Log.Debug("unregister route", "prefix", prefix, "face", face)
}

type FibEntry struct {
	Prefix   state.Name
	NextHops state.NexthopList
	SeqNo    uint64
}

// ForwardingTable keeps the routes currently installed in the forwarder and only pushes differences to it
type ForwardingTable struct {
	log               *slog.Logger
	registrar         Registrar
	maxFacesPerPrefix int
	entries           map[state.Name]*FibEntry
}

// NewForwardingTable creates a table that installs at most maxFacesPerPrefix hops per prefix, 0 meaning all of them
func NewForwardingTable(log *slog.Logger, registrar Registrar, maxFacesPerPrefix int) *ForwardingTable {
	return &ForwardingTable{
		log:               log,
		registrar:         registrar,
		maxFacesPerPrefix: maxFacesPerPrefix,
		entries:           make(map[state.Name]*FibEntry),
	}
}

func (f *ForwardingTable) Update(prefix state.Name, hops state.NexthopList) {
	capped := hops.Truncate(f.maxFacesPerPrefix)
	entry, ok := f.entries[prefix]
	if !ok {
		entry = &FibEntry{Prefix: prefix}
		f.entries[prefix] = entry
	} else if entry.NextHops.Equal(capped) {
		return
	}
	perf.FibUpdatesPerSecond.Add(1)
	perf.FibOperations.WithLabelValues("update").Inc()
	f.log.Debug("fib update", "prefix", prefix, "hops", capped)

	for _, h := range capped.Hops() {
		if old, ok := entry.NextHops.Find(h.FaceUri); ok && old.AdjustedCost() == h.AdjustedCost() {
			continue
		}
		f.registrar.Register(prefix, h)
	}
	for _, h := range entry.NextHops.Hops() {
		if _, ok := capped.Find(h.FaceUri); !ok {
			f.registrar.Unregister(prefix, h.FaceUri)
		}
	}
	entry.NextHops = capped
	entry.SeqNo++
}

func (f *ForwardingTable) Remove(prefix state.Name) {
	entry, ok := f.entries[prefix]
	if !ok {
		return
	}
	perf.FibUpdatesPerSecond.Add(1)
	perf.FibOperations.WithLabelValues("remove").Inc()
	f.log.Debug("fib remove", "prefix", prefix)
	for _, h := range entry.NextHops.Hops() {
		f.registrar.Unregister(prefix, h.FaceUri)
	}
	delete(f.entries, prefix)
}

func (f *ForwardingTable) Find(prefix state.Name) (*FibEntry, bool) {
	e, ok := f.entries[prefix]
	return e, ok
}

// Entries returns the installed entries ordered by prefix
func (f *ForwardingTable) Entries() []*FibEntry {
	keys := slices.Collect(maps.Keys(f.entries))
	state.SortNames(keys)
	out := make([]*FibEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.entries[k])
	}
	return out
}

// Clear withdraws every installed route
func (f *ForwardingTable) Clear() {
	for _, k := range slices.Collect(maps.Keys(f.entries)) {
		f.Remove(k)
	}
}
