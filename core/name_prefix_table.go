package core

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/encodeous/nlsr/perf"
	"github.com/encodeous/nlsr/state"
)

type NamePrefixTableEntry struct {
	Prefix   state.Name
	origins  []*RoutingTablePoolEntry
	NextHops state.NexthopList
}

// Origins returns the routers advertising this prefix
func (e *NamePrefixTableEntry) Origins() []state.Name {
	out := make([]state.Name, 0, len(e.origins))
	for _, o := range e.origins {
		out = append(out, o.Destination)
	}
	return out
}

func (e *NamePrefixTableEntry) addPoolEntry(p *RoutingTablePoolEntry) bool {
	if slices.Contains(e.origins, p) {
		return false
	}
	e.origins = append(e.origins, p)
	return true
}

func (e *NamePrefixTableEntry) removePoolEntry(p *RoutingTablePoolEntry) bool {
	idx := slices.Index(e.origins, p)
	if idx == -1 {
		return false
	}
	e.origins = slices.Delete(e.origins, idx, idx+1)
	return true
}

// generateNextHops merges the next hops of every origin, keeping the cheapest cost per face
func (e *NamePrefixTableEntry) generateNextHops() {
	e.NextHops.Reset()
	for _, o := range e.origins {
		e.NextHops.Merge(o.NextHops)
	}
}

// NamePrefixTable maps every advertised name prefix to the union of next hops toward its origin routers
type NamePrefixTable struct {
	log     *slog.Logger
	rt      *RoutingTable
	fib     Fib
	entries []*NamePrefixTableEntry
	index   map[state.Name]*NamePrefixTableEntry
	pool    map[state.Name]*RoutingTablePoolEntry
}

func NewNamePrefixTable(log *slog.Logger, rt *RoutingTable, fib Fib) *NamePrefixTable {
	return &NamePrefixTable{
		log:   log,
		rt:    rt,
		fib:   fib,
		index: make(map[state.Name]*NamePrefixTableEntry),
		pool:  make(map[state.Name]*RoutingTablePoolEntry),
	}
}

func (t *NamePrefixTable) propagate(e *NamePrefixTableEntry) {
	e.generateNextHops()
	if e.NextHops.Len() > 0 {
		t.fib.Update(e.Prefix, e.NextHops.Clone())
	} else {
		// still advertised but unreachable, a later calculation may add next hops
		t.fib.Remove(e.Prefix)
	}
}

// AddEntry records that origin advertises prefix
func (t *NamePrefixTable) AddEntry(prefix, origin state.Name) {
	p, ok := t.pool[origin]
	if !ok {
		hops := state.NewNexthopList()
		if rte, ok := t.rt.Find(origin); ok {
			hops = rte.NextHops.Clone()
		}
		p = newPoolEntry(origin, hops)
		t.pool[origin] = p
	}

	e, ok := t.index[prefix]
	if !ok {
		e = &NamePrefixTableEntry{Prefix: prefix}
		t.index[prefix] = e
		t.entries = append(t.entries, e)
		perf.NamePrefixTableEntries.Set(float64(len(t.entries)))
	}
	if e.addPoolEntry(p) {
		p.UseCount++
		p.prefixes[prefix] = e
	}
	t.log.Debug("npt add", "prefix", prefix, "origin", origin)
	t.propagate(e)
}

// RemoveEntry records that origin no longer advertises prefix
func (t *NamePrefixTable) RemoveEntry(prefix, origin state.Name) {
	p, ok := t.pool[origin]
	if !ok {
		t.log.Debug("npt remove: unknown origin", "prefix", prefix, "origin", origin)
		return
	}
	e, ok := t.index[prefix]
	if !ok {
		t.log.Debug("npt remove: unknown prefix", "prefix", prefix, "origin", origin)
		return
	}
	if e.removePoolEntry(p) {
		p.UseCount--
		delete(p.prefixes, prefix)
		if p.UseCount == 0 {
			delete(t.pool, origin)
		}
	}
	t.log.Debug("npt remove", "prefix", prefix, "origin", origin)

	if len(e.origins) == 0 {
		delete(t.index, prefix)
		t.entries = slices.DeleteFunc(t.entries, func(x *NamePrefixTableEntry) bool {
			return x == e
		})
		perf.NamePrefixTableEntries.Set(float64(len(t.entries)))
		t.fib.Remove(prefix)
		return
	}
	t.propagate(e)
}

// UpdateWithNewRoute refreshes every pool entry from the rebuilt routing table, then pushes each prefix to the FIB once
func (t *NamePrefixTable) UpdateWithNewRoute(rt *RoutingTable) {
	t.rt = rt
	for _, p := range t.pool {
		p.refresh(rt)
	}
	for _, e := range slices.Clone(t.entries) {
		t.propagate(e)
	}
}

func (t *NamePrefixTable) Find(prefix state.Name) (*NamePrefixTableEntry, bool) {
	e, ok := t.index[prefix]
	return e, ok
}

// Entries returns the entries ordered by prefix
func (t *NamePrefixTable) Entries() []*NamePrefixTableEntry {
	out := slices.Clone(t.entries)
	state.SortByName(out, func(e *NamePrefixTableEntry) state.Name {
		return e.Prefix
	})
	return out
}

func (t *NamePrefixTable) PoolEntry(origin state.Name) (*RoutingTablePoolEntry, bool) {
	p, ok := t.pool[origin]
	return p, ok
}

func (t *NamePrefixTable) PoolSize() int {
	return len(t.pool)
}

func (t *NamePrefixTable) PoolOrigins() []state.Name {
	out := slices.Collect(maps.Keys(t.pool))
	state.SortNames(out)
	return out
}

func (t *NamePrefixTable) Len() int {
	return len(t.entries)
}
