package core

import (
	"maps"
	"slices"

	"github.com/encodeous/nlsr/state"
)

type RoutingTableEntry struct {
	Destination state.Name
	NextHops    state.NexthopList
}

// RoutingTable maps destination routers to next hops. It is rebuilt from scratch on every calculation.
// The dry-run table holds hyperbolic results that are computed for comparison but never installed.
type RoutingTable struct {
	live   map[state.Name]*RoutingTableEntry
	dryRun map[state.Name]*RoutingTableEntry

	// Calculating is set while a calculation is running
	Calculating bool
	// Scheduled is set while a calculation is pending
	Scheduled bool
}

func NewRoutingTable() *RoutingTable {
	return &RoutingTable{
		live:   make(map[state.Name]*RoutingTableEntry),
		dryRun: make(map[state.Name]*RoutingTableEntry),
	}
}

func addNextHop(table map[state.Name]*RoutingTableEntry, dest state.Name, hop state.NextHop) {
	entry, ok := table[dest]
	if !ok {
		entry = &RoutingTableEntry{Destination: dest}
		table[dest] = entry
	}
	entry.NextHops.Add(hop)
}

func sortedEntries(table map[state.Name]*RoutingTableEntry) []*RoutingTableEntry {
	keys := slices.Collect(maps.Keys(table))
	state.SortNames(keys)
	out := make([]*RoutingTableEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, table[k])
	}
	return out
}

func (rt *RoutingTable) AddNextHop(dest state.Name, hop state.NextHop) {
	addNextHop(rt.live, dest, hop)
}

func (rt *RoutingTable) AddNextHopToDryRun(dest state.Name, hop state.NextHop) {
	addNextHop(rt.dryRun, dest, hop)
}

func (rt *RoutingTable) Find(dest state.Name) (*RoutingTableEntry, bool) {
	e, ok := rt.live[dest]
	return e, ok
}

func (rt *RoutingTable) FindDryRun(dest state.Name) (*RoutingTableEntry, bool) {
	e, ok := rt.dryRun[dest]
	return e, ok
}

func (rt *RoutingTable) Clear() {
	clear(rt.live)
}

func (rt *RoutingTable) ClearDryRun() {
	clear(rt.dryRun)
}

// Entries returns the live entries ordered by destination
func (rt *RoutingTable) Entries() []*RoutingTableEntry {
	return sortedEntries(rt.live)
}

func (rt *RoutingTable) DryRunEntries() []*RoutingTableEntry {
	return sortedEntries(rt.dryRun)
}

func (rt *RoutingTable) Len() int {
	return len(rt.live)
}
