package core

import (
	"github.com/encodeous/nlsr/state"
)

// RoutingTablePoolEntry is a shared copy of the routing table entry of one origin router. Every name prefix
// advertised by that router references the same pool entry, so a routing change is applied once per router.
type RoutingTablePoolEntry struct {
	RoutingTableEntry
	// UseCount is the number of name prefix table entries referencing this entry
	UseCount int
	prefixes map[state.Name]*NamePrefixTableEntry
}

func newPoolEntry(dest state.Name, hops state.NexthopList) *RoutingTablePoolEntry {
	return &RoutingTablePoolEntry{
		RoutingTableEntry: RoutingTableEntry{
			Destination: dest,
			NextHops:    hops,
		},
		prefixes: make(map[state.Name]*NamePrefixTableEntry),
	}
}

// refresh replaces the next hops with those of the routing table, or clears them if the router is unreachable
func (p *RoutingTablePoolEntry) refresh(rt *RoutingTable) {
	if e, ok := rt.Find(p.Destination); ok {
		p.NextHops = e.NextHops.Clone()
	} else {
		p.NextHops.Reset()
	}
}
