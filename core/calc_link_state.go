package core

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/encodeous/nlsr/perf"
	"github.com/encodeous/nlsr/state"
)

const (
	noParent  = -1
	noNextHop = -1
)

// dijkstra holds single-source shortest path results over one adjacency matrix
type dijkstra struct {
	parent   []int
	distance []float64
}

func runDijkstra(m *AdjMatrix, source int) *dijkstra {
	n := m.Size()
	d := &dijkstra{
		parent:   make([]int, n),
		distance: make([]float64, n),
	}
	q := make([]int, n)
	for i := range n {
		d.parent[i] = noParent
		d.distance[i] = math.Inf(1)
		q[i] = i
	}
	d.distance[source] = 0

	for head := 0; head < n; head++ {
		// order the unvisited part of the queue by distance, ties broken by index
		slices.SortFunc(q[head:], func(a, b int) int {
			return cmp.Or(cmp.Compare(d.distance[a], d.distance[b]), cmp.Compare(a, b))
		})
		u := q[head]
		if math.IsInf(d.distance[u], 1) {
			// everything left is unreachable
			break
		}
		for v := head + 1; v < n; v++ {
			node := q[v]
			cost := m.At(u, node)
			if cost < 0 {
				continue
			}
			if alt := d.distance[u] + cost; alt < d.distance[node] {
				d.distance[node] = alt
				d.parent[node] = u
			}
		}
	}
	return d
}

// nextHop walks the parent chain from dest back to source, returning the first router after source
func (d *dijkstra) nextHop(dest, source int) int {
	hop := noNextHop
	for d.parent[dest] != noParent {
		hop = dest
		dest = d.parent[dest]
	}
	if dest != source {
		return noNextHop
	}
	return hop
}

// LinkStateCalculator computes next hops by running dijkstra over the reconciled adjacency matrix
type LinkStateCalculator struct {
	Log *slog.Logger
	// MaxFacesPerPrefix == 1 computes a single path, any other value computes one path per direct link
	MaxFacesPerPrefix int
}

func (c *LinkStateCalculator) Calculate(nm *NameMap, rt *RoutingTable, lsas []*state.AdjLsa, self state.Name, adjacencies *state.AdjacencyList) {
	c.Log.Debug("calculating link state routing table", "routers", nm.Size())
	perf.RouteCalculations.WithLabelValues("link-state").Inc()

	m := BuildAdjMatrix(lsas, nm, c.Log)
	c.Log.Debug("adjacency matrix\n" + m.Dump(nm))

	source, ok := nm.MappingNo(self)
	if !ok {
		c.Log.Warn("this router is not in the adjacency matrix, no routes can be calculated", "router", self)
		return
	}

	if c.MaxFacesPerPrefix == 1 {
		d := runDijkstra(m, source)
		c.addAllNextHops(d, nm, rt, source, adjacencies)
		return
	}

	// one run per direct link, with every other link of this router removed
	links := m.Links(source)
	original := slices.Clone(m.Row(source))
	for _, link := range links {
		m.IsolateLink(source, link, original[link])
		d := runDijkstra(m, source)
		c.addAllNextHops(d, nm, rt, source, adjacencies)
	}
	m.SetRow(source, original)
}

func (c *LinkStateCalculator) addAllNextHops(d *dijkstra, nm *NameMap, rt *RoutingTable, source int, adjacencies *state.AdjacencyList) {
	for i := range nm.Size() {
		if i == source {
			continue
		}
		hop := d.nextHop(i, source)
		if hop == noNextHop {
			continue
		}
		dest, _ := nm.RouterName(i)
		hopName, _ := nm.RouterName(hop)
		face, ok := adjacencies.FaceUri(hopName)
		if !ok {
			c.Log.Warn("next hop is not a neighbour of this router", "destination", dest, "next_hop", hopName)
			continue
		}
		c.Log.Debug("adding next hop", "destination", dest, "next_hop", hopName, "cost", d.distance[i])
		rt.AddNextHop(dest, state.NextHop{
			FaceUri: face,
			Cost:    d.distance[i],
		})
	}
}
