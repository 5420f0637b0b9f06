package state

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// NextHop is a candidate outgoing face toward a destination. Identity is the face uri alone.
type NextHop struct {
	FaceUri    string
	Cost       float64
	Hyperbolic bool
}

// AdjustedCost is the integer cost handed to the forwarder. Hyperbolic distances are small reals, so they are
// scaled before rounding to keep them distinguishable.
func (h NextHop) AdjustedCost() uint64 {
	c := h.Cost
	if h.Hyperbolic {
		c *= HyperbolicCostAdjustmentFactor
	}
	if c <= 0 {
		return 0
	}
	return uint64(math.Round(c))
}

func (h NextHop) String() string {
	if h.Hyperbolic {
		return fmt.Sprintf("%s (cost: %g, hyperbolic)", h.FaceUri, h.Cost)
	}
	return fmt.Sprintf("%s (cost: %g)", h.FaceUri, h.Cost)
}

func compareNextHop(a, b NextHop) int {
	return cmp.Or(cmp.Compare(a.Cost, b.Cost), cmp.Compare(a.FaceUri, b.FaceUri))
}

// NexthopList holds at most one NextHop per face, ordered by (cost, face)
type NexthopList struct {
	hops []NextHop
}

func NewNexthopList(hops ...NextHop) NexthopList {
	l := NexthopList{}
	for _, h := range hops {
		l.Add(h)
	}
	return l
}

// Add inserts hop. If the face is already present, the lower of the two costs is kept.
// Returns true if the list changed.
func (l *NexthopList) Add(hop NextHop) bool {
	idx := slices.IndexFunc(l.hops, func(h NextHop) bool {
		return h.FaceUri == hop.FaceUri
	})
	if idx != -1 {
		if l.hops[idx].Cost <= hop.Cost {
			return false
		}
		l.hops = slices.Delete(l.hops, idx, idx+1)
	}
	pos, _ := slices.BinarySearchFunc(l.hops, hop, compareNextHop)
	l.hops = slices.Insert(l.hops, pos, hop)
	return true
}

// Remove deletes the hop only if both the face and the cost match
func (l *NexthopList) Remove(hop NextHop) bool {
	idx := slices.IndexFunc(l.hops, func(h NextHop) bool {
		return h.FaceUri == hop.FaceUri && h.Cost == hop.Cost
	})
	if idx == -1 {
		return false
	}
	l.hops = slices.Delete(l.hops, idx, idx+1)
	return true
}

// Merge adds every hop of o into l
func (l *NexthopList) Merge(o NexthopList) {
	for _, h := range o.hops {
		l.Add(h)
	}
}

func (l *NexthopList) Find(face string) (NextHop, bool) {
	idx := slices.IndexFunc(l.hops, func(h NextHop) bool {
		return h.FaceUri == face
	})
	if idx == -1 {
		return NextHop{}, false
	}
	return l.hops[idx], true
}

func (l *NexthopList) Reset() {
	l.hops = nil
}

func (l NexthopList) Len() int {
	return len(l.hops)
}

// Hops returns a copy of the hops in order
func (l NexthopList) Hops() []NextHop {
	return slices.Clone(l.hops)
}

func (l NexthopList) Clone() NexthopList {
	return NexthopList{hops: slices.Clone(l.hops)}
}

// Truncate keeps only the n cheapest hops, n <= 0 keeps everything
func (l NexthopList) Truncate(n int) NexthopList {
	if n <= 0 || n >= len(l.hops) {
		return l.Clone()
	}
	return NexthopList{hops: slices.Clone(l.hops[:n])}
}

func (l NexthopList) Equal(o NexthopList) bool {
	return slices.Equal(l.hops, o.hops)
}

func (l NexthopList) String() string {
	parts := make([]string, 0, len(l.hops))
	for _, h := range l.hops {
		parts = append(parts, h.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
