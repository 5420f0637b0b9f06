package core

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/encodeous/nlsr/perf"
	"github.com/encodeous/nlsr/state"
)

var (
	ErrUnknownDistance = errors.New("unknown hyperbolic distance")
	ErrMissingLsa      = fmt.Errorf("%w: no coordinate lsa", ErrUnknownDistance)
	ErrInvalidGeometry = fmt.Errorf("%w: invalid coordinates", ErrUnknownDistance)
)

// CoordinateSource finds the coordinate LSA of a router
type CoordinateSource interface {
	FindCoordinateLsa(origin state.Name) (*state.CoordinateLsa, bool)
}

// angularDistance returns the angle between two points on the unit n-sphere given in spherical coordinates
func angularDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: angle vectors have different sizes %d and %d", ErrInvalidGeometry, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: no angles", ErrInvalidGeometry)
	}
	if err := checkAngles(a); err != nil {
		return 0, err
	}
	if err := checkAngles(b); err != nil {
		return 0, err
	}
	n := len(a)

	// first and last cartesian components
	x0 := math.Cos(a[0]) * math.Cos(b[0])
	xn := math.Sin(a[n-1]) * math.Sin(b[n-1])
	for k := 0; k < n-1; k++ {
		xn *= math.Sin(a[k]) * math.Sin(b[k])
	}
	inner := x0 + xn

	for m := 1; m < n; m++ {
		term := math.Cos(a[m]) * math.Cos(b[m])
		for l := 0; l < m; l++ {
			term *= math.Sin(a[l]) * math.Sin(b[l])
		}
		inner += term
	}
	return math.Acos(max(-1, min(1, inner))), nil
}

func checkAngles(angles []float64) error {
	for i, theta := range angles {
		upper := math.Pi
		if i == len(angles)-1 {
			upper = 2 * math.Pi
		}
		if theta < 0 || theta > upper {
			return fmt.Errorf("%w: angle %d = %g outside [0, %g]", ErrInvalidGeometry, i, theta, upper)
		}
	}
	return nil
}

// HyperbolicDistance is the distance between two routers in the hyperbolic plane of curvature -1
func HyperbolicDistance(a, b *state.CoordinateLsa) (float64, error) {
	dTheta, err := angularDistance(a.Angles, b.Angles)
	if err != nil {
		return 0, err
	}
	if dTheta <= 0 || a.Radius <= 0 || b.Radius <= 0 {
		return 0, fmt.Errorf("%w: r1 = %g, r2 = %g, dtheta = %g", ErrInvalidGeometry, a.Radius, b.Radius, dTheta)
	}
	const zeta = 1.0
	x := math.Cosh(zeta*a.Radius)*math.Cosh(zeta*b.Radius) -
		math.Sinh(zeta*a.Radius)*math.Sinh(zeta*b.Radius)*math.Cos(dTheta)
	return math.Acosh(x) / zeta, nil
}

// HyperbolicCalculator computes next hops by greedy forwarding: each neighbour is a candidate for every destination,
// at the cost of the neighbour's hyperbolic distance to that destination
type HyperbolicCalculator struct {
	Log    *slog.Logger
	DryRun bool
}

func (c *HyperbolicCalculator) distance(lsas CoordinateSource, src, dest state.Name) (float64, error) {
	srcLsa, ok := lsas.FindCoordinateLsa(src)
	if !ok {
		return 0, fmt.Errorf("%w for %s", ErrMissingLsa, src)
	}
	destLsa, ok := lsas.FindCoordinateLsa(dest)
	if !ok {
		return 0, fmt.Errorf("%w for %s", ErrMissingLsa, dest)
	}
	return HyperbolicDistance(srcLsa, destLsa)
}

func (c *HyperbolicCalculator) add(rt *RoutingTable, dest state.Name, hop state.NextHop) {
	if c.DryRun {
		rt.AddNextHopToDryRun(dest, hop)
	} else {
		rt.AddNextHop(dest, hop)
	}
}

func (c *HyperbolicCalculator) Calculate(nm *NameMap, rt *RoutingTable, lsas CoordinateSource, self state.Name, adjacencies *state.AdjacencyList) {
	c.Log.Debug("calculating hyperbolic routing table", "routers", nm.Size(), "dry_run", c.DryRun)
	perf.RouteCalculations.WithLabelValues("hyperbolic").Inc()

	selfIdx, selfOk := nm.MappingNo(self)

	for _, adj := range adjacencies.All() {
		if adj.Status == state.StatusInactive || adj.Name == self {
			continue
		}
		// a neighbour is always reachable through its own face
		c.add(rt, adj.Name, state.NextHop{FaceUri: adj.FaceUri, Cost: 0, Hyperbolic: true})

		srcIdx, ok := nm.MappingNo(adj.Name)
		if !ok {
			c.Log.Warn("neighbour has no coordinate lsa", "neighbour", adj.Name)
			continue
		}
		if !selfOk {
			continue
		}

		for destIdx := range nm.Size() {
			if destIdx == selfIdx || destIdx == srcIdx {
				continue
			}
			dest, _ := nm.RouterName(destIdx)
			d, err := c.distance(lsas, adj.Name, dest)
			if err != nil {
				if errors.Is(err, ErrInvalidGeometry) {
					c.Log.Error("could not calculate hyperbolic distance", "from", adj.Name, "to", dest, "error", err)
				} else {
					c.Log.Warn("could not calculate hyperbolic distance", "from", adj.Name, "to", dest, "error", err)
				}
				continue
			}
			c.add(rt, dest, state.NextHop{FaceUri: adj.FaceUri, Cost: d, Hyperbolic: true})
		}
	}
}
