//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/encodeous/nlsr/core"
	"github.com/encodeous/nlsr/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// diamond builds the following network:
//
//	     10
//	  a ---- b
//	  |      |
//	25|      |10
//	  |      |
//	  c -----+
//	  |
//	 5|
//	  d
func diamond(vh *VirtualHarness) {
	vh.NewNode("a", "/ndn/a")
	vh.NewNode("b", "/ndn/b")
	vh.NewNode("c", "/ndn/c")
	vh.NewNode("d", "/ndn/video", "/ndn/audio")
	vh.AddLink("a", "b", 10)
	vh.AddLink("b", "c", 10)
	vh.AddLink("a", "c", 25)
	vh.AddLink("c", "d", 5)
}

func waitRoute(t *testing.T, vh *VirtualHarness, id, prefix string, expected ...state.NextHop) {
	t.Helper()
	assert.Eventually(t, func() bool {
		hops, err := vh.Route(id, prefix)
		return err == nil && assert.ObjectsAreEqual(expected, hops)
	}, 10*time.Second, 20*time.Millisecond, "%s never routed %s via %v", id, prefix, expected)
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{}
	vh.NewNode("node1")
	vh.NewNode("node2")
	vh.NewNode("node3")
	vh.AddLink("node1", "node2", 1)
	vh.AddLink("node2", "node3", 1)
	errs := vh.Start()
	select {
	case <-time.After(500 * time.Millisecond):
	case err := <-errs:
		t.Error(err)
	}
	vh.Stop()
}

func TestConvergence(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{}
	diamond(vh)
	errs := vh.Start()
	defer vh.Stop()
	select {
	case err := <-errs:
		t.Fatal(err)
	default:
	}

	waitRoute(t, vh, "a", "/ndn/video", state.NextHop{FaceUri: FaceOf("b"), Cost: 25})
	waitRoute(t, vh, "a", "/ndn/audio", state.NextHop{FaceUri: FaceOf("b"), Cost: 25})
	waitRoute(t, vh, "d", "/ndn/a", state.NextHop{FaceUri: FaceOf("c"), Cost: 25})
	waitRoute(t, vh, "b", "/ndn/c", state.NextHop{FaceUri: FaceOf("c"), Cost: 10})
	// router names are routable too
	waitRoute(t, vh, "a", "/ndn/site/d", state.NextHop{FaceUri: FaceOf("b"), Cost: 25})

	// every router knows every other router's LSAs
	for _, id := range vh.Ids {
		n, err := vh.Do(id, func(s *state.State, r *core.NlsrRouter) (any, error) {
			return len(r.Lsdb.AdjLsas()), nil
		})
		require.NoError(t, err)
		assert.Equal(t, 4, n, "router %s", id)
	}
}

func TestLinkFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{}
	diamond(vh)
	vh.Start()
	defer vh.Stop()

	waitRoute(t, vh, "a", "/ndn/video", state.NextHop{FaceUri: FaceOf("b"), Cost: 25})

	require.NoError(t, vh.SetLink("a", "b", false))
	waitRoute(t, vh, "a", "/ndn/video", state.NextHop{FaceUri: FaceOf("c"), Cost: 30})
	waitRoute(t, vh, "a", "/ndn/b", state.NextHop{FaceUri: FaceOf("c"), Cost: 35})
	waitRoute(t, vh, "b", "/ndn/a", state.NextHop{FaceUri: FaceOf("c"), Cost: 35})

	require.NoError(t, vh.SetLink("a", "b", true))
	waitRoute(t, vh, "a", "/ndn/video", state.NextHop{FaceUri: FaceOf("b"), Cost: 25})
}

func TestPartition(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{}
	diamond(vh)
	vh.Start()
	defer vh.Stop()

	waitRoute(t, vh, "a", "/ndn/video", state.NextHop{FaceUri: FaceOf("b"), Cost: 25})
	require.NoError(t, vh.SetLink("c", "d", false))
	// d is cut off, its prefixes stay known but have no route
	waitRoute(t, vh, "a", "/ndn/video")
	waitRoute(t, vh, "d", "/ndn/a")
}

func TestMultiPath(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{}
	diamond(vh)
	vh.Local[vh.IndexOf("a")].MaxFacesPerPrefix = 0
	vh.Start()
	defer vh.Stop()

	waitRoute(t, vh, "a", "/ndn/video",
		state.NextHop{FaceUri: FaceOf("b"), Cost: 25},
		state.NextHop{FaceUri: FaceOf("c"), Cost: 30},
	)
}

func TestHyperbolic(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{}
	diamond(vh)
	coords := map[string]state.CoordinateCfg{
		"a": {Radius: 1, Angles: []float64{0.5}},
		"b": {Radius: 1, Angles: []float64{1}},
		"c": {Radius: 2, Angles: []float64{2}},
		"d": {Radius: 3, Angles: []float64{3}},
	}
	for i, id := range vh.Ids {
		c := coords[id]
		vh.Local[i].Coordinates = &c
		vh.Local[i].Hyperbolic = state.HyperbolicOn
	}
	vh.Start()
	defer vh.Stop()

	b := vh.Local[vh.IndexOf("b")].Coordinates
	d := vh.Local[vh.IndexOf("d")].Coordinates
	distB, err := core.HyperbolicDistance(
		&state.CoordinateLsa{Radius: b.Radius, Angles: b.Angles},
		&state.CoordinateLsa{Radius: d.Radius, Angles: d.Angles},
	)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		hops, err := vh.Route("a", "/ndn/video")
		if err != nil || len(hops) != 1 {
			return false
		}
		return hops[0].Hyperbolic && (hops[0].FaceUri == FaceOf("b") && hops[0].Cost == distB || hops[0].FaceUri == FaceOf("c"))
	}, 10*time.Second, 20*time.Millisecond)
	// neighbours are always one hop away at no cost
	waitRoute(t, vh, "a", "/ndn/b", state.NextHop{FaceUri: FaceOf("b"), Cost: 0, Hyperbolic: true})
}
