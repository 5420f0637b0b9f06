package core

import (
	"testing"

	"github.com/encodeous/nlsr/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFibCapsFaces(t *testing.T) {
	h := &FibHarness{}
	fib := NewForwardingTable(testLogger(), h, 2)
	p := state.MustName("/ndn/video")

	fib.Update(p, state.NewNexthopList(
		state.NextHop{FaceUri: face("C"), Cost: 30},
		state.NextHop{FaceUri: face("B"), Cost: 10},
		state.NextHop{FaceUri: face("D"), Cost: 20},
	))
	e, ok := fib.Find(p)
	require.True(t, ok)
	assert.Equal(t, []state.NextHop{
		{FaceUri: face("B"), Cost: 10},
		{FaceUri: face("D"), Cost: 20},
	}, e.NextHops.Hops())

	a := h.GetActions()
	a.AssertContains(t, "REGISTER", p, face("B"), uint64(10))
	a.AssertContains(t, "REGISTER", p, face("D"), uint64(20))
	a.AssertNotContains(t, "REGISTER", p, face("C"))
}

func TestFibUncapped(t *testing.T) {
	h := &FibHarness{}
	fib := NewForwardingTable(testLogger(), h, 0)
	p := state.MustName("/ndn/video")
	fib.Update(p, state.NewNexthopList(
		state.NextHop{FaceUri: face("C"), Cost: 30},
		state.NextHop{FaceUri: face("B"), Cost: 10},
		state.NextHop{FaceUri: face("D"), Cost: 20},
	))
	h.GetActions().AssertCount(t, 3, "REGISTER", p)
}

func TestFibSkipsUnchanged(t *testing.T) {
	h := &FibHarness{}
	fib := NewForwardingTable(testLogger(), h, 0)
	p := state.MustName("/ndn/video")
	hops := state.NewNexthopList(state.NextHop{FaceUri: face("B"), Cost: 10})

	fib.Update(p, hops)
	h.GetActions()
	fib.Update(p, hops)
	assert.Empty(t, h.GetActions())
	e, _ := fib.Find(p)
	assert.Equal(t, uint64(1), e.SeqNo)
}

func TestFibDiff(t *testing.T) {
	h := &FibHarness{}
	fib := NewForwardingTable(testLogger(), h, 0)
	p := state.MustName("/ndn/video")
	fib.Update(p, state.NewNexthopList(
		state.NextHop{FaceUri: face("B"), Cost: 10},
		state.NextHop{FaceUri: face("C"), Cost: 20},
	))
	h.GetActions()

	fib.Update(p, state.NewNexthopList(
		state.NextHop{FaceUri: face("B"), Cost: 10},
		state.NextHop{FaceUri: face("D"), Cost: 5},
	))
	a := h.GetActions()
	a.AssertContains(t, "REGISTER", p, face("D"), uint64(5))
	a.AssertContains(t, "UNREGISTER", p, face("C"))
	a.AssertNotContains(t, "REGISTER", p, face("B"))
}

func TestFibHyperbolicCost(t *testing.T) {
	h := &FibHarness{}
	fib := NewForwardingTable(testLogger(), h, 0)
	p := state.MustName("/ndn/video")
	fib.Update(p, state.NewNexthopList(state.NextHop{FaceUri: face("B"), Cost: 1.5133, Hyperbolic: true}))
	h.GetActions().AssertContains(t, "REGISTER", p, face("B"), uint64(1513))
}

func TestFibRemove(t *testing.T) {
	h := &FibHarness{}
	fib := NewForwardingTable(testLogger(), h, 0)
	p := state.MustName("/ndn/video")

	// removing something that was never installed is a no-op
	fib.Remove(p)
	assert.Empty(t, h.GetActions())

	fib.Update(p, state.NewNexthopList(
		state.NextHop{FaceUri: face("B"), Cost: 10},
		state.NextHop{FaceUri: face("C"), Cost: 20},
	))
	h.GetActions()
	fib.Remove(p)
	a := h.GetActions()
	a.AssertCount(t, 2, "UNREGISTER", p)
	_, ok := fib.Find(p)
	assert.False(t, ok)

	fib.Remove(p)
	assert.Empty(t, h.GetActions())
}

func TestFibClear(t *testing.T) {
	h := &FibHarness{}
	fib := NewForwardingTable(testLogger(), h, 0)
	fib.Update(state.MustName("/ndn/a"), state.NewNexthopList(state.NextHop{FaceUri: face("B"), Cost: 1}))
	fib.Update(state.MustName("/ndn/b"), state.NewNexthopList(state.NextHop{FaceUri: face("B"), Cost: 1}))
	fib.Clear()
	assert.Empty(t, fib.Entries())
}
