package core

import (
	"testing"
	"time"

	"github.com/encodeous/nlsr/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLsdb(t *testing.T) (*Lsdb, *[]LsaEvent) {
	l := NewLsdb(testLogger())
	t.Cleanup(l.Close)
	events := make([]LsaEvent, 0)
	l.OnChange(func(ev LsaEvent) {
		events = append(events, ev)
	})
	return l, &events
}

func TestLsdbInstallNewer(t *testing.T) {
	l, events := newTestLsdb(t)
	key := state.LsaKey{Origin: rn("B"), Type: state.LsaName}

	assert.True(t, l.Install(nameLsa("B", 1, "/ndn/b")))
	assert.True(t, l.Install(nameLsa("B", 3, "/ndn/b", "/ndn/b2")))
	// older and equal sequence numbers are ignored
	assert.False(t, l.Install(nameLsa("B", 2, "/ndn/old")))
	assert.False(t, l.Install(nameLsa("B", 3, "/ndn/old")))

	lsa, ok := l.FindNameLsa(rn("B"))
	require.True(t, ok)
	assert.Equal(t, uint64(3), lsa.SeqNo())
	assert.Len(t, lsa.Prefixes, 2)

	assert.Equal(t, []LsaEvent{
		{Key: key, Kind: LsaInstalled},
		{Key: key, Kind: LsaUpdated},
	}, *events)
}

func TestLsdbTypesAreSeparate(t *testing.T) {
	l, _ := newTestLsdb(t)
	l.Install(nameLsa("B", 5))
	l.Install(adjLsa("B", 1, link("A", 10)))
	l.Install(coordLsa("B", 1, 1, 0.5))
	assert.Equal(t, 3, l.Len())

	_, ok := l.FindAdjLsa(rn("B"))
	assert.True(t, ok)
	_, ok = l.FindCoordinateLsa(rn("B"))
	assert.True(t, ok)
	_, ok = l.FindAdjLsa(rn("C"))
	assert.False(t, ok)
}

func TestLsdbRemove(t *testing.T) {
	l, events := newTestLsdb(t)
	key := state.LsaKey{Origin: rn("B"), Type: state.LsaAdjacency}
	assert.False(t, l.Remove(key))

	l.Install(adjLsa("B", 1, link("A", 10)))
	assert.True(t, l.Remove(key))
	_, ok := l.Find(key)
	assert.False(t, ok)
	assert.Equal(t, LsaRemoved, (*events)[len(*events)-1].Kind)

	// after removal any sequence number is accepted again
	assert.True(t, l.Install(adjLsa("B", 1, link("A", 10))))
}

func TestLsdbRejectsExpired(t *testing.T) {
	l, events := newTestLsdb(t)
	lsa := nameLsa("B", 1, "/ndn/b")
	lsa.Expiry = time.Now().Add(-time.Second)
	assert.False(t, l.Install(lsa))
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, *events)
}

func TestLsdbExpiry(t *testing.T) {
	l, events := newTestLsdb(t)
	lsa := nameLsa("B", 1, "/ndn/b")
	lsa.Expiry = time.Now().Add(20 * time.Millisecond)
	require.True(t, l.Install(lsa))
	l.Install(nameLsa("C", 1, "/ndn/c"))
	*events = nil

	assert.Equal(t, 0, l.ProcessExpired())
	assert.Empty(t, *events)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, l.ProcessExpired())
	key := state.LsaKey{Origin: rn("B"), Type: state.LsaName}
	assert.Equal(t, []LsaEvent{{Key: key, Kind: LsaExpired}}, *events)

	// reported once
	assert.Equal(t, 0, l.ProcessExpired())
	assert.Len(t, *events, 1)

	_, ok := l.FindNameLsa(rn("B"))
	assert.False(t, ok)
	// LSAs without an expiry stay
	_, ok = l.FindNameLsa(rn("C"))
	assert.True(t, ok)
}

func TestLsdbExpiryAfterUpdate(t *testing.T) {
	l, events := newTestLsdb(t)
	base := time.Now()
	l.now = func() time.Time { return base }
	old := nameLsa("B", 1, "/ndn/b")
	old.Expiry = base.Add(time.Second)
	require.True(t, l.Install(old))
	fresh := nameLsa("B", 2, "/ndn/b")
	fresh.Expiry = base.Add(time.Hour)
	require.True(t, l.Install(fresh))
	*events = nil

	l.now = func() time.Time { return base.Add(2 * time.Second) }
	assert.Equal(t, 0, l.ProcessExpired())
	assert.Empty(t, *events)

	l.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.Equal(t, 1, l.ProcessExpired())
	require.Len(t, *events, 1)
	assert.Equal(t, LsaExpired, (*events)[0].Kind)
}

func TestLsdbSorted(t *testing.T) {
	l, _ := newTestLsdb(t)
	for _, r := range []string{"D", "B", "C"} {
		l.Install(adjLsa(r, 1))
		l.Install(nameLsa(r, 1))
	}
	origins := make([]state.Name, 0)
	for _, lsa := range l.AdjLsas() {
		origins = append(origins, lsa.Origin())
	}
	assert.Equal(t, []state.Name{rn("B"), rn("C"), rn("D")}, origins)
	assert.Len(t, l.NameLsas(), 3)
	assert.Empty(t, l.CoordinateLsas())

	all := l.All()
	require.Len(t, all, 6)
	assert.Equal(t, state.LsaKey{Origin: rn("B"), Type: state.LsaName}, all[0].Key())
	assert.Equal(t, state.LsaKey{Origin: rn("B"), Type: state.LsaAdjacency}, all[1].Key())
}
