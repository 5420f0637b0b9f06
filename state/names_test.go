package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	n, err := ParseName("/ndn/site/router-a")
	require.NoError(t, err)
	assert.Equal(t, Name("/ndn/site/router-a"), n)

	_, err = ParseName("")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestNameCompare(t *testing.T) {
	a := MustName("/ndn/a")
	b := MustName("/ndn/b")
	assert.Equal(t, 0, a.Compare(a))
	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
}

func TestSortNames(t *testing.T) {
	// canonical order compares component length before bytes
	names := []Name{MustName("/ndn/aa"), MustName("/ndn/b"), MustName("/ndn"), MustName("/ndn/b")}
	SortNames(names)
	assert.Equal(t, []Name{MustName("/ndn"), MustName("/ndn/b"), MustName("/ndn/b"), MustName("/ndn/aa")}, names)

	type entry struct {
		name Name
		id   int
	}
	entries := []entry{{MustName("/ndn/c"), 1}, {MustName("/ndn/a"), 2}, {MustName("/ndn/c"), 3}, {MustName("/ndn/a"), 4}}
	SortByName(entries, func(e entry) Name { return e.name })
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	assert.Equal(t, []int{2, 4, 1, 3}, ids)
}

func TestNameText(t *testing.T) {
	var n Name
	require.NoError(t, n.UnmarshalText([]byte("/ndn/site/router-a")))
	assert.Equal(t, MustName("/ndn/site/router-a"), n)
	out, err := n.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "/ndn/site/router-a", string(out))
}
