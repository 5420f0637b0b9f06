package state

import (
	"cmp"
	"fmt"
	"slices"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusInactive
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "active":
		*s = StatusActive
	case "inactive":
		*s = StatusInactive
	case "unknown", "":
		*s = StatusUnknown
	default:
		return fmt.Errorf("unknown adjacency status %q", string(text))
	}
	return nil
}

// Adjacent is a direct neighbour of a router, as seen by that router
type Adjacent struct {
	Name     Name    `yaml:"name"`
	FaceUri  string  `yaml:"face_uri,omitempty"`
	LinkCost float64 `yaml:"cost"`
	Status   Status  `yaml:"status,omitempty"`
	// number of consecutive hello timeouts, maintained by the hello protocol
	InterestTimedOutNo uint32 `yaml:"-"`
}

func (a Adjacent) String() string {
	return fmt.Sprintf("%s (face: %s, cost: %g, %s)", a.Name, a.FaceUri, a.LinkCost, a.Status)
}

// AdjacencyList is the set of this router's neighbours, kept sorted by name
type AdjacencyList struct {
	adjs []Adjacent
}

func NewAdjacencyList(adjs ...Adjacent) *AdjacencyList {
	l := &AdjacencyList{}
	for _, a := range adjs {
		l.Insert(a)
	}
	return l
}

func (l *AdjacencyList) index(name Name) (int, bool) {
	return slices.BinarySearchFunc(l.adjs, name, func(a Adjacent, n Name) int {
		return cmp.Compare(a.Name, n)
	})
}

// Insert adds or replaces the neighbour with the same name
func (l *AdjacencyList) Insert(a Adjacent) {
	idx, found := l.index(a.Name)
	if found {
		l.adjs[idx] = a
		return
	}
	l.adjs = slices.Insert(l.adjs, idx, a)
}

func (l *AdjacencyList) Find(name Name) (Adjacent, bool) {
	idx, found := l.index(name)
	if !found {
		return Adjacent{}, false
	}
	return l.adjs[idx], true
}

func (l *AdjacencyList) FaceUri(name Name) (string, bool) {
	a, ok := l.Find(name)
	if !ok {
		return "", false
	}
	return a.FaceUri, true
}

func (l *AdjacencyList) IsActive(name Name) bool {
	a, ok := l.Find(name)
	return ok && a.Status == StatusActive
}

// SetStatus updates the status of a neighbour, returning true if it changed
func (l *AdjacencyList) SetStatus(name Name, status Status) (bool, error) {
	idx, found := l.index(name)
	if !found {
		return false, fmt.Errorf("%s is not a neighbour", name)
	}
	if l.adjs[idx].Status == status {
		return false, nil
	}
	l.adjs[idx].Status = status
	if status == StatusActive {
		l.adjs[idx].InterestTimedOutNo = 0
	}
	return true, nil
}

func (l *AdjacencyList) All() []Adjacent {
	return slices.Clone(l.adjs)
}

// Active returns the neighbours currently considered up
func (l *AdjacencyList) Active() []Adjacent {
	out := make([]Adjacent, 0, len(l.adjs))
	for _, a := range l.adjs {
		if a.Status == StatusActive {
			out = append(out, a)
		}
	}
	return out
}

func (l *AdjacencyList) Len() int {
	return len(l.adjs)
}
