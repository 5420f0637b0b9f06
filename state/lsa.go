package state

import (
	"fmt"
	"slices"
	"time"
)

type LsaType int

const (
	LsaName LsaType = iota
	LsaAdjacency
	LsaCoordinate
)

func (t LsaType) String() string {
	switch t {
	case LsaName:
		return "name"
	case LsaAdjacency:
		return "adjacency"
	case LsaCoordinate:
		return "coordinate"
	default:
		return fmt.Sprintf("lsa(%d)", int(t))
	}
}

// LsaKey identifies an LSA in the database, there is at most one LSA of each type per router
type LsaKey struct {
	Origin Name
	Type   LsaType
}

func (k LsaKey) String() string {
	return fmt.Sprintf("%s/%s", k.Origin, k.Type)
}

type Lsa interface {
	Key() LsaKey
	Origin() Name
	SeqNo() uint64
	// ExpiresAt returns the absolute expiry time, or the zero time if the LSA does not expire
	ExpiresAt() time.Time
}

type LsaHeader struct {
	OriginRouter Name      `yaml:"origin"`
	Seq          uint64    `yaml:"seq"`
	Expiry       time.Time `yaml:"expires,omitempty"`
}

func (h LsaHeader) Origin() Name {
	return h.OriginRouter
}

func (h LsaHeader) SeqNo() uint64 {
	return h.Seq
}

func (h LsaHeader) ExpiresAt() time.Time {
	return h.Expiry
}

// NameLsa advertises the name prefixes reachable at a router
type NameLsa struct {
	LsaHeader `yaml:",inline"`
	Prefixes  []Name `yaml:"prefixes"`
}

func (l *NameLsa) Key() LsaKey {
	return LsaKey{l.OriginRouter, LsaName}
}

func (l *NameLsa) String() string {
	return fmt.Sprintf("NameLsa(%s, seq: %d, prefixes: %v)", l.OriginRouter, l.Seq, l.Prefixes)
}

// AdjLsa advertises a router's active adjacencies
type AdjLsa struct {
	LsaHeader   `yaml:",inline"`
	Adjacencies []Adjacent `yaml:"adjacencies"`
}

func (l *AdjLsa) Key() LsaKey {
	return LsaKey{l.OriginRouter, LsaAdjacency}
}

func (l *AdjLsa) String() string {
	return fmt.Sprintf("AdjLsa(%s, seq: %d, adjacencies: %d)", l.OriginRouter, l.Seq, len(l.Adjacencies))
}

// CoordinateLsa advertises a router's position in hyperbolic space
type CoordinateLsa struct {
	LsaHeader `yaml:",inline"`
	Radius    float64   `yaml:"radius"`
	Angles    []float64 `yaml:"angles"`
}

func (l *CoordinateLsa) Key() LsaKey {
	return LsaKey{l.OriginRouter, LsaCoordinate}
}

func (l *CoordinateLsa) String() string {
	return fmt.Sprintf("CoordinateLsa(%s, seq: %d, r: %g, theta: %v)", l.OriginRouter, l.Seq, l.Radius, l.Angles)
}

// PrefixDiff returns the prefixes present in next but not prev, and in prev but not next
func PrefixDiff(prev, next []Name) (added, removed []Name) {
	for _, p := range next {
		if !slices.Contains(prev, p) {
			added = append(added, p)
		}
	}
	for _, p := range prev {
		if !slices.Contains(next, p) {
			removed = append(removed, p)
		}
	}
	return
}

// LsaWrapper allows LSAs of any type to be stored in yaml, discriminated by the type field
type LsaWrapper struct {
	Lsa
}

func (w LsaWrapper) MarshalYAML() (interface{}, error) {
	switch v := w.Lsa.(type) {
	case *NameLsa:
		return struct {
			Type     string `yaml:"type"`
			*NameLsa `yaml:",inline"`
		}{
			Type:    LsaName.String(),
			NameLsa: v,
		}, nil
	case *AdjLsa:
		return struct {
			Type    string `yaml:"type"`
			*AdjLsa `yaml:",inline"`
		}{
			Type:   LsaAdjacency.String(),
			AdjLsa: v,
		}, nil
	case *CoordinateLsa:
		return struct {
			Type           string `yaml:"type"`
			*CoordinateLsa `yaml:",inline"`
		}{
			Type:          LsaCoordinate.String(),
			CoordinateLsa: v,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported lsa %T", w.Lsa)
	}
}

func (w *LsaWrapper) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		Type string `yaml:"type"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch raw.Type {
	case LsaName.String():
		var l NameLsa
		if err := unmarshal(&l); err != nil {
			return err
		}
		w.Lsa = &l
	case LsaAdjacency.String():
		var l AdjLsa
		if err := unmarshal(&l); err != nil {
			return err
		}
		w.Lsa = &l
	case LsaCoordinate.String():
		var l CoordinateLsa
		if err := unmarshal(&l); err != nil {
			return err
		}
		w.Lsa = &l
	default:
		return fmt.Errorf("unknown lsa type %q", raw.Type)
	}
	return nil
}

// LsdbSnapshot is a set of LSAs stored on disk, used to feed the database without a sync protocol
type LsdbSnapshot struct {
	Lsas []LsaWrapper `yaml:"lsas"`
}
