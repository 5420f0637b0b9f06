package state

import (
	"errors"
	"fmt"
	"slices"

	enc "github.com/named-data/ndnd/std/encoding"
)

var ErrInvalidName = errors.New("invalid name")

// Name is the canonical URI form of an NDN name. Two names are equal iff their canonical URIs are equal.
type Name string

func ParseName(s string) (Name, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	n, err := enc.NameFromStr(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidName, s, err)
	}
	if len(n) == 0 {
		return "", fmt.Errorf("%w: %q has no components", ErrInvalidName, s)
	}
	return Name(n.String()), nil
}

// MustName is ParseName for literals
func MustName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Name) String() string {
	return string(n)
}

func (n Name) Components() enc.Name {
	c, err := enc.NameFromStr(string(n))
	if err != nil {
		return nil
	}
	return c
}

// Compare orders names component by component, following the canonical NDN ordering
func (n Name) Compare(o Name) int {
	if n == o {
		return 0
	}
	return n.Components().Compare(o.Components())
}

// SortByName sorts s by the name of each element, parsing every distinct name once. The sort is stable.
func SortByName[T any](s []T, name func(T) Name) {
	parsed := make(map[Name]enc.Name, len(s))
	for _, v := range s {
		n := name(v)
		if _, ok := parsed[n]; !ok {
			parsed[n] = n.Components()
		}
	}
	slices.SortStableFunc(s, func(a, b T) int {
		na, nb := name(a), name(b)
		if na == nb {
			return 0
		}
		return parsed[na].Compare(parsed[nb])
	})
}

func SortNames(s []Name) {
	SortByName(s, func(n Name) Name { return n })
}

func (n Name) MarshalText() ([]byte, error) {
	return []byte(n), nil
}

func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
