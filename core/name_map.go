package core

import (
	"fmt"
	"strings"

	"github.com/encodeous/nlsr/state"
)

// NameMap assigns each router of one calculation a dense index, in the order routers are first seen
type NameMap struct {
	indices map[state.Name]int
	names   []state.Name
}

func NewNameMap() *NameMap {
	return &NameMap{
		indices: make(map[state.Name]int),
	}
}

// NewNameMapFromAdjLsas maps every origin router and every router it lists as a neighbour
func NewNameMapFromAdjLsas(lsas []*state.AdjLsa) *NameMap {
	m := NewNameMap()
	for _, lsa := range lsas {
		m.AddEntry(lsa.Origin())
		for _, adj := range lsa.Adjacencies {
			m.AddEntry(adj.Name)
		}
	}
	return m
}

// NewNameMapFromCoordinateLsas maps origin routers only
func NewNameMapFromCoordinateLsas(lsas []*state.CoordinateLsa) *NameMap {
	m := NewNameMap()
	for _, lsa := range lsas {
		m.AddEntry(lsa.Origin())
	}
	return m
}

func (m *NameMap) AddEntry(name state.Name) int {
	if idx, ok := m.indices[name]; ok {
		return idx
	}
	idx := len(m.names)
	m.indices[name] = idx
	m.names = append(m.names, name)
	return idx
}

func (m *NameMap) MappingNo(name state.Name) (int, bool) {
	idx, ok := m.indices[name]
	return idx, ok
}

func (m *NameMap) RouterName(idx int) (state.Name, bool) {
	if idx < 0 || idx >= len(m.names) {
		return "", false
	}
	return m.names[idx], true
}

func (m *NameMap) Size() int {
	return len(m.names)
}

func (m *NameMap) String() string {
	sb := strings.Builder{}
	for i, n := range m.names {
		sb.WriteString(fmt.Sprintf("%s -> %d\n", n, i))
	}
	return sb.String()
}
