package core

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/encodeous/nlsr/perf"
	"github.com/encodeous/nlsr/state"
)

// AdjMatrix is an n x n cost matrix stored row-major. Absent links hold state.NonAdjacentCost.
type AdjMatrix struct {
	n     int
	costs []float64
}

func NewAdjMatrix(n int) *AdjMatrix {
	m := &AdjMatrix{
		n:     n,
		costs: make([]float64, n*n),
	}
	for i := range m.costs {
		m.costs[i] = state.NonAdjacentCost
	}
	return m
}

func (m *AdjMatrix) Size() int {
	return m.n
}

func (m *AdjMatrix) idx(row, col int) int {
	if row < 0 || row >= m.n || col < 0 || col >= m.n {
		panic(fmt.Sprintf("adjacency matrix index (%d, %d) out of range for size %d", row, col, m.n))
	}
	return row*m.n + col
}

func (m *AdjMatrix) At(row, col int) float64 {
	return m.costs[m.idx(row, col)]
}

func (m *AdjMatrix) Set(row, col int, cost float64) {
	m.costs[m.idx(row, col)] = cost
}

func (m *AdjMatrix) Row(row int) []float64 {
	start := m.idx(row, 0)
	return m.costs[start : start+m.n]
}

func (m *AdjMatrix) SetRow(row int, vals []float64) {
	copy(m.Row(row), vals)
}

// Links returns the columns of row source that hold a link, excluding source itself
func (m *AdjMatrix) Links(source int) []int {
	links := make([]int, 0)
	for i, c := range m.Row(source) {
		if i != source && c >= 0 {
			links = append(links, i)
		}
	}
	return links
}

// IsolateLink rewrites the row of source so that link is its only outgoing edge
func (m *AdjMatrix) IsolateLink(source, link int, cost float64) {
	row := m.Row(source)
	for i := range row {
		row[i] = state.NonAdjacentCost
	}
	row[link] = cost
}

func (m *AdjMatrix) Clone() *AdjMatrix {
	c := &AdjMatrix{
		n:     m.n,
		costs: make([]float64, len(m.costs)),
	}
	copy(c.costs, m.costs)
	return c
}

// BuildAdjMatrix fills a matrix from adjacency LSAs and reconciles asymmetric links.
// Adjacencies to or from routers that are not in the map are ignored.
func BuildAdjMatrix(lsas []*state.AdjLsa, nm *NameMap, log *slog.Logger) *AdjMatrix {
	m := NewAdjMatrix(nm.Size())
	for _, lsa := range lsas {
		row, ok := nm.MappingNo(lsa.Origin())
		if !ok {
			continue
		}
		for _, adj := range lsa.Adjacencies {
			col, ok := nm.MappingNo(adj.Name)
			if !ok {
				continue
			}
			m.Set(row, col, adj.LinkCost)
		}
	}
	m.reconcile(nm, log)
	return m
}

// reconcile makes the matrix symmetric. A link is kept only if both ends advertise it, at the larger of the two costs.
func (m *AdjMatrix) reconcile(nm *NameMap, log *slog.Logger) {
	for row := 0; row < m.n; row++ {
		for col := row + 1; col < m.n; col++ {
			to := m.At(row, col)
			from := m.At(col, row)
			if to == from {
				continue
			}
			cost := state.NonAdjacentCost
			if to >= 0 && from >= 0 {
				cost = max(to, from)
			}
			m.Set(row, col, cost)
			m.Set(col, row, cost)

			perf.MatrixCorrections.Inc()
			rowName, _ := nm.RouterName(row)
			colName, _ := nm.RouterName(col)
			log.Warn("asymmetric link cost corrected",
				"from", rowName, "to", colName,
				"cost_to", to, "cost_from", from, "corrected", cost)
		}
	}
}

// Dump renders the matrix with router names, for debug logs
func (m *AdjMatrix) Dump(nm *NameMap) string {
	sb := strings.Builder{}
	sb.WriteString(nm.String())
	for row := 0; row < m.n; row++ {
		sb.WriteString(fmt.Sprintf("%d |", row))
		for col := 0; col < m.n; col++ {
			c := m.At(row, col)
			if c == state.NonAdjacentCost {
				sb.WriteString("    -")
			} else {
				sb.WriteString(fmt.Sprintf(" %4g", c))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
