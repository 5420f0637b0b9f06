package core

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/encodeous/nlsr/state"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	return table
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'g', -1, 64)
}

// RenderRoutingTable renders one row per (destination, next hop)
func RenderRoutingTable(entries []*RoutingTableEntry) string {
	sb := &strings.Builder{}
	table := newTable(sb, "DESTINATION", "FACE", "COST")
	for _, e := range entries {
		for _, h := range e.NextHops.Hops() {
			table.Append([]string{e.Destination.String(), h.FaceUri, formatCost(h.Cost)})
		}
	}
	table.Render()
	return sb.String()
}

func RenderNamePrefixTable(entries []*NamePrefixTableEntry) string {
	sb := &strings.Builder{}
	table := newTable(sb, "PREFIX", "ORIGINS", "FACE", "COST")
	for _, e := range entries {
		origins := make([]string, 0)
		for _, o := range e.Origins() {
			origins = append(origins, o.String())
		}
		hops := e.NextHops.Hops()
		if len(hops) == 0 {
			table.Append([]string{e.Prefix.String(), strings.Join(origins, ","), "-", "-"})
			continue
		}
		for _, h := range hops {
			table.Append([]string{e.Prefix.String(), strings.Join(origins, ","), h.FaceUri, formatCost(h.Cost)})
		}
	}
	table.Render()
	return sb.String()
}

func RenderFib(entries []*FibEntry) string {
	sb := &strings.Builder{}
	table := newTable(sb, "PREFIX", "FACE", "COST", "SEQ")
	for _, e := range entries {
		for _, h := range e.NextHops.Hops() {
			table.Append([]string{e.Prefix.String(), h.FaceUri, strconv.FormatUint(h.AdjustedCost(), 10), fmt.Sprint(e.SeqNo)})
		}
	}
	table.Render()
	return sb.String()
}

func RenderAdjacencies(l *state.AdjacencyList) string {
	sb := &strings.Builder{}
	table := newTable(sb, "NEIGHBOUR", "FACE", "COST", "STATUS")
	for _, a := range l.All() {
		table.Append([]string{a.Name.String(), a.FaceUri, formatCost(a.LinkCost), a.Status.String()})
	}
	table.Render()
	return sb.String()
}

// RenderLsdb renders one row per stored LSA
func RenderLsdb(l *Lsdb) string {
	sb := &strings.Builder{}
	table := newTable(sb, "ORIGIN", "TYPE", "SEQ", "EXPIRES")
	for _, lsa := range l.All() {
		expires := "never"
		if exp := lsa.ExpiresAt(); !exp.IsZero() {
			expires = time.Until(exp).Truncate(time.Second).String()
		}
		table.Append([]string{lsa.Origin().String(), lsa.Key().Type.String(), fmt.Sprint(lsa.SeqNo()), expires})
	}
	table.Render()
	return sb.String()
}
