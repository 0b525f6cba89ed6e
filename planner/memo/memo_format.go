package memo

import (
	"fmt"
	"io"

	"github.com/ryogrid/SamehadaCascades/types"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Format writes every group with its members and winner, ordered by group id.
func (m *Memo) Format(w io.Writer) error {
	byIndex := make(map[uint32]*Group)
	m.groups.Iterate(func(_ types.GroupID, g *Group) bool {
		byIndex[g.id.Index()] = g
		return true
	})
	indexes := maps.Keys(byIndex)
	slices.Sort(indexes)

	if _, err := fmt.Fprintf(w, "memo (%d groups)\n", len(indexes)); err != nil {
		return err
	}
	for _, idx := range indexes {
		g := byIndex[idx]
		explored := ""
		if g.IsExplored() {
			explored = " explored"
		}
		if _, err := fmt.Fprintf(w, "%v%s: %s\n", g.id, explored, g.key); err != nil {
			return err
		}
		for _, e := range g.Members() {
			if _, err := fmt.Fprintf(w, "  %v\n", e); err != nil {
				return err
			}
		}
		if winner, cost, ok := g.Winner(); ok {
			if _, err := fmt.Fprintf(w, "  winner: %v cost=%v\n", winner.id, cost); err != nil {
				return err
			}
		}
	}
	return nil
}
