package memo

import (
	"strings"

	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"golang.org/x/exp/slices"
)

// groupKey returns the canonical key of e and, for inner joins, the sorted leaf
// keys it covers.
//
// Inner joins are keyed by the multiset of non-join inputs reachable through
// nested inner joins, so every join order reachable by commutativity and
// associativity maps to the same key. Everything else is keyed by its operator,
// parameters and child keys in order.
func (m *Memo) groupKey(e *expression.Expression) (string, []string) {
	sb := strings.Builder{}
	sb.WriteString(e.Kind().String())
	sb.WriteByte('(')
	sb.WriteString(expression.Params(e.Op()))
	sb.WriteByte(')')

	if !e.IsLogical() {
		sb.WriteString("#phys")
		sb.WriteString(e.Fingerprint())
		return sb.String(), nil
	}

	if join, ok := e.Op().(expression.JoinOp); ok && join.JoinType == expression.InnerJoin {
		leaves := make([]string, 0, 2)
		for _, child := range e.Children() {
			g := m.Group(child)
			if g.leaves != nil {
				leaves = append(leaves, g.leaves...)
			} else {
				leaves = append(leaves, g.key)
			}
		}
		slices.Sort(leaves)
		sb.WriteByte('{')
		sb.WriteString(strings.Join(leaves, ","))
		sb.WriteByte('}')
		return sb.String(), leaves
	}

	sb.WriteByte('<')
	for i, child := range e.Children() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.Group(child).key)
	}
	sb.WriteByte('>')
	return sb.String(), nil
}
