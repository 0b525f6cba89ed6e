package optimizer

import (
	"fmt"
	"strings"

	"github.com/ryogrid/SamehadaCascades/errors"
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/planner/memo"
	"github.com/ryogrid/SamehadaCascades/types"

	perrors "github.com/pingcap/errors"
)

// Plan is a physical operator tree built from group winners.
type Plan struct {
	Group    types.GroupID
	Expr     *expression.Expression
	Cost     types.Cost
	Children []*Plan
}

func (p *Plan) Kind() expression.OperatorKind { return p.Expr.Kind() }

// Leaves returns the plan leaves from left to right.
func (p *Plan) Leaves() []*Plan {
	if len(p.Children) == 0 {
		return []*Plan{p}
	}
	ret := make([]*Plan, 0)
	for _, c := range p.Children {
		ret = append(ret, c.Leaves()...)
	}
	return ret
}

// Shape renders operators only, e.g. "HashJoin(TableScan, TableScan)".
func (p *Plan) Shape() string {
	if len(p.Children) == 0 {
		return p.Kind().String()
	}
	parts := make([]string, len(p.Children))
	for i, c := range p.Children {
		parts[i] = c.Shape()
	}
	return fmt.Sprintf("%s(%s)", p.Kind(), strings.Join(parts, ", "))
}

func (p *Plan) String() string {
	var sb strings.Builder
	p.format(&sb, 0)
	return sb.String()
}

func (p *Plan) format(sb *strings.Builder, depth int) {
	fmt.Fprintf(sb, "%s%s(%s) cost=%v\n", strings.Repeat("  ", depth), p.Kind(), expression.Params(p.Expr.Op()), p.Cost)
	for _, c := range p.Children {
		c.format(sb, depth+1)
	}
}

// extractPlan follows winners from g down to the leaves. A winner referencing a
// group without a winner, or a winner chain deeper than the memo, means the memo
// is corrupt.
func extractPlan(m *memo.Memo, g *memo.Group) (*Plan, error) {
	return extractPlanRec(m, g, 0, m.GroupCount())
}

func extractPlanRec(m *memo.Memo, g *memo.Group, depth int, maxDepth int) (*Plan, error) {
	if depth > maxDepth {
		return nil, perrors.Annotatef(errors.ErrInvariantViolation, "winner chain through %v is cyclic", g.ID())
	}
	e, cost, ok := g.Winner()
	if !ok {
		return nil, perrors.Annotatef(errors.ErrInvariantViolation, "%v has no winner while its parent does", g.ID())
	}
	p := &Plan{Group: g.ID(), Expr: e.Expression(), Cost: cost}
	for _, child := range e.Expression().Children() {
		cp, err := extractPlanRec(m, m.Group(child), depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		p.Children = append(p.Children, cp)
	}
	return p, nil
}
