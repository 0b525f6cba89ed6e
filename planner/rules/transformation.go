package rules

import (
	"github.com/ryogrid/SamehadaCascades/planner/expression"
)

func innerJoin(e *expression.Expression) bool {
	op, ok := e.Op().(expression.JoinOp)
	return ok && op.JoinType == expression.InnerJoin
}

// JoinCommutativity rewrites Join(A, B) into Join(B, A).
func JoinCommutativity(e *expression.Expression, _ Binding) []*expression.Tree {
	if !innerJoin(e) {
		return nil
	}
	return []*expression.Tree{
		expression.NewTree(e.Op(), expression.GroupInput(e.Child(1)), expression.GroupInput(e.Child(0))),
	}
}

// JoinRightAssociativity rewrites Join(Join(A, B), C) into Join(A, Join(B, C)),
// once for every inner join currently in the left child group.
func JoinRightAssociativity(e *expression.Expression, b Binding) []*expression.Tree {
	if !innerJoin(e) {
		return nil
	}
	ret := make([]*expression.Tree, 0)
	for _, left := range b.LogicalMembers(e.Child(0)) {
		if !innerJoin(left) {
			continue
		}
		newRight := expression.NewTree(e.Op(), expression.GroupInput(left.Child(1)), expression.GroupInput(e.Child(1)))
		ret = append(ret, expression.NewTree(e.Op(), expression.GroupInput(left.Child(0)), expression.TreeInput(newRight)))
	}
	return ret
}

// JoinLeftAssociativity rewrites Join(A, Join(B, C)) into Join(Join(A, B), C).
func JoinLeftAssociativity(e *expression.Expression, b Binding) []*expression.Tree {
	if !innerJoin(e) {
		return nil
	}
	ret := make([]*expression.Tree, 0)
	for _, right := range b.LogicalMembers(e.Child(1)) {
		if !innerJoin(right) {
			continue
		}
		newLeft := expression.NewTree(e.Op(), expression.GroupInput(e.Child(0)), expression.GroupInput(right.Child(0)))
		ret = append(ret, expression.NewTree(e.Op(), expression.TreeInput(newLeft), expression.GroupInput(right.Child(1))))
	}
	return ret
}
