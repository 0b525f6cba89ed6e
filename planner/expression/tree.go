package expression

import (
	"fmt"

	"github.com/ryogrid/SamehadaCascades/common"
	"github.com/ryogrid/SamehadaCascades/types"
)

// Input of a Tree node: either an existing memo group or a nested tree which
// still has to be interned.
type Input struct {
	Group types.GroupID
	Tree  *Tree
}

func GroupInput(id types.GroupID) Input { return Input{Group: id} }

func TreeInput(t *Tree) Input { return Input{Tree: t} }

func (in Input) IsGroup() bool { return in.Tree == nil }

// Tree is the form in which plans enter the memo: caller input trees and rule
// results. Leaves of a rule result reference existing groups.
type Tree struct {
	Op     Operator
	Inputs []Input
}

func NewTree(op Operator, inputs ...Input) *Tree {
	common.SH_Assert(len(inputs) == op.Kind().Arity(),
		fmt.Sprintf("%s takes %d inputs, got %d", op.Kind(), op.Kind().Arity(), len(inputs)))
	return &Tree{op, inputs}
}

// Flat returns the expression of a tree whose inputs are all groups.
func (t *Tree) Flat() (*Expression, bool) {
	children := make([]types.GroupID, len(t.Inputs))
	for i, in := range t.Inputs {
		if !in.IsGroup() {
			return nil, false
		}
		children[i] = in.Group
	}
	return New(t.Op, children...), true
}

// FromExpression wraps an expression as a single-node tree.
func FromExpression(e *Expression) *Tree {
	inputs := make([]Input, len(e.children))
	for i, child := range e.children {
		inputs[i] = GroupInput(child)
	}
	return &Tree{e.op, inputs}
}

func (t *Tree) String() string {
	s := fmt.Sprintf("%s(", t.Op.Kind())
	for i, in := range t.Inputs {
		if i > 0 {
			s += ", "
		}
		if in.IsGroup() {
			s += in.Group.String()
		} else {
			s += in.Tree.String()
		}
	}
	return s + ")"
}

func NewScan(table TableID) *Tree {
	return NewTree(ScanOp{TableID: table, IndexID: NoIndex})
}

func NewIndexedScan(table TableID, predicate string, index IndexID) *Tree {
	return NewTree(ScanOp{TableID: table, Predicate: predicate, IndexID: index})
}

func NewFilter(predicate string, child *Tree) *Tree {
	return NewTree(FilterOp{Predicate: predicate}, TreeInput(child))
}

func NewJoin(left *Tree, right *Tree) *Tree {
	return NewTree(JoinOp{JoinType: InnerJoin}, TreeInput(left), TreeInput(right))
}

func NewOuterJoin(left *Tree, right *Tree) *Tree {
	return NewTree(JoinOp{JoinType: LeftOuterJoin}, TreeInput(left), TreeInput(right))
}
