package expression

import (
	"fmt"
	"strings"

	"github.com/ryogrid/SamehadaCascades/common"
	"github.com/ryogrid/SamehadaCascades/types"
)

// Expression is an immutable operator node whose inputs are memo groups, not
// concrete sibling expressions. Work done on a shared child group is shared by
// every parent referencing it.
type Expression struct {
	op       Operator
	children []types.GroupID
}

// New builds an expression. Only the number of children is validated.
func New(op Operator, children ...types.GroupID) *Expression {
	common.SH_Assert(op != nil, "operator must not be nil")
	common.SH_Assert(len(children) == op.Kind().Arity(),
		fmt.Sprintf("%s takes %d children, got %d", op.Kind(), op.Kind().Arity(), len(children)))
	copied := make([]types.GroupID, len(children))
	copy(copied, children)
	return &Expression{op, copied}
}

func (e *Expression) Op() Operator { return e.op }

func (e *Expression) Kind() OperatorKind { return e.op.Kind() }

func (e *Expression) IsLogical() bool { return e.op.Kind().IsLogical() }

// Children returns the child groups in order. The returned slice must not be modified.
func (e *Expression) Children() []types.GroupID { return e.children }

func (e *Expression) Child(idx int) types.GroupID { return e.children[idx] }

func (e *Expression) PhysicalProperties() []PhysicalProperty {
	switch op := e.op.(type) {
	case ScanOp, FilterOp, JoinOp:
		return nil
	case TableScanOp:
		return []PhysicalProperty{{Kind: RowStored}}
	case IndexScanOp:
		return []PhysicalProperty{{Kind: Sorted, Column: int(op.IndexID)}, {Kind: RowStored}}
	case HashJoinOp:
		return []PhysicalProperty{{Kind: Partitioned, Column: op.Partitions}}
	case NestedLoopJoinOp, SelectionOp:
		return nil
	}
	panic(fmt.Sprintf("unknown operator %T", e.op))
}

// Fingerprint is the structural identity of the expression: operator kind,
// parameters and child group handles in order. Two independently built
// expressions with the same shape have the same fingerprint.
func (e *Expression) Fingerprint() string {
	sb := strings.Builder{}
	sb.WriteString(e.op.Kind().String())
	sb.WriteByte('(')
	sb.WriteString(e.op.params())
	sb.WriteByte(')')
	for _, child := range e.children {
		fmt.Fprintf(&sb, "[%d]", uint64(child))
	}
	return sb.String()
}

func (e *Expression) Equals(other *Expression) bool {
	return e.Fingerprint() == other.Fingerprint()
}

func (e *Expression) String() string {
	sb := strings.Builder{}
	sb.WriteString(e.op.Kind().String())
	sb.WriteString(" {")
	sb.WriteString(e.op.params())
	sb.WriteByte('}')
	for _, child := range e.children {
		sb.WriteByte(' ')
		sb.WriteString(child.String())
	}
	return sb.String()
}

// Params renders the operator parameters.
func Params(op Operator) string { return op.params() }
