package rules

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/types"
)

type Kind int32

const (
	// Transformation rules rewrite a logical expression into an equivalent logical one.
	Transformation Kind = iota
	// Implementation rules turn a logical expression into a physical one.
	Implementation
)

func (k Kind) String() string {
	switch k {
	case Transformation:
		return "transformation"
	case Implementation:
		return "implementation"
	}
	return fmt.Sprintf("Kind(%d)", int32(k))
}

// Binding is the read-only view of the memo a rule may inspect while matching.
type Binding interface {
	// LogicalMembers returns the logical expressions currently in the group.
	LogicalMembers(id types.GroupID) []*expression.Expression
}

// Func matches e and returns the rewritten alternatives. No result means no match.
// It must not have side effects.
type Func func(e *expression.Expression, b Binding) []*expression.Tree

// Rule is an immutable rule descriptor. Rules are referenced by ID, which is
// also the bit of the rule in every Guidance.
type Rule struct {
	ID      types.RuleID
	Name    string
	Kind    Kind
	Promise int
	// operator kinds the rule can match
	Operators mapset.Set[expression.OperatorKind]
	Apply     Func
}

func (r *Rule) Matches(kind expression.OperatorKind) bool {
	return r.Operators.Contains(kind)
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s(#%d %s promise=%d)", r.Name, r.ID, r.Kind, r.Promise)
}
