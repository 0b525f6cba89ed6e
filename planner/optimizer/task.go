package optimizer

import (
	"fmt"

	"github.com/ryogrid/SamehadaCascades/types"
)

type TaskKind int32

const (
	OptimizeGroup TaskKind = iota
	ExploreGroup
	ExploreExpression
	OptimizeExpression
	ApplyRule
	OptimizeInputs

	taskKindNum
)

var taskKindNames = [taskKindNum]string{
	OptimizeGroup:      "OptimizeGroup",
	ExploreGroup:       "ExploreGroup",
	ExploreExpression:  "ExploreExpression",
	OptimizeExpression: "OptimizeExpression",
	ApplyRule:          "ApplyRule",
	OptimizeInputs:     "OptimizeInputs",
}

func (k TaskKind) String() string {
	if k < 0 || k >= taskKindNum {
		return fmt.Sprintf("TaskKind(%d)", int32(k))
	}
	return taskKindNames[k]
}

// Task is one unit of search work. It references memo objects by handle only,
// so tasks are plain values.
type Task struct {
	Kind  TaskKind
	Group types.GroupID
	Expr  types.ExprID
	Limit types.Cost
	// ApplyRule only
	Rule    types.RuleID
	Promise int
	// ApplyRule only: the rule was scheduled while optimizing, so new logical
	// results are optimized instead of only explored
	Optimizing bool
}

func optimizeGroupTask(g types.GroupID, limit types.Cost) Task {
	return Task{Kind: OptimizeGroup, Group: g, Limit: limit, Rule: types.InvalidRuleID}
}

func exploreGroupTask(g types.GroupID, limit types.Cost) Task {
	return Task{Kind: ExploreGroup, Group: g, Limit: limit, Rule: types.InvalidRuleID}
}

func exploreExpressionTask(e types.ExprID, limit types.Cost) Task {
	return Task{Kind: ExploreExpression, Expr: e, Limit: limit, Rule: types.InvalidRuleID}
}

func optimizeExpressionTask(e types.ExprID, limit types.Cost) Task {
	return Task{Kind: OptimizeExpression, Expr: e, Limit: limit, Rule: types.InvalidRuleID}
}

func applyRuleTask(e types.ExprID, limit types.Cost, rule types.RuleID, promise int, optimizing bool) Task {
	return Task{Kind: ApplyRule, Expr: e, Limit: limit, Rule: rule, Promise: promise, Optimizing: optimizing}
}

func optimizeInputsTask(e types.ExprID, limit types.Cost) Task {
	return Task{Kind: OptimizeInputs, Expr: e, Limit: limit, Rule: types.InvalidRuleID}
}

func (t Task) String() string {
	switch t.Kind {
	case OptimizeGroup, ExploreGroup:
		return fmt.Sprintf("%s(%v, limit=%v)", t.Kind, t.Group, t.Limit)
	case ApplyRule:
		return fmt.Sprintf("%s(%v, limit=%v, rule=%d, promise=%d)", t.Kind, t.Expr, t.Limit, t.Rule, t.Promise)
	}
	return fmt.Sprintf("%s(%v, limit=%v)", t.Kind, t.Expr, t.Limit)
}
