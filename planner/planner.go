package planner

import (
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/planner/optimizer"
)

type Planner interface {
	MakePlan(root *expression.Tree) (*optimizer.Plan, error)
}
