package optimizer

import (
	"github.com/ryogrid/SamehadaCascades/planner/expression"
)

type Optimizer interface {
	// Optimize returns the cheapest physical plan equivalent to the logical tree root.
	Optimize(root *expression.Tree) (*Plan, error)
}
