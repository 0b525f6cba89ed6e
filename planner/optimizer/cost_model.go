package optimizer

import (
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/types"
)

// CostModel prices one physical operator. childCosts holds the winner cost of
// each child group in input order. The total cost of an alternative is the
// operator cost plus the sum of childCosts.
type CostModel interface {
	OperatorCost(e *expression.Expression, childCosts []types.Cost) types.Cost
}

// CostFunc adapts a plain function to CostModel.
type CostFunc func(e *expression.Expression, childCosts []types.Cost) types.Cost

func (f CostFunc) OperatorCost(e *expression.Expression, childCosts []types.Cost) types.Cost {
	return f(e, childCosts)
}

// FixedCostModel charges a constant per operator kind. Kinds missing from the
// map cost InfiniteCost, which makes them unusable.
type FixedCostModel map[expression.OperatorKind]types.Cost

func (m FixedCostModel) OperatorCost(e *expression.Expression, _ []types.Cost) types.Cost {
	if cost, ok := m[e.Kind()]; ok {
		return cost
	}
	return types.InfiniteCost
}

// DefaultCostModel is a rough model used by the demo and by callers with no
// statistics at hand.
func DefaultCostModel() CostModel {
	return CostFunc(func(e *expression.Expression, childCosts []types.Cost) types.Cost {
		switch e.Kind() {
		case expression.TableScan:
			return 100
		case expression.IndexScan:
			return 30
		case expression.Selection:
			return 10
		case expression.HashJoin:
			// build side is the right input
			return types.Cost(20).Add(childCosts[1])
		case expression.NestedLoopJoin:
			return types.Cost(10).Add(childCosts[1] / 2).Add(childCosts[0] / 2)
		}
		return types.InfiniteCost
	})
}
