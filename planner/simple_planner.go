package planner

import (
	"github.com/ryogrid/SamehadaCascades/common"
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/planner/optimizer"
	"github.com/ryogrid/SamehadaCascades/planner/rules"

	perrors "github.com/pingcap/errors"
)

// SimplePlanner keeps the join order of the query and only chooses physical
// operators. It is the baseline CascadesPlanner is compared against.
type SimplePlanner struct {
	optimizer optimizer.Optimizer
}

func NewSimplePlanner(costModel optimizer.CostModel) *SimplePlanner {
	return &SimplePlanner{optimizer.NewCascadesOptimizer(rules.ImplementationRegistry(), costModel, optimizer.Config{WorkerNum: 1, TaskOrder: optimizer.LIFO})}
}

func (pner *SimplePlanner) MakePlan(root *expression.Tree) (*optimizer.Plan, error) {
	return makePlan(pner.optimizer, root)
}

// CascadesPlanner also reorders inner joins.
type CascadesPlanner struct {
	optimizer optimizer.Optimizer
}

func NewCascadesPlanner(costModel optimizer.CostModel) *CascadesPlanner {
	return NewCascadesPlannerWithConfig(rules.DefaultRegistry(), costModel, optimizer.DefaultConfig())
}

func NewCascadesPlannerWithConfig(registry *rules.Registry, costModel optimizer.CostModel, config optimizer.Config) *CascadesPlanner {
	return &CascadesPlanner{optimizer.NewCascadesOptimizer(registry, costModel, config)}
}

func (pner *CascadesPlanner) MakePlan(root *expression.Tree) (*optimizer.Plan, error) {
	return makePlan(pner.optimizer, root)
}

func makePlan(o optimizer.Optimizer, root *expression.Tree) (*optimizer.Plan, error) {
	if root == nil {
		return nil, perrors.New("planner: empty query")
	}
	plan, err := o.Optimize(root)
	if err != nil {
		common.ShPrintf(common.WARN, "planner: no plan for %v: %v\n", root, err)
		return nil, perrors.Annotatef(err, "planning %v", root)
	}
	common.ShPrintf(common.DEBUG_INFO, "planner: %s cost=%v\n", plan.Shape(), plan.Cost)
	return plan, nil
}
