package rules

import (
	"github.com/ryogrid/SamehadaCascades/planner/expression"
)

const (
	JoinCommutativityName      = "join_commutativity"
	JoinRightAssociativityName = "join_right_associativity"
	JoinLeftAssociativityName  = "join_left_associativity"
	TableScanName              = "table_scan"
	IndexScanName              = "index_scan"
	HashJoinName               = "hash_join"
	NestedLoopJoinName         = "nested_loop_join"
	FilterSelectionName        = "filter_selection"
)

// RegisterCoreRules registers the two join transformations and the table scan and
// hash join implementations.
func RegisterCoreRules(r *Registry) *Registry {
	r.Register(JoinCommutativityName, Transformation, 3, JoinCommutativity, expression.Join)
	r.Register(JoinRightAssociativityName, Transformation, 2, JoinRightAssociativity, expression.Join)
	r.Register(TableScanName, Implementation, 1, ImplementTableScan, expression.Scan)
	r.Register(HashJoinName, Implementation, 1, ImplementHashJoin, expression.Join)
	return r
}

// DefaultRegistry returns a frozen registry with every rule of this package.
func DefaultRegistry() *Registry {
	r := RegisterCoreRules(NewRegistry())
	r.Register(JoinLeftAssociativityName, Transformation, 2, JoinLeftAssociativity, expression.Join)
	r.Register(IndexScanName, Implementation, 2, ImplementIndexScan, expression.Scan)
	r.Register(NestedLoopJoinName, Implementation, 0, ImplementNestedLoopJoin, expression.Join)
	r.Register(FilterSelectionName, Implementation, 1, ImplementSelection, expression.Filter)
	return r.Freeze()
}

// ImplementationRegistry returns a frozen registry without transformations. A
// search with it only picks physical operators for the join order it was given.
func ImplementationRegistry() *Registry {
	r := NewRegistry()
	r.Register(TableScanName, Implementation, 1, ImplementTableScan, expression.Scan)
	r.Register(IndexScanName, Implementation, 2, ImplementIndexScan, expression.Scan)
	r.Register(HashJoinName, Implementation, 1, ImplementHashJoin, expression.Join)
	r.Register(NestedLoopJoinName, Implementation, 0, ImplementNestedLoopJoin, expression.Join)
	r.Register(FilterSelectionName, Implementation, 1, ImplementSelection, expression.Filter)
	return r.Freeze()
}
