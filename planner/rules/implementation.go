package rules

import (
	"github.com/ryogrid/SamehadaCascades/planner/expression"
)

const (
	defaultHashTableSize = 1024
	defaultPartitions    = 1
)

func inputsOf(e *expression.Expression) []expression.Input {
	inputs := make([]expression.Input, len(e.Children()))
	for i, child := range e.Children() {
		inputs[i] = expression.GroupInput(child)
	}
	return inputs
}

// ImplementTableScan turns a logical Scan into a TableScan.
func ImplementTableScan(e *expression.Expression, _ Binding) []*expression.Tree {
	scan, ok := e.Op().(expression.ScanOp)
	if !ok {
		return nil
	}
	return []*expression.Tree{expression.NewTree(expression.TableScanOp{TableID: scan.TableID, Predicate: scan.Predicate})}
}

// ImplementIndexScan turns a logical Scan on an indexed access path into an IndexScan.
func ImplementIndexScan(e *expression.Expression, _ Binding) []*expression.Tree {
	scan, ok := e.Op().(expression.ScanOp)
	if !ok || scan.IndexID == expression.NoIndex {
		return nil
	}
	return []*expression.Tree{expression.NewTree(expression.IndexScanOp{
		TableID:   scan.TableID,
		Predicate: scan.Predicate,
		IndexID:   scan.IndexID,
	})}
}

// ImplementHashJoin turns a logical Join into a HashJoin over the same child groups.
func ImplementHashJoin(e *expression.Expression, _ Binding) []*expression.Tree {
	join, ok := e.Op().(expression.JoinOp)
	if !ok {
		return nil
	}
	op := expression.HashJoinOp{JoinType: join.JoinType, HashTableSize: defaultHashTableSize, Partitions: defaultPartitions}
	return []*expression.Tree{expression.NewTree(op, inputsOf(e)...)}
}

// ImplementNestedLoopJoin turns a logical Join into a NestedLoopJoin.
func ImplementNestedLoopJoin(e *expression.Expression, _ Binding) []*expression.Tree {
	join, ok := e.Op().(expression.JoinOp)
	if !ok {
		return nil
	}
	return []*expression.Tree{expression.NewTree(expression.NestedLoopJoinOp{JoinType: join.JoinType}, inputsOf(e)...)}
}

// ImplementSelection turns a logical Filter into a Selection.
func ImplementSelection(e *expression.Expression, _ Binding) []*expression.Tree {
	filter, ok := e.Op().(expression.FilterOp)
	if !ok {
		return nil
	}
	return []*expression.Tree{expression.NewTree(expression.SelectionOp{Predicate: filter.Predicate}, inputsOf(e)...)}
}
