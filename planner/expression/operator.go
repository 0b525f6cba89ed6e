package expression

import "fmt"

type OperatorKind int32

const (
	// logical
	Scan OperatorKind = iota
	Filter
	Join
	// physical
	TableScan
	IndexScan
	HashJoin
	NestedLoopJoin
	Selection

	operatorKindNum
)

var operatorNames = [operatorKindNum]string{
	Scan:           "Scan",
	Filter:         "Filter",
	Join:           "Join",
	TableScan:      "TableScan",
	IndexScan:      "IndexScan",
	HashJoin:       "HashJoin",
	NestedLoopJoin: "NestedLoopJoin",
	Selection:      "Selection",
}

func (k OperatorKind) String() string {
	if k < 0 || k >= operatorKindNum {
		return fmt.Sprintf("OperatorKind(%d)", int32(k))
	}
	return operatorNames[k]
}

func (k OperatorKind) IsLogical() bool {
	return k == Scan || k == Filter || k == Join
}

// Arity is the number of child groups an operator of this kind takes.
func (k OperatorKind) Arity() int {
	switch k {
	case Scan, TableScan, IndexScan:
		return 0
	case Filter, Selection:
		return 1
	case Join, HashJoin, NestedLoopJoin:
		return 2
	}
	panic(fmt.Sprintf("unknown operator kind %d", int32(k)))
}

type TableID uint32

type IndexID int32

const NoIndex = IndexID(-1)

type JoinType int32

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "inner"
	case LeftOuterJoin:
		return "left"
	}
	return fmt.Sprintf("JoinType(%d)", int32(t))
}

// Operator is the closed set of operator payloads. Only the types in this
// package implement it.
type Operator interface {
	Kind() OperatorKind
	// params renders the operator parameters for fingerprints and plan output.
	params() string
}

type ScanOp struct {
	TableID   TableID
	Predicate string
	// IndexID is NoIndex when the binder found no usable index.
	IndexID IndexID
}

type FilterOp struct {
	Predicate string
}

type JoinOp struct {
	JoinType JoinType
}

type TableScanOp struct {
	TableID   TableID
	Predicate string
}

type IndexScanOp struct {
	TableID   TableID
	Predicate string
	IndexID   IndexID
}

type HashJoinOp struct {
	JoinType      JoinType
	HashTableSize int
	Partitions    int
}

type NestedLoopJoinOp struct {
	JoinType JoinType
}

type SelectionOp struct {
	Predicate string
}

func (ScanOp) Kind() OperatorKind           { return Scan }
func (FilterOp) Kind() OperatorKind         { return Filter }
func (JoinOp) Kind() OperatorKind           { return Join }
func (TableScanOp) Kind() OperatorKind      { return TableScan }
func (IndexScanOp) Kind() OperatorKind      { return IndexScan }
func (HashJoinOp) Kind() OperatorKind       { return HashJoin }
func (NestedLoopJoinOp) Kind() OperatorKind { return NestedLoopJoin }
func (SelectionOp) Kind() OperatorKind      { return Selection }

func (op ScanOp) params() string {
	return fmt.Sprintf("table=%d pred=%q index=%d", op.TableID, op.Predicate, op.IndexID)
}

func (op FilterOp) params() string { return fmt.Sprintf("pred=%q", op.Predicate) }

func (op JoinOp) params() string { return fmt.Sprintf("type=%s", op.JoinType) }

func (op TableScanOp) params() string {
	return fmt.Sprintf("table=%d pred=%q", op.TableID, op.Predicate)
}

func (op IndexScanOp) params() string {
	return fmt.Sprintf("table=%d pred=%q index=%d", op.TableID, op.Predicate, op.IndexID)
}

func (op HashJoinOp) params() string {
	return fmt.Sprintf("type=%s size=%d partitions=%d", op.JoinType, op.HashTableSize, op.Partitions)
}

func (op NestedLoopJoinOp) params() string { return fmt.Sprintf("type=%s", op.JoinType) }

func (op SelectionOp) params() string { return fmt.Sprintf("pred=%q", op.Predicate) }
