package memo

import (
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
	pair "github.com/notEpsilon/go-pair"
	"github.com/ryogrid/SamehadaCascades/common"
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/planner/rules"
	"github.com/ryogrid/SamehadaCascades/types"
)

// Expr is a memo entry: an expression interned into a group, with its own guidance.
type Expr struct {
	id       types.ExprID
	group    types.GroupID
	expr     *expression.Expression
	guidance *rules.Guidance
}

func (e *Expr) ID() types.ExprID { return e.id }

func (e *Expr) Group() types.GroupID { return e.group }

func (e *Expr) Expression() *expression.Expression { return e.expr }

func (e *Expr) Guidance() *rules.Guidance { return e.guidance }

func (e *Expr) IsLogical() bool { return e.expr.IsLogical() }

func (e *Expr) String() string {
	return e.id.String() + " " + e.expr.String()
}

// Winner is the cheapest known physical expression of a group and its total cost.
// It is always published as a whole.
type Winner = pair.Pair[*Expr, types.Cost]

// Group is an equivalence class of expressions.
type Group struct {
	id  types.GroupID
	key string
	// flattened leaf keys of an inner join group, nil otherwise
	leaves []string

	latch        common.ReaderWriterLatch
	exprs        []*Expr
	fingerprints map[string]*Expr

	explored       atomic.Bool
	optimizedLimit atomic.Uint64
	winner         atomic.Pointer[Winner]
	// physical expressions of other groups whose cost depends on this group's winner
	dependents mapset.Set[types.ExprID]
}

func newGroup(id types.GroupID, key string, leaves []string) *Group {
	return &Group{
		id:           id,
		key:          key,
		leaves:       leaves,
		latch:        common.NewRWLatch(),
		exprs:        make([]*Expr, 0, 2),
		fingerprints: make(map[string]*Expr),
		dependents:   mapset.NewSet[types.ExprID](),
	}
}

func (g *Group) ID() types.GroupID { return g.id }

func (g *Group) Key() string { return g.key }

// Members returns a snapshot of the member expressions in insertion order.
func (g *Group) Members() []*Expr {
	g.latch.RLock()
	defer g.latch.RUnlock()
	ret := make([]*Expr, len(g.exprs))
	copy(ret, g.exprs)
	return ret
}

func (g *Group) MemberNum() int {
	g.latch.RLock()
	defer g.latch.RUnlock()
	return len(g.exprs)
}

func (g *Group) logicalMembers() []*expression.Expression {
	g.latch.RLock()
	defer g.latch.RUnlock()
	ret := make([]*expression.Expression, 0, len(g.exprs))
	for _, e := range g.exprs {
		if e.expr.IsLogical() {
			ret = append(ret, e.expr)
		}
	}
	return ret
}

// insert adds e unless a structurally identical member exists. newExpr runs
// under the group latch, before the member is published.
func (g *Group) insert(e *expression.Expression, newExpr func() *Expr) (*Expr, bool) {
	fp := e.Fingerprint()

	g.latch.WLock()
	defer g.latch.WUnlock()
	if existing, ok := g.fingerprints[fp]; ok {
		return existing, false
	}
	expr := newExpr()
	g.exprs = append(g.exprs, expr)
	g.fingerprints[fp] = expr
	return expr, true
}

func (g *Group) IsExplored() bool { return g.explored.Load() }

// Winner returns the current winner, if any.
func (g *Group) Winner() (*Expr, types.Cost, bool) {
	w := g.winner.Load()
	if w == nil {
		return nil, types.InfiniteCost, false
	}
	return w.First, w.Second, true
}

// WinnerCost is InfiniteCost while the group has no winner.
func (g *Group) WinnerCost() types.Cost {
	_, cost, _ := g.Winner()
	return cost
}

// RaiseOptimizedLimit records that the group is being optimized under limit and
// reports whether limit is larger than any previous one.
func (g *Group) RaiseOptimizedLimit(limit types.Cost) bool {
	for {
		old := g.optimizedLimit.Load()
		if uint64(limit) <= old {
			return false
		}
		if g.optimizedLimit.CompareAndSwap(old, uint64(limit)) {
			return true
		}
	}
}

func (g *Group) OptimizedLimit() types.Cost {
	return types.Cost(g.optimizedLimit.Load())
}

// AddDependent registers a parent expression to be re-costed when the winner
// improves. It reports whether the parent was not registered yet.
func (g *Group) AddDependent(id types.ExprID) bool {
	return g.dependents.Add(id)
}

func (g *Group) Dependents() []types.ExprID {
	return g.dependents.ToSlice()
}
