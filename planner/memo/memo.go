package memo

import (
	"fmt"
	"sync/atomic"

	perrors "github.com/pingcap/errors"
	"github.com/ryogrid/SamehadaCascades/common"
	"github.com/ryogrid/SamehadaCascades/container/hash"
	"github.com/ryogrid/SamehadaCascades/errors"
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/planner/rules"
	"github.com/ryogrid/SamehadaCascades/types"
)

// Memo is the session-scoped table of groups. It only grows during a session.
// All operations are safe for concurrent use.
type Memo struct {
	session types.SessionID
	ruleNum int

	groupsByKey *hash.ShardedHashTable[string, *Group]
	groups      *hash.ShardedHashTable[types.GroupID, *Group]
	exprs       *hash.ShardedHashTable[types.ExprID, *Expr]

	groupCnt atomic.Uint32
	exprCnt  atomic.Uint32
}

// NewMemo creates an empty memo whose expressions carry guidance for ruleNum rules.
func NewMemo(ruleNum int) *Memo {
	hashGroupID := func(id types.GroupID) uint32 { return hash.HashUint64(uint64(id)) }
	hashExprID := func(id types.ExprID) uint32 { return hash.HashUint64(uint64(id)) }
	return &Memo{
		session:     types.SessionID(common.NewSessionNumber()),
		ruleNum:     ruleNum,
		groupsByKey: hash.NewShardedHashTable[string, *Group](common.MemoShardNum, hash.HashString),
		groups:      hash.NewShardedHashTable[types.GroupID, *Group](common.MemoShardNum, hashGroupID),
		exprs:       hash.NewShardedHashTable[types.ExprID, *Expr](common.MemoShardNum, hashExprID),
	}
}

func (m *Memo) Session() types.SessionID { return m.session }

func (m *Memo) RuleNum() int { return m.ruleNum }

// invariantViolation aborts the session. Callers up the stack recover it.
func invariantViolation(format string, args ...interface{}) {
	panic(perrors.Annotatef(errors.ErrInvariantViolation, format, args...))
}

// Group returns the group of id. Unknown or foreign ids are an invariant violation.
func (m *Memo) Group(id types.GroupID) *Group {
	if id.Session() != m.session {
		invariantViolation("group %v belongs to memo session %d, not %d", id, id.Session(), m.session)
	}
	g, ok := m.groups.GetValue(id)
	if !ok {
		invariantViolation("group %v is unknown to memo session %d", id, m.session)
	}
	return g
}

func (m *Memo) Expr(id types.ExprID) *Expr {
	if id.Session() != m.session {
		invariantViolation("expression %v belongs to memo session %d, not %d", id, id.Session(), m.session)
	}
	e, ok := m.exprs.GetValue(id)
	if !ok {
		invariantViolation("expression %v is unknown to memo session %d", id, m.session)
	}
	return e
}

// LogicalMembers implements rules.Binding.
func (m *Memo) LogicalMembers(id types.GroupID) []*expression.Expression {
	return m.Group(id).logicalMembers()
}

func (m *Memo) GroupCount() int { return m.groups.Count() }

func (m *Memo) ExprCount() int { return m.exprs.Count() }

func (m *Memo) newGroup(key string, leaves []string) *Group {
	id := types.NewGroupID(m.session, m.groupCnt.Add(1))
	g := newGroup(id, key, leaves)
	m.groups.Insert(id, g)
	common.ShPrintf(common.DEBUG_INFO, "memo: new group %v key=%s\n", id, key)
	return g
}

func (m *Memo) insert(g *Group, e *expression.Expression) (*Expr, bool) {
	expr, added := g.insert(e, func() *Expr {
		expr := &Expr{
			id:       types.NewExprID(m.session, m.exprCnt.Add(1)),
			group:    g.id,
			expr:     e,
			guidance: rules.NewGuidance(m.ruleNum),
		}
		// the handle must resolve before the member is visible in the group
		m.exprs.Insert(expr.id, expr)
		return expr
	})
	if added {
		common.ShPrintf(common.DEBUG_INFO_DETAIL, "memo: %v += %v\n", g.id, expr)
	}
	return expr, added
}

// resolve interns the nested inputs of t and returns its root as a flat expression.
func (m *Memo) resolve(t *expression.Tree) *expression.Expression {
	children := make([]types.GroupID, len(t.Inputs))
	for i, in := range t.Inputs {
		if in.IsGroup() {
			children[i] = m.Group(in.Group).id
			continue
		}
		g, _, _ := m.Intern(in.Tree)
		children[i] = g.id
	}
	return expression.New(t.Op, children...)
}

// Intern interns every node of t bottom-up and returns the group of the root,
// the memo entry of the root and whether the entry is new.
func (m *Memo) Intern(t *expression.Tree) (*Group, *Expr, bool) {
	return m.InternExpr(m.resolve(t))
}

// InternExpr looks up or creates the group of e by its canonical key and adds e
// to it unless a structurally identical member already exists. Exactly one group
// is created per key even when callers race.
func (m *Memo) InternExpr(e *expression.Expression) (*Group, *Expr, bool) {
	key, leaves := m.groupKey(e)
	g, _ := m.groupsByKey.GetOrCreate(key, func() *Group { return m.newGroup(key, leaves) })
	expr, added := m.insert(g, e)
	return g, expr, added
}

// InsertInto adds a rule result to the target group. Nested inputs of t get
// their own groups; the root joins the target group since rules preserve
// equivalence.
func (m *Memo) InsertInto(target types.GroupID, t *expression.Tree) (*Expr, bool) {
	g := m.Group(target)
	e := m.resolve(t)
	if e.IsLogical() {
		key, _ := m.groupKey(e)
		if key != g.key {
			// alternate key for the same class
			if other, created := m.groupsByKey.Insert(key, g); !created && other != g {
				common.ShPrintf(common.WARN, "memo: %v and %v share key %s, groups are not merged\n", g.id, other.id, key)
			}
		}
	}
	return m.insert(g, e)
}

// MarkExplored sets the explored flag and reports whether this call did it.
func (m *Memo) MarkExplored(g *Group) bool {
	return g.explored.CompareAndSwap(false, true)
}

// ProposeWinner publishes (e, cost) as winner of g if cost is strictly lower than
// the current winner's. It reports whether the proposal won.
func (m *Memo) ProposeWinner(g *Group, e *Expr, cost types.Cost) bool {
	if e.group != g.id {
		invariantViolation("winner candidate %v is a member of %v, not %v", e.id, e.group, g.id)
	}
	if e.IsLogical() {
		invariantViolation("winner candidate %v of %v is logical", e.id, g.id)
	}
	candidate := &Winner{First: e, Second: cost}
	for i := 0; i < common.WinnerCASRetryMax; i++ {
		old := g.winner.Load()
		if old != nil && old.Second <= cost {
			return false
		}
		if g.winner.CompareAndSwap(old, candidate) {
			common.ShPrintf(common.DEBUG_INFO, "memo: %v winner %v cost=%v\n", g.id, e.id, cost)
			return true
		}
	}
	invariantViolation("winner slot of %v did not settle after %d retries", g.id, common.WinnerCASRetryMax)
	return false
}

func (m *Memo) String() string {
	return fmt.Sprintf("memo(session=%d groups=%d exprs=%d)", m.session, m.GroupCount(), m.ExprCount())
}
