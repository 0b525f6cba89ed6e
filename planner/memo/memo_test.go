package memo

import (
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dsnet/golib/memfile"
	perrors "github.com/pingcap/errors"
	"github.com/ryogrid/SamehadaCascades/errors"
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/planner/rules"
	testingpkg "github.com/ryogrid/SamehadaCascades/testing/testing_assert"
	"github.com/ryogrid/SamehadaCascades/types"
)

func newTestMemo() *Memo {
	return NewMemo(rules.DefaultRegistry().Len())
}

func assertInvariantViolation(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		testingpkg.Assert(t, r != nil, "expected a panic")
		err, ok := r.(error)
		testingpkg.Assert(t, ok, "panic value %v is not an error", r)
		testingpkg.Equals(t, errors.ErrInvariantViolation, perrors.Cause(err))
	}()
	f()
}

func TestInternDeduplicatesIdenticalTrees(t *testing.T) {
	m := newTestMemo()

	g1, e1, added1 := m.Intern(expression.NewJoin(expression.NewScan(1), expression.NewScan(2)))
	g2, e2, added2 := m.Intern(expression.NewJoin(expression.NewScan(1), expression.NewScan(2)))

	testingpkg.SimpleAssert(t, added1)
	testingpkg.AssertFalse(t, added2, "identical tree must not add a member")
	testingpkg.Equals(t, g1.ID(), g2.ID())
	testingpkg.SimpleAssert(t, e1 == e2)
	testingpkg.Equals(t, 1, g1.MemberNum())
	testingpkg.Equals(t, 3, m.GroupCount())
	testingpkg.Equals(t, 3, m.ExprCount())
}

func TestGroupKeyClosesOverJoinOrder(t *testing.T) {
	m := newTestMemo()
	scan := expression.NewScan

	ab, _, _ := m.Intern(expression.NewJoin(scan(1), scan(2)))
	ba, _, addedBA := m.Intern(expression.NewJoin(scan(2), scan(1)))
	testingpkg.Equals(t, ab.ID(), ba.ID())
	testingpkg.SimpleAssert(t, addedBA)
	testingpkg.Equals(t, 2, ab.MemberNum())

	left, _, _ := m.Intern(expression.NewJoin(expression.NewJoin(scan(1), scan(2)), scan(3)))
	right, _, _ := m.Intern(expression.NewJoin(scan(1), expression.NewJoin(scan(2), scan(3))))
	testingpkg.Equals(t, left.ID(), right.ID())

	ac, _, _ := m.Intern(expression.NewJoin(scan(1), scan(3)))
	testingpkg.SimpleAssert(t, ac.ID() != ab.ID())

	// self join keeps multiplicity
	aa, _, _ := m.Intern(expression.NewJoin(scan(1), scan(1)))
	aaa, _, _ := m.Intern(expression.NewJoin(expression.NewJoin(scan(1), scan(1)), scan(1)))
	testingpkg.SimpleAssert(t, aa.ID() != aaa.ID())

	// outer joins are not commutative
	lo, _, _ := m.Intern(expression.NewOuterJoin(scan(1), scan(2)))
	ro, _, _ := m.Intern(expression.NewOuterJoin(scan(2), scan(1)))
	testingpkg.SimpleAssert(t, lo.ID() != ro.ID())
	testingpkg.SimpleAssert(t, lo.ID() != ab.ID())

	f1, _, _ := m.Intern(expression.NewFilter("x > 1", scan(1)))
	f2, _, _ := m.Intern(expression.NewFilter("x > 2", scan(1)))
	testingpkg.SimpleAssert(t, f1.ID() != f2.ID())
}

func TestConcurrentInternCreatesOneGroupPerKey(t *testing.T) {
	m := newTestMemo()
	const workers = 32
	ids := make([]types.GroupID, workers)
	wg := sync.WaitGroup{}
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			tree := expression.NewJoin(expression.NewJoin(expression.NewScan(1), expression.NewScan(2)), expression.NewScan(3))
			if i%2 == 1 {
				tree = expression.NewJoin(expression.NewScan(3), expression.NewJoin(expression.NewScan(2), expression.NewScan(1)))
			}
			g, _, _ := m.Intern(tree)
			ids[i] = g.ID()
		}(i)
	}
	close(start)
	wg.Wait()

	for _, id := range ids {
		testingpkg.Equals(t, ids[0], id)
	}
	// three scans, {1,2}, {2,1} shares it, and the root
	testingpkg.Equals(t, 5, m.GroupCount())
	testingpkg.Equals(t, 2, m.Group(ids[0]).MemberNum())
}

func TestInsertIntoTargetsTheGivenGroup(t *testing.T) {
	m := newTestMemo()
	g1, _, _ := m.Intern(expression.NewScan(1))
	g2, _, _ := m.Intern(expression.NewScan(2))
	g3, _, _ := m.Intern(expression.NewScan(3))
	top, _, _ := m.Intern(expression.NewTree(expression.JoinOp{}, expression.GroupInput(g1.ID()), expression.GroupInput(g2.ID())))

	commuted := expression.NewTree(expression.JoinOp{}, expression.GroupInput(g2.ID()), expression.GroupInput(g1.ID()))
	e, added := m.InsertInto(top.ID(), commuted)
	testingpkg.SimpleAssert(t, added)
	testingpkg.Equals(t, top.ID(), e.Group())
	_, added = m.InsertInto(top.ID(), commuted)
	testingpkg.AssertFalse(t, added, "")

	physical := expression.NewTree(expression.HashJoinOp{}, expression.GroupInput(g1.ID()), expression.GroupInput(g2.ID()))
	pe, added := m.InsertInto(top.ID(), physical)
	testingpkg.SimpleAssert(t, added)
	testingpkg.AssertFalse(t, pe.IsLogical(), "")
	testingpkg.Equals(t, 2, len(m.LogicalMembers(top.ID())))
	testingpkg.Equals(t, 3, top.MemberNum())

	// nested inputs of a rule result get their own group
	root, _, _ := m.Intern(expression.NewTree(expression.JoinOp{}, expression.GroupInput(top.ID()), expression.GroupInput(g3.ID())))
	before := m.GroupCount()
	nested := expression.NewTree(expression.JoinOp{},
		expression.GroupInput(g1.ID()),
		expression.TreeInput(expression.NewTree(expression.JoinOp{}, expression.GroupInput(g2.ID()), expression.GroupInput(g3.ID()))))
	re, added := m.InsertInto(root.ID(), nested)
	testingpkg.SimpleAssert(t, added)
	testingpkg.Equals(t, root.ID(), re.Group())
	testingpkg.Equals(t, before+1, m.GroupCount())
}

func TestMarkExploredOnce(t *testing.T) {
	m := newTestMemo()
	g, _, _ := m.Intern(expression.NewScan(1))
	testingpkg.AssertFalse(t, g.IsExplored(), "")
	testingpkg.SimpleAssert(t, m.MarkExplored(g))
	testingpkg.AssertFalse(t, m.MarkExplored(g), "second transition must report false")
	testingpkg.SimpleAssert(t, g.IsExplored())
}

func TestProposeWinnerKeepsMinimum(t *testing.T) {
	m := newTestMemo()
	g, _, _ := m.Intern(expression.NewScan(1))
	costs := []types.Cost{50, 30, 40, 10, 20}
	candidates := make([]*Expr, len(costs))
	for i := range costs {
		e, added := m.InsertInto(g.ID(), expression.NewTree(expression.TableScanOp{TableID: expression.TableID(100 + i)}))
		testingpkg.SimpleAssert(t, added)
		candidates[i] = e
	}

	for round := 0; round < 50; round++ {
		fresh, _, _ := m.Intern(expression.NewScan(expression.TableID(1000 + round)))
		exprs := make([]*Expr, len(costs))
		for i := range costs {
			exprs[i], _ = m.InsertInto(fresh.ID(), expression.NewTree(expression.TableScanOp{TableID: expression.TableID(i)}))
		}
		wg := sync.WaitGroup{}
		for i := range costs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				m.ProposeWinner(fresh, exprs[i], costs[i])
			}(i)
		}
		wg.Wait()
		winner, cost, ok := fresh.Winner()
		testingpkg.SimpleAssert(t, ok)
		testingpkg.Equals(t, types.Cost(10), cost)
		testingpkg.SimpleAssert(t, winner == exprs[3])
	}

	// sequential: only strictly lower costs replace the winner
	history := make([]types.Cost, 0)
	for i, cost := range costs {
		if m.ProposeWinner(g, candidates[i], cost) {
			history = append(history, cost)
		}
	}
	testingpkg.Equals(t, []types.Cost{50, 30, 10}, history)
	testingpkg.AssertFalse(t, m.ProposeWinner(g, candidates[0], 10), "equal cost must not replace")
	testingpkg.Equals(t, types.Cost(10), g.WinnerCost())
}

func TestProposeWinnerRejectsBadCandidates(t *testing.T) {
	m := newTestMemo()
	g1, logical, _ := m.Intern(expression.NewScan(1))
	g2, _, _ := m.Intern(expression.NewScan(2))
	physical, _ := m.InsertInto(g1.ID(), expression.NewTree(expression.TableScanOp{TableID: 1}))

	assertInvariantViolation(t, func() { m.ProposeWinner(g1, logical, 1) })
	assertInvariantViolation(t, func() { m.ProposeWinner(g2, physical, 1) })
}

func TestForeignGroupIsInvariantViolation(t *testing.T) {
	m1 := newTestMemo()
	m2 := newTestMemo()
	g, _, _ := m1.Intern(expression.NewScan(1))
	m2.Intern(expression.NewScan(1))

	// same index, different session
	testingpkg.Equals(t, uint32(1), g.ID().Index())
	assertInvariantViolation(t, func() {
		m2.Intern(expression.NewTree(expression.FilterOp{Predicate: "a"}, expression.GroupInput(g.ID())))
	})
	assertInvariantViolation(t, func() {
		m1.Group(types.NewGroupID(m1.Session(), 999))
	})
}

func TestDependentsAndOptimizedLimit(t *testing.T) {
	m := newTestMemo()
	g, e, _ := m.Intern(expression.NewScan(1))
	testingpkg.SimpleAssert(t, g.AddDependent(e.ID()))
	testingpkg.AssertFalse(t, g.AddDependent(e.ID()), "")
	testingpkg.Equals(t, []types.ExprID{e.ID()}, g.Dependents())

	testingpkg.SimpleAssert(t, g.RaiseOptimizedLimit(100))
	testingpkg.AssertFalse(t, g.RaiseOptimizedLimit(100), "")
	testingpkg.SimpleAssert(t, g.RaiseOptimizedLimit(types.InfiniteCost))
	testingpkg.Equals(t, types.InfiniteCost, g.OptimizedLimit())
}

func TestFormatListsGroupsAndWinners(t *testing.T) {
	m := newTestMemo()
	root, _, _ := m.Intern(expression.NewJoin(expression.NewScan(1), expression.NewScan(2)))
	hj, _ := m.InsertInto(root.ID(), expression.NewTree(expression.HashJoinOp{},
		expression.GroupInput(root.Members()[0].Expression().Child(0)),
		expression.GroupInput(root.Members()[0].Expression().Child(1))))
	m.ProposeWinner(root, hj, 30)

	f := memfile.New(make([]byte, 0))
	testingpkg.Ok(t, m.Format(f))
	_, err := f.Seek(0, io.SeekStart)
	testingpkg.Ok(t, err)
	out, err := io.ReadAll(f)
	testingpkg.Ok(t, err)

	text := string(out)
	testingpkg.SimpleAssert(t, strings.HasPrefix(text, "memo (3 groups)\n"))
	testingpkg.SimpleAssert(t, strings.Contains(text, "G3: Join(type=inner){"))
	testingpkg.SimpleAssert(t, strings.Contains(text, "winner: "+hj.ID().String()+" cost=30"))
	testingpkg.SimpleAssert(t, strings.Index(text, "G1:") < strings.Index(text, "G2:"))
}

func TestMembersAreResolvableWhilePublished(t *testing.T) {
	m := newTestMemo()
	g, _, _ := m.Intern(expression.NewScan(1))
	const exprNum = 200

	done := make(chan struct{})
	unknown := 0
	go func() {
		defer close(done)
		for g.MemberNum() < exprNum+1 {
			for _, e := range g.Members() {
				func() {
					defer func() {
						if r := recover(); r != nil {
							unknown++
						}
					}()
					m.Expr(e.ID())
				}()
			}
		}
	}()
	for i := 0; i < exprNum; i++ {
		m.InsertInto(g.ID(), expression.NewTree(expression.TableScanOp{TableID: expression.TableID(i)}))
	}
	<-done

	testingpkg.Equals(t, 0, unknown)
	testingpkg.Equals(t, exprNum+1, m.ExprCount())
}
