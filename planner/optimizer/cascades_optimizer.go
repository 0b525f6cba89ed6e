package optimizer

import (
	"sync"
	"sync/atomic"

	"github.com/ryogrid/SamehadaCascades/common"
	"github.com/ryogrid/SamehadaCascades/errors"
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/planner/memo"
	"github.com/ryogrid/SamehadaCascades/planner/rules"
	"github.com/ryogrid/SamehadaCascades/types"

	perrors "github.com/pingcap/errors"
)

type Config struct {
	// WorkerNum is the number of goroutines draining the task queue. Values
	// below one mean one.
	WorkerNum int
	TaskOrder TaskOrder
}

func DefaultConfig() Config {
	return Config{WorkerNum: common.OptimizerWorkerNum, TaskOrder: LIFO}
}

// CascadesOptimizer runs one search session per Optimize call.
type CascadesOptimizer struct {
	registry  *rules.Registry
	costModel CostModel
	config    Config
}

func NewCascadesOptimizer(registry *rules.Registry, costModel CostModel, config Config) *CascadesOptimizer {
	return &CascadesOptimizer{registry.Freeze(), costModel, config}
}

func (o *CascadesOptimizer) Optimize(root *expression.Tree) (*Plan, error) {
	return NewSearchEngine(o.registry, o.costModel, o.config).Optimize(root)
}

type Stats struct {
	tasks            [taskKindNum]atomic.Int64
	ruleApplications atomic.Int64
	prunes           atomic.Int64
}

func (s *Stats) TaskNum(kind TaskKind) int64 { return s.tasks[kind].Load() }

// RuleApplications counts rule bodies actually run, after claiming.
func (s *Stats) RuleApplications() int64 { return s.ruleApplications.Load() }

func (s *Stats) Prunes() int64 { return s.prunes.Load() }

// SearchEngine is one optimization session: a memo, a task queue and the
// workers draining it. It is used once.
type SearchEngine struct {
	registry  *rules.Registry
	costModel CostModel
	config    Config
	memo      *memo.Memo
	queue     *TaskQueue
	stats     Stats
	abortOnce sync.Once
	abortErr  error
}

func NewSearchEngine(registry *rules.Registry, costModel CostModel, config Config) *SearchEngine {
	if config.WorkerNum < 1 {
		config.WorkerNum = 1
	}
	if !registry.IsFrozen() {
		registry.Freeze()
	}
	return &SearchEngine{
		registry:  registry,
		costModel: costModel,
		config:    config,
		memo:      memo.NewMemo(registry.Len()),
		queue:     NewTaskQueue(config.TaskOrder),
	}
}

func (s *SearchEngine) Memo() *memo.Memo { return s.memo }

func (s *SearchEngine) Stats() *Stats { return &s.stats }

// Optimize interns root, searches until no task is left and extracts the plan
// of the root group's winner.
func (s *SearchEngine) Optimize(root *expression.Tree) (plan *Plan, err error) {
	defer func() {
		if r := recover(); r != nil {
			plan, err = nil, s.abort(r)
		}
	}()

	rootGroup, _, _ := s.memo.Intern(root)
	common.ShPrintf(common.DEBUG_INFO, "optimizer: session %d root %v workers=%d\n", s.memo.Session(), rootGroup.ID(), s.config.WorkerNum)
	s.queue.Push(optimizeGroupTask(rootGroup.ID(), types.InfiniteCost))

	wg := new(sync.WaitGroup)
	for i := 0; i < s.config.WorkerNum; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.work()
		}()
	}
	wg.Wait()

	if s.abortErr != nil {
		return nil, s.abortErr
	}
	if _, _, ok := rootGroup.Winner(); !ok {
		return nil, perrors.Annotatef(errors.ErrNoPlanFound, "root group %v", rootGroup.ID())
	}
	return extractPlan(s.memo, rootGroup)
}

func (s *SearchEngine) work() {
	for {
		task, ok := s.queue.Pop()
		if !ok {
			return
		}
		s.runTask(task)
	}
}

func (s *SearchEngine) runTask(task Task) {
	defer s.queue.Done()
	defer func() {
		if r := recover(); r != nil {
			s.abort(r)
		}
	}()
	s.execute(task)
}

func asInvariantViolation(r interface{}) error {
	if err, ok := r.(error); ok && perrors.Cause(err) == errors.ErrInvariantViolation {
		return err
	}
	return perrors.Annotatef(errors.ErrInvariantViolation, "%v", r)
}

// abort stops the session after a broken invariant. Only the first cause is kept.
func (s *SearchEngine) abort(r interface{}) error {
	err := asInvariantViolation(r)
	s.abortOnce.Do(func() {
		if common.EnableDebug {
			common.RuntimeStack()
		}
		common.ShPrintf(common.ERROR, "optimizer: session %d aborted: %v\n", s.memo.Session(), err)
		s.abortErr = err
		s.queue.Abort()
	})
	return s.abortErr
}

func (s *SearchEngine) schedule(tasks ...Task) {
	s.queue.Push(tasks...)
}

func (s *SearchEngine) execute(task Task) {
	if task.Kind < 0 || task.Kind >= taskKindNum {
		panic(perrors.Annotatef(errors.ErrInvariantViolation, "unknown task kind %d", int32(task.Kind)))
	}
	s.stats.tasks[task.Kind].Add(1)
	common.ShPrintf(common.SEARCH_TASK, "task: %v\n", task)

	switch task.Kind {
	case OptimizeGroup:
		s.optimizeGroup(task)
	case ExploreGroup:
		s.exploreGroup(task)
	case ExploreExpression:
		s.exploreExpression(task)
	case OptimizeExpression:
		s.optimizeExpression(task)
	case ApplyRule:
		s.applyRule(task)
	case OptimizeInputs:
		s.optimizeInputs(task)
	}
}

func (s *SearchEngine) optimizeGroup(task Task) {
	g := s.memo.Group(task.Group)
	if !g.IsExplored() {
		s.schedule(exploreGroupTask(g.ID(), task.Limit), task)
		return
	}
	if !g.RaiseOptimizedLimit(task.Limit) {
		// already optimized under an equal or larger limit
		return
	}
	members := g.Members()
	tasks := make([]Task, 0, len(members))
	for _, e := range members {
		if e.IsLogical() {
			tasks = append(tasks, optimizeExpressionTask(e.ID(), task.Limit))
		} else {
			tasks = append(tasks, optimizeInputsTask(e.ID(), task.Limit))
		}
	}
	s.schedule(tasks...)
}

func (s *SearchEngine) exploreGroup(task Task) {
	g := s.memo.Group(task.Group)
	if !s.memo.MarkExplored(g) {
		return
	}
	tasks := make([]Task, 0)
	for _, e := range g.Members() {
		if e.IsLogical() {
			tasks = append(tasks, exploreExpressionTask(e.ID(), task.Limit))
		}
	}
	s.schedule(tasks...)
}

// exploreChildrenFirst schedules exploration of the unexplored child groups of e
// followed by continuation. It reports whether anything was scheduled.
func (s *SearchEngine) exploreChildrenFirst(e *memo.Expr, limit types.Cost, continuation Task) bool {
	tasks := make([]Task, 0)
	for _, child := range e.Expression().Children() {
		if !s.memo.Group(child).IsExplored() {
			tasks = append(tasks, exploreGroupTask(child, limit))
		}
	}
	if len(tasks) == 0 {
		return false
	}
	s.schedule(append(tasks, continuation)...)
	return true
}

func (s *SearchEngine) scheduleRules(e *memo.Expr, limit types.Cost, optimizing bool, kinds ...rules.Kind) {
	candidates := s.registry.Candidates(e.Expression(), e.Guidance(), kinds...)
	tasks := make([]Task, 0, len(candidates))
	for _, r := range candidates {
		tasks = append(tasks, applyRuleTask(e.ID(), limit, r.ID, r.Promise, optimizing))
	}
	s.schedule(tasks...)
}

func (s *SearchEngine) exploreExpression(task Task) {
	e := s.memo.Expr(task.Expr)
	if !e.IsLogical() {
		return
	}
	if s.exploreChildrenFirst(e, task.Limit, task) {
		return
	}
	s.scheduleRules(e, task.Limit, false, rules.Transformation)
}

func (s *SearchEngine) optimizeExpression(task Task) {
	e := s.memo.Expr(task.Expr)
	if !e.IsLogical() {
		s.schedule(optimizeInputsTask(e.ID(), task.Limit))
		return
	}
	e.Guidance().RaiseLimit(task.Limit)
	if s.exploreChildrenFirst(e, task.Limit, task) {
		return
	}
	s.scheduleRules(e, task.Limit, true, rules.Transformation, rules.Implementation)
}

// applyRule runs the rule at most once per expression: the worker that claims
// the rule's bit in the guidance runs it, every other one returns.
func (s *SearchEngine) applyRule(task Task) {
	e := s.memo.Expr(task.Expr)
	rule := s.registry.Rule(task.Rule)
	if !e.Guidance().Claim(rule.ID) {
		return
	}
	s.stats.ruleApplications.Add(1)

	results := rule.Apply(e.Expression(), s.memo)
	g := s.memo.Group(e.Group())
	tasks := make([]Task, 0, len(results))
	for _, t := range results {
		ne, added := s.memo.InsertInto(g.ID(), t)
		if !added {
			continue
		}
		common.ShPrintf(common.DEBUG_INFO_DETAIL, "optimizer: %s on %v produced %v\n", rule.Name, e, ne)
		switch {
		case !ne.IsLogical():
			tasks = append(tasks, optimizeInputsTask(ne.ID(), task.Limit))
		case task.Optimizing:
			tasks = append(tasks, optimizeExpressionTask(ne.ID(), task.Limit))
		default:
			tasks = append(tasks, exploreExpressionTask(ne.ID(), task.Limit))
			// the group may have been optimized before this member existed
			if limit := g.OptimizedLimit(); limit > 0 {
				tasks = append(tasks, optimizeExpressionTask(ne.ID(), limit))
			}
		}
	}
	s.schedule(tasks...)
}

// optimizeInputs costs a physical expression once every child group has a
// winner. Missing children are optimized under the remaining budget and e is
// re-run as their dependent when they get a winner.
func (s *SearchEngine) optimizeInputs(task Task) {
	e := s.memo.Expr(task.Expr)
	if e.IsLogical() {
		panic(perrors.Annotatef(errors.ErrInvariantViolation, "OptimizeInputs on logical %v", e))
	}
	g := s.memo.Group(e.Group())
	e.Guidance().RaiseLimit(task.Limit)

	bound := types.MinCost(task.Limit, g.WinnerCost())
	if bound == 0 {
		s.prune(e, bound, 0)
		return
	}

	children := e.Expression().Children()
	childCosts := make([]types.Cost, len(children))
	missing := make([]types.GroupID, 0)
	var accumulated types.Cost
	for i, child := range children {
		cg := s.memo.Group(child)
		// register before reading the winner so that no improvement is missed
		cg.AddDependent(e.ID())
		_, cost, ok := cg.Winner()
		if !ok {
			missing = append(missing, child)
			continue
		}
		childCosts[i] = cost
		accumulated = accumulated.Add(cost)
		if accumulated >= bound {
			s.prune(e, bound, accumulated)
			return
		}
	}
	if len(missing) > 0 {
		budget := bound.Sub(accumulated)
		tasks := make([]Task, len(missing))
		for i, child := range missing {
			tasks[i] = optimizeGroupTask(child, budget)
		}
		s.schedule(tasks...)
		return
	}

	total := s.costModel.OperatorCost(e.Expression(), childCosts).Add(accumulated)
	if total >= bound {
		s.prune(e, bound, total)
		return
	}
	if !s.memo.ProposeWinner(g, e, total) {
		return
	}
	deps := g.Dependents()
	tasks := make([]Task, 0, len(deps))
	for _, dep := range deps {
		tasks = append(tasks, optimizeInputsTask(dep, s.memo.Expr(dep).Guidance().CostLimit()))
	}
	s.schedule(tasks...)
}

func (s *SearchEngine) prune(e *memo.Expr, bound types.Cost, cost types.Cost) {
	s.stats.prunes.Add(1)
	common.ShPrintf(common.DEBUGGING, "optimizer: %v: %v (cost=%v bound=%v)\n", e, errors.ErrBudgetExceeded, cost, bound)
}
