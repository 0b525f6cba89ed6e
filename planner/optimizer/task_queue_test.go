package optimizer

import (
	"testing"

	testingpkg "github.com/ryogrid/SamehadaCascades/testing/testing_assert"
	"github.com/ryogrid/SamehadaCascades/types"
)

func popGroups(t *testing.T, q *TaskQueue, n int) []types.GroupID {
	ret := make([]types.GroupID, 0, n)
	for i := 0; i < n; i++ {
		task, ok := q.Pop()
		testingpkg.SimpleAssert(t, ok)
		ret = append(ret, task.Group)
		q.Done()
	}
	return ret
}

func TestTaskQueueOrder(t *testing.T) {
	a := optimizeGroupTask(1, types.InfiniteCost)
	b := optimizeGroupTask(2, types.InfiniteCost)
	c := optimizeGroupTask(3, types.InfiniteCost)

	lifo := NewTaskQueue(LIFO)
	lifo.Push(a, b)
	lifo.Push(c)
	testingpkg.Equals(t, []types.GroupID{3, 1, 2}, popGroups(t, lifo, 3))

	fifo := NewTaskQueue(FIFO)
	fifo.Push(a, b)
	fifo.Push(c)
	testingpkg.Equals(t, []types.GroupID{1, 2, 3}, popGroups(t, fifo, 3))
}

func TestTaskQueueDrains(t *testing.T) {
	q := NewTaskQueue(LIFO)
	_, ok := q.Pop()
	testingpkg.AssertFalse(t, ok, "empty queue with nothing running must be drained")

	q.Push(optimizeGroupTask(1, 10))
	_, ok = q.Pop()
	testingpkg.SimpleAssert(t, ok)

	// a running task may still push work, so the second worker waits
	result := make(chan bool)
	go func() {
		_, ok := q.Pop()
		result <- ok
	}()
	q.Done()
	testingpkg.AssertFalse(t, <-result, "queue must be drained after the last task is done")
}

func TestTaskQueueAbort(t *testing.T) {
	q := NewTaskQueue(FIFO)
	q.Push(optimizeGroupTask(1, 10), optimizeGroupTask(2, 10))
	q.Abort()
	_, ok := q.Pop()
	testingpkg.AssertFalse(t, ok, "aborted queue must not hand out tasks")
	q.Push(optimizeGroupTask(3, 10))
	testingpkg.Equals(t, 2, q.Len())
}

func TestTaskString(t *testing.T) {
	task := applyRuleTask(types.NewExprID(1, 4), 20, 2, 3, false)
	testingpkg.Equals(t, "ApplyRule(E4, limit=20, rule=2, promise=3)", task.String())
	testingpkg.Equals(t, "OptimizeGroup(G2, limit=inf)", optimizeGroupTask(types.NewGroupID(1, 2), types.InfiniteCost).String())
}
