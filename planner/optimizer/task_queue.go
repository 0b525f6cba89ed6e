package optimizer

import (
	"sync"

	"github.com/golang-collections/collections/queue"
	"github.com/golang-collections/collections/stack"
	"github.com/sasha-s/go-deadlock"
)

type TaskOrder int32

const (
	// LIFO drains the subtasks of a task before its siblings (depth first).
	LIFO TaskOrder = iota
	FIFO
)

type taskContainer interface {
	push(Task)
	pop() Task
	len() int
}

type taskStack struct{ s *stack.Stack }

func (c taskStack) push(t Task) { c.s.Push(t) }
func (c taskStack) pop() Task   { return c.s.Pop().(Task) }
func (c taskStack) len() int    { return c.s.Len() }

type taskFIFO struct{ q *queue.Queue }

func (c taskFIFO) push(t Task) { c.q.Enqueue(t) }
func (c taskFIFO) pop() Task   { return c.q.Dequeue().(Task) }
func (c taskFIFO) len() int    { return c.q.Len() }

// TaskQueue is the work list shared by the workers of one session. It tracks
// outstanding tasks (queued or running) so that workers can tell an empty queue
// from a finished search.
type TaskQueue struct {
	mutex       deadlock.Mutex
	cond        *sync.Cond
	order       TaskOrder
	tasks       taskContainer
	outstanding int
	aborted     bool
}

func NewTaskQueue(order TaskOrder) *TaskQueue {
	q := &TaskQueue{order: order}
	q.cond = sync.NewCond(&q.mutex)
	switch order {
	case FIFO:
		q.tasks = taskFIFO{queue.New()}
	default:
		q.tasks = taskStack{stack.New()}
	}
	return q
}

// Push enqueues tasks so that, among them, the first one is taken first.
func (q *TaskQueue) Push(tasks ...Task) {
	if len(tasks) == 0 {
		return
	}
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.aborted {
		return
	}
	if q.order == LIFO {
		for i := len(tasks) - 1; i >= 0; i-- {
			q.tasks.push(tasks[i])
		}
	} else {
		for _, t := range tasks {
			q.tasks.push(t)
		}
	}
	q.outstanding += len(tasks)
	q.cond.Broadcast()
}

// Pop blocks until a task is available. It returns false once no task is queued
// or running, or the queue was aborted. Every task returned must be finished with Done.
func (q *TaskQueue) Pop() (Task, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	for {
		if q.aborted {
			return Task{}, false
		}
		if q.tasks.len() > 0 {
			return q.tasks.pop(), true
		}
		if q.outstanding == 0 {
			return Task{}, false
		}
		q.cond.Wait()
	}
}

func (q *TaskQueue) Done() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.outstanding--
	if q.outstanding == 0 {
		q.cond.Broadcast()
	}
}

// Abort makes every later Pop fail and wakes the waiting workers.
func (q *TaskQueue) Abort() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.aborted = true
	q.cond.Broadcast()
}

func (q *TaskQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.tasks.len()
}
