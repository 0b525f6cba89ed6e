// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

import (
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"
)

func init() {
	deadlock.Opts.Disable = !EnableDebug
}

type ReaderWriterLatch interface {
	WLock()
	WUnlock()
	RLock()
	RUnlock()
	PrintDebugInfo()
}

// readerWriterLatch detects lock order inversions and long waits when
// EnableDebug is set at process start.
type readerWriterLatch struct {
	mutex *deadlock.RWMutex
}

// NewRWLatch returns the tracing latch while EnableDebug is set.
func NewRWLatch() ReaderWriterLatch {
	if EnableDebug {
		return NewRWLatchDebug()
	}
	latch := readerWriterLatch{}
	latch.mutex = new(deadlock.RWMutex)
	return &latch
}

func (l *readerWriterLatch) WLock() {
	l.mutex.Lock()
}

func (l *readerWriterLatch) WUnlock() {
	l.mutex.Unlock()
}

func (l *readerWriterLatch) RLock() {
	l.mutex.RLock()
}

func (l *readerWriterLatch) RUnlock() {
	l.mutex.RUnlock()
}

func (l *readerWriterLatch) PrintDebugInfo() {
	//do nothing
}

// for debug of concurrent code on single thread running
type readerWriterLatchDummy struct {
	readerCnt int32
	writerCnt int32
}

func NewRWLatchDummy() ReaderWriterLatch {
	latch := readerWriterLatchDummy{0, 0}

	return &latch
}

func (l *readerWriterLatchDummy) WLock() {
	l.writerCnt++
	SH_Assert(l.writerCnt == 1 && l.readerCnt == 0, "double Write WLock!")
}

func (l *readerWriterLatchDummy) WUnlock() {
	l.writerCnt--
	SH_Assert(l.writerCnt == 0, "double Write WUnlock!")
}

func (l *readerWriterLatchDummy) RLock() {
	l.readerCnt++
	SH_Assert(l.writerCnt == 0, "RLock while write locked!")
}

func (l *readerWriterLatchDummy) RUnlock() {
	l.readerCnt--
	SH_Assert(l.readerCnt >= 0, "double Reader RUnlock!")
}

func (l *readerWriterLatchDummy) PrintDebugInfo() {
	ShPrintf(DEBUGGING, "PrintDebugInfo: readerCnt=%d, writerCnt=%d\n", l.readerCnt, l.writerCnt)
}

type readerWriterLatchDebug struct {
	mutex     *deadlock.RWMutex
	readerCnt int32
	writerCnt int32
}

// NewRWLatchDebug returns a latch which traces every lock operation.
func NewRWLatchDebug() ReaderWriterLatch {
	latch := readerWriterLatchDebug{new(deadlock.RWMutex), 0, 0}

	return &latch
}

func (l *readerWriterLatchDebug) WLock() {
	atomic.AddInt32(&l.writerCnt, 1)
	ShPrintf(DEBUG_INFO_DETAIL, "WLock: readerCnt=%d, writerCnt=%d\n", atomic.LoadInt32(&l.readerCnt), atomic.LoadInt32(&l.writerCnt))

	l.mutex.Lock()
}

func (l *readerWriterLatchDebug) WUnlock() {
	atomic.AddInt32(&l.writerCnt, -1)
	ShPrintf(DEBUG_INFO_DETAIL, "WUnlock: readerCnt=%d, writerCnt=%d\n", atomic.LoadInt32(&l.readerCnt), atomic.LoadInt32(&l.writerCnt))

	l.mutex.Unlock()
}

func (l *readerWriterLatchDebug) RLock() {
	atomic.AddInt32(&l.readerCnt, 1)
	ShPrintf(DEBUG_INFO_DETAIL, "RLock: readerCnt=%d, writerCnt=%d\n", atomic.LoadInt32(&l.readerCnt), atomic.LoadInt32(&l.writerCnt))

	l.mutex.RLock()
}

func (l *readerWriterLatchDebug) RUnlock() {
	atomic.AddInt32(&l.readerCnt, -1)
	ShPrintf(DEBUG_INFO_DETAIL, "RUnlock: readerCnt=%d, writerCnt=%d\n", atomic.LoadInt32(&l.readerCnt), atomic.LoadInt32(&l.writerCnt))

	l.mutex.RUnlock()
}

func (l *readerWriterLatchDebug) PrintDebugInfo() {
	ShPrintf(DEBUGGING, "PrintDebugInfo: readerCnt=%d, writerCnt=%d\n", atomic.LoadInt32(&l.readerCnt), atomic.LoadInt32(&l.writerCnt))
}
