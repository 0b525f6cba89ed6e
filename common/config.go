package common

import (
	"runtime"
	"sync/atomic"
)

// when true, latches run deadlock detection and invariant violations dump all goroutine stacks
var EnableDebug = false

var LogLevelSetting = INFO | WARN | ERROR | FATAL //| DEBUG_INFO | DEBUGGING

const (
	// number of shards of the memo's key -> group table
	MemoShardNum = 32
	// word size of Guidance bitsets
	GuidanceWordBits = 64
	// upper bound of CAS retries on a single winner slot before it is treated as a broken invariant
	WinnerCASRetryMax = 1 << 20
)

// default worker goroutine number of a search session
var OptimizerWorkerNum = runtime.NumCPU()

var sessionCounter uint32

// NewSessionNumber returns a process-unique, non-zero memo session number.
func NewSessionNumber() uint32 {
	return atomic.AddUint32(&sessionCounter, 1)
}
