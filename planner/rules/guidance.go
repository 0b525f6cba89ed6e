package rules

import (
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/ryogrid/SamehadaCascades/common"
	"github.com/ryogrid/SamehadaCascades/types"
)

// Guidance records which rules were already applied to one expression, and the
// largest cost budget the expression has been optimized under.
// Bits are only ever set.
type Guidance struct {
	words   []atomic.Uint64
	ruleNum int
	limit   atomic.Uint64
}

func NewGuidance(ruleNum int) *Guidance {
	wordNum := (ruleNum + common.GuidanceWordBits - 1) / common.GuidanceWordBits
	return &Guidance{words: make([]atomic.Uint64, wordNum), ruleNum: ruleNum}
}

func (g *Guidance) position(id types.RuleID) (*atomic.Uint64, uint64) {
	common.SH_Assert(id >= 0 && int(id) < g.ruleNum, "rule id is outside of the guidance bitset")
	return &g.words[int(id)/common.GuidanceWordBits], uint64(1) << (uint(id) % common.GuidanceWordBits)
}

// Claim sets the bit of the rule and reports whether this call set it. Exactly one
// of any number of racing callers gets true.
func (g *Guidance) Claim(id types.RuleID) bool {
	word, mask := g.position(id)
	for {
		old := word.Load()
		if old&mask != 0 {
			return false
		}
		if word.CompareAndSwap(old, old|mask) {
			return true
		}
	}
}

func (g *Guidance) IsClaimed(id types.RuleID) bool {
	word, mask := g.position(id)
	return word.Load()&mask != 0
}

// Snapshot copies the claimed bits. Claims made after the copy are not seen.
func (g *Guidance) Snapshot() *bitset.BitSet {
	words := make([]uint64, len(g.words))
	for i := range g.words {
		words[i] = g.words[i].Load()
	}
	return bitset.From(words)
}

func (g *Guidance) ClaimedNum() int {
	return int(g.Snapshot().Count())
}

func (g *Guidance) CostLimit() types.Cost {
	return types.Cost(g.limit.Load())
}

// RaiseLimit raises the recorded budget to limit and reports whether it grew.
func (g *Guidance) RaiseLimit(limit types.Cost) bool {
	for {
		old := g.limit.Load()
		if uint64(limit) <= old {
			return false
		}
		if g.limit.CompareAndSwap(old, uint64(limit)) {
			return true
		}
	}
}
