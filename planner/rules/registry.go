package rules

import (
	"fmt"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/SamehadaCascades/common"
	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/types"
	"golang.org/x/exp/slices"
)

// Registry holds the rules of a session. Rule IDs are dense and assigned in
// registration order. After Freeze the registry is immutable and can be shared
// by any number of workers without locking.
type Registry struct {
	rules  []*Rule
	names  map[string]types.RuleID
	frozen atomic.Bool
}

func NewRegistry() *Registry {
	return &Registry{rules: make([]*Rule, 0), names: make(map[string]types.RuleID)}
}

func (r *Registry) Register(name string, kind Kind, promise int, fn Func, ops ...expression.OperatorKind) *Rule {
	common.SH_Assert(!r.frozen.Load(), "rule registered after the registry was frozen")
	common.SH_Assert(fn != nil, "rule function must not be nil")
	if _, ok := r.names[name]; ok {
		panic(fmt.Sprintf("rule %s registered twice", name))
	}
	rule := &Rule{
		ID:        types.RuleID(len(r.rules)),
		Name:      name,
		Kind:      kind,
		Promise:   promise,
		Operators: mapset.NewThreadUnsafeSet[expression.OperatorKind](ops...),
		Apply:     fn,
	}
	r.rules = append(r.rules, rule)
	r.names[name] = rule.ID
	return rule
}

func (r *Registry) Freeze() *Registry {
	r.frozen.Store(true)
	return r
}

func (r *Registry) IsFrozen() bool { return r.frozen.Load() }

func (r *Registry) Len() int { return len(r.rules) }

func (r *Registry) Rule(id types.RuleID) *Rule {
	common.SH_Assert(id >= 0 && int(id) < len(r.rules), "rule id out of range")
	return r.rules[id]
}

func (r *Registry) RuleByName(name string) (*Rule, bool) {
	id, ok := r.names[name]
	if !ok {
		return nil, false
	}
	return r.rules[id], true
}

func (r *Registry) Rules() []*Rule {
	ret := make([]*Rule, len(r.rules))
	copy(ret, r.rules)
	return ret
}

// Candidates returns the rules of the given kinds that match the operator of e and
// are not yet claimed in guidance, by descending promise and then registration order.
// A nil guidance selects regardless of claims.
func (r *Registry) Candidates(e *expression.Expression, guidance *Guidance, kinds ...Kind) []*Rule {
	ret := make([]*Rule, 0)
	var claimed *bitset.BitSet
	if guidance != nil {
		claimed = guidance.Snapshot()
	}
	for _, rule := range r.rules {
		if !slices.Contains(kinds, rule.Kind) || !rule.Matches(e.Kind()) {
			continue
		}
		if claimed != nil && claimed.Test(uint(rule.ID)) {
			continue
		}
		ret = append(ret, rule)
	}
	slices.SortStableFunc(ret, func(a, b *Rule) int {
		if a.Promise != b.Promise {
			return b.Promise - a.Promise
		}
		return int(a.ID - b.ID)
	})
	return ret
}
