package types

import (
	"math"
	"strconv"
)

// Cost is an abstract plan cost. Lower is better.
type Cost uint64

// InfiniteCost is the budget of an unconstrained search.
const InfiniteCost = Cost(math.MaxUint64)

func (c Cost) IsInfinite() bool { return c == InfiniteCost }

// Add saturates at InfiniteCost.
func (c Cost) Add(other Cost) Cost {
	if c > InfiniteCost-other {
		return InfiniteCost
	}
	return c + other
}

// Sub saturates at zero. Subtracting from InfiniteCost keeps it infinite.
func (c Cost) Sub(other Cost) Cost {
	if c.IsInfinite() {
		return InfiniteCost
	}
	if other >= c {
		return 0
	}
	return c - other
}

func MinCost(a Cost, b Cost) Cost {
	if a < b {
		return a
	}
	return b
}

func (c Cost) String() string {
	if c.IsInfinite() {
		return "inf"
	}
	return strconv.FormatUint(uint64(c), 10)
}
