package types

import (
	"testing"

	testingpkg "github.com/ryogrid/SamehadaCascades/testing/testing_assert"
)

func TestCostSaturation(t *testing.T) {
	testingpkg.Equals(t, Cost(30), Cost(10).Add(20))
	testingpkg.Equals(t, InfiniteCost, InfiniteCost.Add(1))
	testingpkg.Equals(t, InfiniteCost, Cost(5).Add(InfiniteCost))
	testingpkg.Equals(t, Cost(0), Cost(5).Sub(10))
	testingpkg.Equals(t, InfiniteCost, InfiniteCost.Sub(10))
	testingpkg.Equals(t, Cost(3), MinCost(3, 7))
	testingpkg.Equals(t, "inf", InfiniteCost.String())
}

func TestHandlesCarrySession(t *testing.T) {
	g := NewGroupID(SessionID(7), 3)
	testingpkg.Equals(t, SessionID(7), g.Session())
	testingpkg.Equals(t, uint32(3), g.Index())
	testingpkg.SimpleAssert(t, g.IsValid())
	testingpkg.AssertFalse(t, InvalidGroupID.IsValid(), "zero handle must be invalid")
	testingpkg.SimpleAssert(t, NewGroupID(1, 3) != NewGroupID(2, 3))

	e := NewExprID(SessionID(2), 9)
	testingpkg.Equals(t, SessionID(2), e.Session())
	testingpkg.Equals(t, "E9", e.String())
}
