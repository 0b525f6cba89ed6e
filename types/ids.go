package types

import "fmt"

// SessionID identifies one memo (one optimization session). It is embedded in the upper
// half of every handle the memo hands out so that handles of different sessions never alias.
type SessionID uint32

// GroupID is a session-scoped handle of a memo group.
type GroupID uint64

// ExprID is a session-scoped handle of a memo expression.
type ExprID uint64

// RuleID is the dense index of a rule in its registry. It is also the bit index
// of the rule in every Guidance bitset.
type RuleID int32

const InvalidGroupID = GroupID(0)
const InvalidExprID = ExprID(0)
const InvalidRuleID = RuleID(-1)

func NewGroupID(session SessionID, idx uint32) GroupID {
	return GroupID(uint64(session)<<32 | uint64(idx))
}

func (id GroupID) Session() SessionID { return SessionID(id >> 32) }

// Index is the position of the group inside its session, starting from 1.
func (id GroupID) Index() uint32 { return uint32(id) }

func (id GroupID) IsValid() bool { return id != InvalidGroupID && id.Index() != 0 }

func (id GroupID) String() string {
	return fmt.Sprintf("G%d", id.Index())
}

func NewExprID(session SessionID, idx uint32) ExprID {
	return ExprID(uint64(session)<<32 | uint64(idx))
}

func (id ExprID) Session() SessionID { return SessionID(id >> 32) }

func (id ExprID) Index() uint32 { return uint32(id) }

func (id ExprID) String() string {
	return fmt.Sprintf("E%d", id.Index())
}
