package expression

import "fmt"

type PropertyKind int32

const (
	Sorted PropertyKind = iota
	Partitioned
	Exchanged
	RowStored
	ColumnStored
)

// PhysicalProperty is a guarantee a physical expression makes about its output.
// Column is the sort key, partition count or exchange id; it is unused for the
// storage layout kinds.
type PhysicalProperty struct {
	Kind   PropertyKind
	Column int
}

func (p PhysicalProperty) String() string {
	switch p.Kind {
	case Sorted:
		return fmt.Sprintf("sorted(%d)", p.Column)
	case Partitioned:
		return fmt.Sprintf("partitioned(%d)", p.Column)
	case Exchanged:
		return fmt.Sprintf("exchanged(%d)", p.Column)
	case RowStored:
		return "row"
	case ColumnStored:
		return "column"
	}
	return fmt.Sprintf("PropertyKind(%d)", int32(p.Kind))
}

// Satisfies reports whether every required property is among the provided ones.
// Search does not request properties yet; callers can use it to filter plans.
func Satisfies(provided []PhysicalProperty, required []PhysicalProperty) bool {
	for _, req := range required {
		found := false
		for _, p := range provided {
			if p == req {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
