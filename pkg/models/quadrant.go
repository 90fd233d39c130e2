package models

// Quadrant is one of the four Eisenhower buckets. The numeric value is also
// the sort rank.
type Quadrant int

const (
	QuadrantImportantUrgent Quadrant = iota + 1
	QuadrantImportantNotUrgent
	QuadrantNotImportantUrgent
	QuadrantNeither
)

// Quadrants lists every quadrant in rank order.
var Quadrants = []Quadrant{
	QuadrantImportantUrgent,
	QuadrantImportantNotUrgent,
	QuadrantNotImportantUrgent,
	QuadrantNeither,
}

func (q Quadrant) String() string {
	switch q {
	case QuadrantImportantUrgent:
		return "important & urgent"
	case QuadrantImportantNotUrgent:
		return "important, not urgent"
	case QuadrantNotImportantUrgent:
		return "not important, urgent"
	case QuadrantNeither:
		return "neither"
	default:
		return "unknown"
	}
}

func (q Quadrant) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}
