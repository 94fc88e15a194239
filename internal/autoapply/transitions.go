// Queue entry status graph:
//
//	pending ──► submitted
//	   │  ▲
//	   │  └── failed ──► cancelled
//	   ├──► failed
//	   └──► cancelled
//
// submitted and cancelled are terminal states.
package autoapply

import "fmt"

// Status values mirror the auto_apply_queue status column.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusSubmitted, StatusFailed, StatusCancelled},
	StatusFailed:  {StatusPending, StatusCancelled},
	// submitted and cancelled are terminal
}

// ParseStatus converts a raw string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusSubmitted, StatusFailed, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown queue status %q", s)
}

// IsTransitionAllowed reports whether moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
