package domain

// Status is the lifecycle state of a loan application
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusDisbursed   Status = "disbursed"
	StatusCompleted   Status = "completed"
)

// transitions is the single source of truth for the application workflow.
// Any pair not listed here is an invalid move.
var transitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusDisbursed},
	StatusDisbursed:   {StatusCompleted},
	StatusRejected:    {},
	StatusCompleted:   {},
}

// CanTransition reports whether the workflow allows moving from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// IsValidStatus reports whether s is a known workflow status.
func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// ActiveStatuses are the states counted as in-flight on dashboards.
var ActiveStatuses = []Status{StatusSubmitted, StatusUnderReview, StatusApproved, StatusDisbursed}
