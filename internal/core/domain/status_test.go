package domain

import "testing"

func TestCanTransitionAllowedMoves(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusSubmitted},
		{StatusSubmitted, StatusUnderReview},
		{StatusSubmitted, StatusRejected},
		{StatusUnderReview, StatusApproved},
		{StatusUnderReview, StatusRejected},
		{StatusApproved, StatusDisbursed},
		{StatusDisbursed, StatusCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransitionRejectsEverythingElse(t *testing.T) {
	all := []Status{
		StatusDraft, StatusSubmitted, StatusUnderReview,
		StatusApproved, StatusRejected, StatusDisbursed, StatusCompleted,
	}
	allowed := map[[2]Status]bool{
		{StatusDraft, StatusSubmitted}:        true,
		{StatusSubmitted, StatusUnderReview}:  true,
		{StatusSubmitted, StatusRejected}:     true,
		{StatusUnderReview, StatusApproved}:   true,
		{StatusUnderReview, StatusRejected}:   true,
		{StatusApproved, StatusDisbursed}:     true,
		{StatusDisbursed, StatusCompleted}:    true,
	}
	for _, from := range all {
		for _, to := range all {
			got := CanTransition(from, to)
			if got != allowed[[2]Status{from, to}] {
				t.Errorf("CanTransition(%s, %s) = %v", from, to, got)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !IsTerminal(StatusRejected) {
		t.Error("rejected should be terminal")
	}
	if !IsTerminal(StatusCompleted) {
		t.Error("completed should be terminal")
	}
	if IsTerminal(StatusDraft) {
		t.Error("draft should not be terminal")
	}
}

func TestIsValidStatus(t *testing.T) {
	if !IsValidStatus(StatusUnderReview) {
		t.Error("under_review should be valid")
	}
	if IsValidStatus(Status("cancelled")) {
		t.Error("cancelled is not a workflow status")
	}
}
