package reference

import (
	"regexp"
	"testing"
)

func TestNewFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^SF-[0-9A-F]{8}$`)
	ref := New(PrefixServiceFee)
	if !pattern.MatchString(ref) {
		t.Errorf("unexpected reference format: %s", ref)
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := New(PrefixDisbursement)
		if seen[ref] {
			t.Fatalf("duplicate reference generated: %s", ref)
		}
		seen[ref] = true
	}
}
