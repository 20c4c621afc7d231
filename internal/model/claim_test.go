package model

import "testing"

func TestClaimTerminal(t *testing.T) {
	if ClaimTerminal(ClaimStatusPending) {
		t.Error("pending should not be terminal")
	}
	for _, status := range []string{ClaimStatusApproved, ClaimStatusRejected, ClaimStatusCancelled} {
		if !ClaimTerminal(status) {
			t.Errorf("%s should be terminal", status)
		}
	}
	if ClaimTerminal("") {
		t.Error("empty status should not be terminal")
	}
}
