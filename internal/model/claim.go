package model

import "time"

// Claim is a request by a user to receive an item.
type Claim struct {
	ID                string    `json:"id"`
	ItemID            string    `json:"itemId"`
	ClaimerID         string    `json:"claimerId"`
	ShippingAddress   string    `json:"shippingAddress,omitempty"`
	ShippingConfirmed bool      `json:"shippingConfirmed"`
	Status            string    `json:"status"`
	ApprovalStage     string    `json:"approvalStage,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Claim statuses. Pending is the only non-terminal state.
const (
	ClaimStatusPending   = "pending"
	ClaimStatusApproved  = "approved"
	ClaimStatusRejected  = "rejected"
	ClaimStatusCancelled = "cancelled"
)

// Approval stage cursor, persisted on the claim so a partially applied
// approval can be resumed from the last completed step.
const (
	ApprovalStageClaim = "claim" // claim status flipped to approved
	ApprovalStageItem  = "item"  // item reserved
	ApprovalStageDone  = "done"  // thread exists
)

// ClaimTerminal reports whether status is one of the terminal claim states.
func ClaimTerminal(status string) bool {
	switch status {
	case ClaimStatusApproved, ClaimStatusRejected, ClaimStatusCancelled:
		return true
	}
	return false
}

// ClaimInput holds the fields recorded when a user claims an item.
type ClaimInput struct {
	ItemID            string `json:"itemId"`
	ClaimerID         string `json:"claimerId"`
	ShippingAddress   string `json:"shippingAddress"`
	ShippingConfirmed bool   `json:"shippingConfirmed"`
}
