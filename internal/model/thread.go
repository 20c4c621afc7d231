package model

import "time"

// Thread is the conversation context between an item's owner and a
// claimer, created when a claim is approved.
type Thread struct {
	ID            string    `json:"id"`
	ClaimID       string    `json:"claimId"`
	ItemID        string    `json:"itemId"`
	OwnerID       string    `json:"ownerId"`
	ClaimerID     string    `json:"claimerId"`
	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// ThreadInput identifies the parties of a thread. ClaimID is the
// idempotency key; the other references are denormalized so a thread
// can be listed without extra lookups.
type ThreadInput struct {
	ClaimID   string `json:"claimId"`
	ItemID    string `json:"itemId"`
	OwnerID   string `json:"ownerId"`
	ClaimerID string `json:"claimerId"`
}
