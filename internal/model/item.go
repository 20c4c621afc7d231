package model

import "time"

// Item is a give-away listing. Field names match the document store
// representation, so the struct doubles as the API shape.
type Item struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"ownerId"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Category           string    `json:"category"`
	Condition          string    `json:"condition"`
	Images             []string  `json:"images"`
	HandoffMethod      string    `json:"handoffMethod"`
	ShippingCostPaidBy string    `json:"shippingCostPaidBy"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Item statuses. Transitions only ever move forward:
// open -> reserved (claim approval) -> given (handoff confirmation).
const (
	ItemStatusOpen     = "open"
	ItemStatusReserved = "reserved"
	ItemStatusGiven    = "given"
)

// Handoff methods.
const (
	HandoffShip = "ship"
	HandoffMeet = "meet"
)

// ShippingPaidByReceiver is the only supported shipping cost arrangement.
const ShippingPaidByReceiver = "receiver"

// ItemInput holds the owner-editable fields of a listing.
type ItemInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Condition     string   `json:"condition"`
	Images        []string `json:"images"`
	HandoffMethod string   `json:"handoffMethod"`
}

// ItemUpdate holds a partial update; nil fields are left unchanged.
type ItemUpdate struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category"`
	Condition     *string   `json:"condition"`
	Images        *[]string `json:"images"`
	HandoffMethod *string   `json:"handoffMethod"`
}
