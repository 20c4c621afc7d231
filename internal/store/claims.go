package store

import (
	"context"
	"fmt"

	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/model"
)

const claimsCollection = "claims"

// CreateClaim persists a new pending claim and returns its id.
func CreateClaim(ctx context.Context, cli docstore.Client, input model.ClaimInput) (string, error) {
	id, err := cli.Create(ctx, claimsCollection, docstore.Fields{
		"itemId":            input.ItemID,
		"claimerId":         input.ClaimerID,
		"shippingAddress":   input.ShippingAddress,
		"shippingConfirmed": input.ShippingConfirmed,
		"status":            model.ClaimStatusPending,
		"createdAt":         docstore.ServerTimestamp{},
	})
	if err != nil {
		return "", fmt.Errorf("creating claim: %w", err)
	}
	return id, nil
}

// GetClaim returns a claim by id, or nil when it does not exist.
func GetClaim(ctx context.Context, cli docstore.Client, id string) (*model.Claim, error) {
	doc, err := cli.Get(ctx, claimsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return decodeClaim(doc)
}

// ListClaimsForItem returns every claim referencing the item, any
// status, oldest first.
func ListClaimsForItem(ctx context.Context, cli docstore.Client, itemID string) ([]model.Claim, error) {
	docs, err := cli.Query(ctx, claimsCollection, docstore.Query{
		Filters: []docstore.Filter{{Field: "itemId", Value: itemID}},
		OrderBy: "createdAt",
	})
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	return decodeClaims(docs)
}

// ListClaimsByStatus returns every claim with the given status. Used by
// the repair pass to find approvals that never completed.
func ListClaimsByStatus(ctx context.Context, cli docstore.Client, status string) ([]model.Claim, error) {
	docs, err := cli.Query(ctx, claimsCollection, docstore.Query{
		Filters: []docstore.Filter{{Field: "status", Value: status}},
		OrderBy: "createdAt",
	})
	if err != nil {
		return nil, fmt.Errorf("listing claims by status: %w", err)
	}
	return decodeClaims(docs)
}

// FindClaimForUser returns the first claim for the (item, claimer)
// pair, or nil. Callers use this before creating a claim to avoid
// duplicates; nothing in the store itself forbids a second claim that
// slips in between the lookup and the create.
func FindClaimForUser(ctx context.Context, cli docstore.Client, itemID, claimerID string) (*model.Claim, error) {
	docs, err := cli.Query(ctx, claimsCollection, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "itemId", Value: itemID},
			{Field: "claimerId", Value: claimerID},
		},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("finding claim: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeClaim(&docs[0])
}

// SetClaimStatus overwrites a claim's status without checking the
// current value. Workflow steps should use TransitionClaim instead.
func SetClaimStatus(ctx context.Context, cli docstore.Client, id, status string) error {
	if err := cli.Update(ctx, claimsCollection, id, docstore.Fields{"status": status}); err != nil {
		return fmt.Errorf("setting claim status: %w", err)
	}
	return nil
}

// TransitionClaim moves a claim from one status to another, recording
// the approval stage cursor in the same write when stage is non-empty.
// Reports whether the transition was applied.
func TransitionClaim(ctx context.Context, cli docstore.Client, id, from, to, stage string) (bool, error) {
	fields := docstore.Fields{"status": to}
	if stage != "" {
		fields["approvalStage"] = stage
	}

	ok, err := cli.UpdateIf(ctx, claimsCollection, id, fields,
		docstore.Filter{Field: "status", Value: from})
	if err != nil {
		return false, fmt.Errorf("transitioning claim: %w", err)
	}
	return ok, nil
}

// SetClaimStage advances the approval stage cursor.
func SetClaimStage(ctx context.Context, cli docstore.Client, id, stage string) error {
	if err := cli.Update(ctx, claimsCollection, id, docstore.Fields{"approvalStage": stage}); err != nil {
		return fmt.Errorf("setting claim stage: %w", err)
	}
	return nil
}

func decodeClaim(doc *docstore.Doc) (*model.Claim, error) {
	claim := &model.Claim{}
	if err := doc.Decode(claim); err != nil {
		return nil, fmt.Errorf("decoding claim %s: %w", doc.ID, err)
	}
	claim.ID = doc.ID
	return claim, nil
}

func decodeClaims(docs []docstore.Doc) ([]model.Claim, error) {
	claims := make([]model.Claim, 0, len(docs))
	for i := range docs {
		claim, err := decodeClaim(&docs[i])
		if err != nil {
			return nil, err
		}
		claims = append(claims, *claim)
	}
	return claims, nil
}
