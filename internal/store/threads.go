package store

import (
	"context"
	"fmt"

	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/model"
)

const threadsCollection = "threads"

// CreateThreadForClaim returns the id of the thread for the claim,
// creating it if it does not exist yet. The claimId is the idempotency
// key: the lookup reuses an existing thread, and the store's unique
// index catches the race where two concurrent callers both miss the
// lookup, in which case the loser re-reads and returns the winner's
// thread.
func CreateThreadForClaim(ctx context.Context, cli docstore.Client, input model.ThreadInput) (string, error) {
	existing, err := FindThreadByClaim(ctx, cli, input.ClaimID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	id, err := cli.Create(ctx, threadsCollection, docstore.Fields{
		"claimId":       input.ClaimID,
		"itemId":        input.ItemID,
		"ownerId":       input.OwnerID,
		"claimerId":     input.ClaimerID,
		"createdAt":     docstore.ServerTimestamp{},
		"lastMessageAt": docstore.ServerTimestamp{},
	})
	if docstore.IsUniqueViolation(err) {
		winner, ferr := FindThreadByClaim(ctx, cli, input.ClaimID)
		if ferr != nil {
			return "", ferr
		}
		if winner != nil {
			return winner.ID, nil
		}
	}
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return id, nil
}

// FindThreadByClaim returns the thread for a claim, or nil.
func FindThreadByClaim(ctx context.Context, cli docstore.Client, claimID string) (*model.Thread, error) {
	docs, err := cli.Query(ctx, threadsCollection, docstore.Query{
		Filters: []docstore.Filter{{Field: "claimId", Value: claimID}},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("finding thread: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	thread := &model.Thread{}
	if err := docs[0].Decode(thread); err != nil {
		return nil, fmt.Errorf("decoding thread %s: %w", docs[0].ID, err)
	}
	thread.ID = docs[0].ID
	return thread, nil
}
