// Package workflow orchestrates the claim lifecycle across the item,
// claim and thread repositories. Commands are plain functions that take
// the acting user's ids explicitly; nothing here reads ambient auth
// state. Approve is a three-step sequence over a store with no
// cross-document transactions, so every step is idempotent and the
// claim carries a stage cursor, letting an interrupted approval be
// resumed instead of rolled back.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/model"
	"github.com/erazemk/podari/internal/store"
)

var (
	// ErrItemUnavailable means the target item does not exist or can no
	// longer be claimed or reserved.
	ErrItemUnavailable = errors.New("item is not available")
	// ErrOwnItem means a user tried to claim their own item.
	ErrOwnItem = errors.New("cannot claim own item")
	// ErrAlreadyClaimed means the user already has a pending claim on
	// the item.
	ErrAlreadyClaimed = errors.New("item already claimed by this user")
	// ErrClaimNotPending means a command expected a pending claim but
	// found a missing or terminal one.
	ErrClaimNotPending = errors.New("claim is not pending")
)

// CreateClaim records a claim by input.ClaimerID on an open item. The
// duplicate check is lookup-before-create: it closes the common case,
// not the race where two identical claims are created concurrently.
func CreateClaim(ctx context.Context, cli docstore.Client, input model.ClaimInput) (string, error) {
	item, err := store.GetItem(ctx, cli, input.ItemID)
	if err != nil {
		return "", err
	}
	if item == nil || item.Status != model.ItemStatusOpen {
		return "", ErrItemUnavailable
	}
	if item.OwnerID == input.ClaimerID {
		return "", ErrOwnItem
	}

	existing, err := store.FindClaimForUser(ctx, cli, input.ItemID, input.ClaimerID)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.Status == model.ClaimStatusPending {
		return "", ErrAlreadyClaimed
	}

	id, err := store.CreateClaim(ctx, cli, input)
	if err != nil {
		return "", err
	}

	slog.Info("claim created", "claim", id, "item", input.ItemID, "claimer", input.ClaimerID)
	return id, nil
}

// ListClaimsForItem returns every claim on the item.
func ListClaimsForItem(ctx context.Context, cli docstore.Client, itemID string) ([]model.Claim, error) {
	return store.ListClaimsForItem(ctx, cli, itemID)
}

// FindClaimForUser returns the user's claim on the item, or nil.
func FindClaimForUser(ctx context.Context, cli docstore.Client, itemID, claimerID string) (*model.Claim, error) {
	return store.FindClaimForUser(ctx, cli, itemID, claimerID)
}

// ApproveClaim approves a pending claim: flips the claim to approved,
// reserves the item, and materializes the conversation thread, strictly
// in that order, each write completing before the next starts. On
// success all three effects are observable and the thread id is
// returned.
//
// There is no rollback. A failure partway leaves the claim approved
// with a stage cursor short of "done"; re-invoking the command with the
// same arguments (or running the repair pass) finishes the remaining
// steps, which is why every step tolerates having already run.
func ApproveClaim(ctx context.Context, cli docstore.Client, claimID, itemID, ownerID, claimerID string) (string, error) {
	// Step 1: claim pending -> approved, stage cursor to "claim".
	ok, err := store.TransitionClaim(ctx, cli, claimID,
		model.ClaimStatusPending, model.ClaimStatusApproved, model.ApprovalStageClaim)
	if err != nil {
		return "", err
	}
	if !ok {
		claim, err := store.GetClaim(ctx, cli, claimID)
		if err != nil {
			return "", err
		}
		if claim == nil || claim.Status != model.ClaimStatusApproved {
			return "", ErrClaimNotPending
		}
		// Already approved: this is a retry or resume. If the earlier
		// run finished, hand back its thread; otherwise fall through
		// and redo the remaining steps.
		if claim.ApprovalStage == model.ApprovalStageDone {
			thread, err := store.FindThreadByClaim(ctx, cli, claimID)
			if err != nil {
				return "", err
			}
			if thread != nil {
				return thread.ID, nil
			}
		}
	}

	// Step 2: item open -> reserved.
	ok, err = store.SetItemStatusIf(ctx, cli, itemID, model.ItemStatusReserved, model.ItemStatusOpen)
	if err != nil {
		return "", err
	}
	if !ok {
		item, err := store.GetItem(ctx, cli, itemID)
		if err != nil {
			return "", err
		}
		// Reserved already: either this approval being resumed, or a
		// concurrent approval of another claim on the same item. The
		// item keeps no record of which claim holds the reservation,
		// so both proceed; serializing approvals is the caller's job.
		if item == nil || item.Status != model.ItemStatusReserved {
			return "", ErrItemUnavailable
		}
	}
	if err := store.SetClaimStage(ctx, cli, claimID, model.ApprovalStageItem); err != nil {
		return "", err
	}

	// Step 3: materialize (or reuse) the thread.
	threadID, err := store.CreateThreadForClaim(ctx, cli, model.ThreadInput{
		ClaimID:   claimID,
		ItemID:    itemID,
		OwnerID:   ownerID,
		ClaimerID: claimerID,
	})
	if err != nil {
		return "", err
	}
	if err := store.SetClaimStage(ctx, cli, claimID, model.ApprovalStageDone); err != nil {
		return "", err
	}

	slog.Info("claim approved", "claim", claimID, "item", itemID, "thread", threadID)
	return threadID, nil
}

// RejectClaim moves a pending claim to rejected. Rejecting an already
// rejected claim is a no-op; rejecting an approved or cancelled claim
// fails, so a terminal status is never silently rewritten.
func RejectClaim(ctx context.Context, cli docstore.Client, claimID string) error {
	ok, err := store.TransitionClaim(ctx, cli, claimID,
		model.ClaimStatusPending, model.ClaimStatusRejected, "")
	if err != nil {
		return err
	}
	if ok {
		slog.Info("claim rejected", "claim", claimID)
		return nil
	}

	claim, err := store.GetClaim(ctx, cli, claimID)
	if err != nil {
		return err
	}
	if claim != nil && claim.Status == model.ClaimStatusRejected {
		return nil
	}
	return ErrClaimNotPending
}

// ResumeApproval finishes a partially applied approval by re-running
// ApproveClaim with arguments recovered from the stored claim and item.
func ResumeApproval(ctx context.Context, cli docstore.Client, claimID string) (string, error) {
	claim, err := store.GetClaim(ctx, cli, claimID)
	if err != nil {
		return "", err
	}
	if claim == nil {
		return "", fmt.Errorf("resuming approval: claim %s not found", claimID)
	}
	if claim.Status != model.ClaimStatusApproved {
		return "", ErrClaimNotPending
	}

	item, err := store.GetItem(ctx, cli, claim.ItemID)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", ErrItemUnavailable
	}

	return ApproveClaim(ctx, cli, claim.ID, claim.ItemID, item.OwnerID, claim.ClaimerID)
}

// RepairApprovals scans approved claims whose stage cursor never
// reached "done" and resumes each one. Failures are logged and skipped
// so one broken claim doesn't block the rest of the pass. Returns the
// number of claims repaired.
func RepairApprovals(ctx context.Context, cli docstore.Client) (int, error) {
	claims, err := store.ListClaimsByStatus(ctx, cli, model.ClaimStatusApproved)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, claim := range claims {
		if claim.ApprovalStage == model.ApprovalStageDone {
			continue
		}
		if _, err := ResumeApproval(ctx, cli, claim.ID); err != nil {
			slog.Error("repairing approval", "claim", claim.ID, "error", err)
			continue
		}
		slog.Info("approval repaired", "claim", claim.ID, "stage", claim.ApprovalStage)
		repaired++
	}
	return repaired, nil
}
