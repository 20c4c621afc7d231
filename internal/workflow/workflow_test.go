package workflow

import (
	"context"
	"testing"

	"github.com/erazemk/podari/internal/db"
	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/model"
	"github.com/erazemk/podari/internal/store"
)

func testClient(t *testing.T) docstore.Client {
	t.Helper()
	return docstore.NewSQLite(db.NewTestDB(t))
}

func createItem(t *testing.T, cli docstore.Client, ownerID string) string {
	t.Helper()
	id, err := store.CreateItem(context.Background(), cli, ownerID, model.ItemInput{
		Title:         "Old bookshelf",
		Category:      "furniture",
		HandoffMethod: model.HandoffMeet,
	})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	return id
}

func TestCreateClaim(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()
	itemID := createItem(t, cli, "owner-1")

	id, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"})
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}

	claim, err := store.GetClaim(ctx, cli, id)
	if err != nil {
		t.Fatalf("GetClaim() error = %v", err)
	}
	if claim == nil || claim.Status != model.ClaimStatusPending {
		t.Errorf("claim = %+v, want a pending claim", claim)
	}
}

func TestCreateClaimErrors(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()
	itemID := createItem(t, cli, "owner-1")

	if _, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: "no-such-item", ClaimerID: "user-2"}); err != ErrItemUnavailable {
		t.Errorf("CreateClaim(absent item) error = %v, want ErrItemUnavailable", err)
	}

	if _, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "owner-1"}); err != ErrOwnItem {
		t.Errorf("CreateClaim(own item) error = %v, want ErrOwnItem", err)
	}

	if _, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"}); err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}
	if _, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"}); err != ErrAlreadyClaimed {
		t.Errorf("CreateClaim(duplicate) error = %v, want ErrAlreadyClaimed", err)
	}

	// A reserved item can no longer be claimed.
	if _, err := store.SetItemStatusIf(ctx, cli, itemID, model.ItemStatusReserved, model.ItemStatusOpen); err != nil {
		t.Fatalf("SetItemStatusIf() error = %v", err)
	}
	if _, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-3"}); err != ErrItemUnavailable {
		t.Errorf("CreateClaim(reserved item) error = %v, want ErrItemUnavailable", err)
	}
}

func TestApproveClaim(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()
	itemID := createItem(t, cli, "owner-1")

	claimID, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"})
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}

	threadID, err := ApproveClaim(ctx, cli, claimID, itemID, "owner-1", "user-2")
	if err != nil {
		t.Fatalf("ApproveClaim() error = %v", err)
	}
	if threadID == "" {
		t.Fatal("ApproveClaim() returned an empty thread id")
	}

	claim, err := store.GetClaim(ctx, cli, claimID)
	if err != nil {
		t.Fatalf("GetClaim() error = %v", err)
	}
	if claim.Status != model.ClaimStatusApproved {
		t.Errorf("claim status = %q, want %q", claim.Status, model.ClaimStatusApproved)
	}
	if claim.ApprovalStage != model.ApprovalStageDone {
		t.Errorf("approval stage = %q, want %q", claim.ApprovalStage, model.ApprovalStageDone)
	}

	item, err := store.GetItem(ctx, cli, itemID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item.Status != model.ItemStatusReserved {
		t.Errorf("item status = %q, want %q", item.Status, model.ItemStatusReserved)
	}

	thread, err := store.FindThreadByClaim(ctx, cli, claimID)
	if err != nil {
		t.Fatalf("FindThreadByClaim() error = %v", err)
	}
	if thread == nil || thread.ID != threadID {
		t.Fatalf("thread = %+v, want thread %s", thread, threadID)
	}
	if thread.OwnerID != "owner-1" || thread.ClaimerID != "user-2" {
		t.Errorf("thread participants = (%s, %s), want (owner-1, user-2)", thread.OwnerID, thread.ClaimerID)
	}
}

func TestApproveClaimRetryReturnsSameThread(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()
	itemID := createItem(t, cli, "owner-1")

	claimID, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"})
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}

	first, err := ApproveClaim(ctx, cli, claimID, itemID, "owner-1", "user-2")
	if err != nil {
		t.Fatalf("ApproveClaim() error = %v", err)
	}
	second, err := ApproveClaim(ctx, cli, claimID, itemID, "owner-1", "user-2")
	if err != nil {
		t.Fatalf("ApproveClaim() retry error = %v", err)
	}
	if first != second {
		t.Errorf("retry created a second thread: %s then %s", first, second)
	}

	claims, err := store.ListClaimsForItem(ctx, cli, itemID)
	if err != nil {
		t.Fatalf("ListClaimsForItem() error = %v", err)
	}
	if len(claims) != 1 {
		t.Errorf("item has %d claims, want 1", len(claims))
	}
}

func TestApproveClaimNotPending(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()
	itemID := createItem(t, cli, "owner-1")

	claimID, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"})
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}
	if err := RejectClaim(ctx, cli, claimID); err != nil {
		t.Fatalf("RejectClaim() error = %v", err)
	}

	if _, err := ApproveClaim(ctx, cli, claimID, itemID, "owner-1", "user-2"); err != ErrClaimNotPending {
		t.Errorf("ApproveClaim(rejected) error = %v, want ErrClaimNotPending", err)
	}

	// The failed approval must leave the item untouched.
	item, err := store.GetItem(ctx, cli, itemID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item.Status != model.ItemStatusOpen {
		t.Errorf("item status = %q, want %q after refused approval", item.Status, model.ItemStatusOpen)
	}
}

func TestRejectClaim(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()
	itemID := createItem(t, cli, "owner-1")

	claimID, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"})
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}

	if err := RejectClaim(ctx, cli, claimID); err != nil {
		t.Fatalf("RejectClaim() error = %v", err)
	}

	claim, err := store.GetClaim(ctx, cli, claimID)
	if err != nil {
		t.Fatalf("GetClaim() error = %v", err)
	}
	if claim.Status != model.ClaimStatusRejected {
		t.Errorf("claim status = %q, want %q", claim.Status, model.ClaimStatusRejected)
	}

	// Rejecting again is a no-op.
	if err := RejectClaim(ctx, cli, claimID); err != nil {
		t.Errorf("RejectClaim(already rejected) error = %v, want nil", err)
	}

	// Rejecting an approved claim must fail.
	otherItem := createItem(t, cli, "owner-1")
	otherClaim, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: otherItem, ClaimerID: "user-2"})
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}
	if _, err := ApproveClaim(ctx, cli, otherClaim, otherItem, "owner-1", "user-2"); err != nil {
		t.Fatalf("ApproveClaim() error = %v", err)
	}
	if err := RejectClaim(ctx, cli, otherClaim); err != ErrClaimNotPending {
		t.Errorf("RejectClaim(approved) error = %v, want ErrClaimNotPending", err)
	}
}

func TestRepairApprovals(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()
	itemID := createItem(t, cli, "owner-1")

	claimID, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"})
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}

	// Simulate an approval that crashed after the first step: claim is
	// approved with the stage cursor stuck at "claim", item still open,
	// no thread.
	ok, err := store.TransitionClaim(ctx, cli, claimID,
		model.ClaimStatusPending, model.ClaimStatusApproved, model.ApprovalStageClaim)
	if err != nil || !ok {
		t.Fatalf("TransitionClaim() = (%v, %v), want applied", ok, err)
	}

	repaired, err := RepairApprovals(ctx, cli)
	if err != nil {
		t.Fatalf("RepairApprovals() error = %v", err)
	}
	if repaired != 1 {
		t.Errorf("RepairApprovals() = %d, want 1", repaired)
	}

	item, err := store.GetItem(ctx, cli, itemID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item.Status != model.ItemStatusReserved {
		t.Errorf("item status = %q, want %q after repair", item.Status, model.ItemStatusReserved)
	}

	thread, err := store.FindThreadByClaim(ctx, cli, claimID)
	if err != nil {
		t.Fatalf("FindThreadByClaim() error = %v", err)
	}
	if thread == nil {
		t.Fatal("repair did not materialize the thread")
	}

	claim, err := store.GetClaim(ctx, cli, claimID)
	if err != nil {
		t.Fatalf("GetClaim() error = %v", err)
	}
	if claim.ApprovalStage != model.ApprovalStageDone {
		t.Errorf("approval stage = %q, want %q after repair", claim.ApprovalStage, model.ApprovalStageDone)
	}

	// Nothing left to repair on a second pass.
	repaired, err = RepairApprovals(ctx, cli)
	if err != nil {
		t.Fatalf("RepairApprovals() error = %v", err)
	}
	if repaired != 0 {
		t.Errorf("second RepairApprovals() = %d, want 0", repaired)
	}
}

func TestResumeApprovalNotApproved(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()
	itemID := createItem(t, cli, "owner-1")

	claimID, err := CreateClaim(ctx, cli, model.ClaimInput{ItemID: itemID, ClaimerID: "user-2"})
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}

	if _, err := ResumeApproval(ctx, cli, claimID); err != ErrClaimNotPending {
		t.Errorf("ResumeApproval(pending) error = %v, want ErrClaimNotPending", err)
	}
}
