package store

import (
	"context"
	"testing"

	"github.com/erazemk/podari/internal/model"
)

func TestCreateThreadForClaimIdempotent(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()

	input := model.ThreadInput{
		ClaimID:   "claim-1",
		ItemID:    "item-1",
		OwnerID:   "user-1",
		ClaimerID: "user-2",
	}

	first, err := CreateThreadForClaim(ctx, cli, input)
	if err != nil {
		t.Fatalf("CreateThreadForClaim() error = %v", err)
	}
	second, err := CreateThreadForClaim(ctx, cli, input)
	if err != nil {
		t.Fatalf("CreateThreadForClaim() retry error = %v", err)
	}
	if first != second {
		t.Errorf("retried create returned a new thread: %s then %s", first, second)
	}

	thread, err := FindThreadByClaim(ctx, cli, "claim-1")
	if err != nil {
		t.Fatalf("FindThreadByClaim() error = %v", err)
	}
	if thread == nil {
		t.Fatal("FindThreadByClaim() = nil, want the created thread")
	}
	if thread.ID != first {
		t.Errorf("thread id = %s, want %s", thread.ID, first)
	}
	if thread.OwnerID != "user-1" || thread.ClaimerID != "user-2" {
		t.Errorf("thread participants = (%s, %s), want (user-1, user-2)", thread.OwnerID, thread.ClaimerID)
	}
	if thread.CreatedAt.IsZero() || thread.LastMessageAt.IsZero() {
		t.Error("thread timestamps should be set by the store")
	}
}

func TestFindThreadByClaimAbsent(t *testing.T) {
	cli := testClient(t)

	thread, err := FindThreadByClaim(context.Background(), cli, "no-such-claim")
	if err != nil {
		t.Fatalf("FindThreadByClaim() error = %v", err)
	}
	if thread != nil {
		t.Errorf("FindThreadByClaim() = %+v, want nil", thread)
	}
}

func TestThreadsDistinctPerClaim(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()

	a, err := CreateThreadForClaim(ctx, cli, model.ThreadInput{
		ClaimID: "claim-a", ItemID: "item-1", OwnerID: "user-1", ClaimerID: "user-2",
	})
	if err != nil {
		t.Fatalf("CreateThreadForClaim() error = %v", err)
	}
	b, err := CreateThreadForClaim(ctx, cli, model.ThreadInput{
		ClaimID: "claim-b", ItemID: "item-1", OwnerID: "user-1", ClaimerID: "user-3",
	})
	if err != nil {
		t.Fatalf("CreateThreadForClaim() error = %v", err)
	}
	if a == b {
		t.Error("claims on the same item should still get distinct threads")
	}
}
