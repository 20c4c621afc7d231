package store

import (
	"context"
	"testing"
)

func TestCreateUserAndLookup(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()

	id, err := CreateUser(ctx, cli, "ana@example.com", "Ana", "hash-1")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	user, err := GetUser(ctx, cli, id)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user == nil || user.Email != "ana@example.com" || user.DisplayName != "Ana" {
		t.Errorf("GetUser() = %+v, want the created user", user)
	}

	byEmail, err := GetUserByEmail(ctx, cli, "ana@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail == nil || byEmail.ID != id {
		t.Errorf("GetUserByEmail() = %+v, want user %s", byEmail, id)
	}

	absent, err := GetUserByEmail(ctx, cli, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if absent != nil {
		t.Errorf("GetUserByEmail(absent) = %+v, want nil", absent)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, cli, "ana@example.com", "Ana", "hash-1"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := CreateUser(ctx, cli, "ana@example.com", "Other Ana", "hash-2"); err != ErrEmailTaken {
		t.Errorf("CreateUser(duplicate) error = %v, want ErrEmailTaken", err)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	cli := testClient(t)
	ctx := context.Background()

	id, err := CreateUser(ctx, cli, "ana@example.com", "Ana", "old-hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if err := UpdateUserPassword(ctx, cli, id, "new-hash"); err != nil {
		t.Fatalf("UpdateUserPassword() error = %v", err)
	}

	user, err := GetUser(ctx, cli, id)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want new-hash", user.PasswordHash)
	}
}
