package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/podari/internal/db"
)

func TestGetJWTSecretStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret() error = %v", err)
	}
	if first == "" {
		t.Fatal("GetJWTSecret() returned an empty secret")
	}

	second, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret() error = %v", err)
	}
	if first != second {
		t.Error("secret changed between calls, should be stored once")
	}
}

func TestTokenRevocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked() error = %v", err)
	}
	if revoked {
		t.Error("fresh token reported as revoked")
	}

	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}

	revoked, err = IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked() error = %v", err)
	}
	if !revoked {
		t.Error("revoked token not reported as revoked")
	}
}
