package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/podari/internal/blob"
	"github.com/erazemk/podari/internal/docstore"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(database *sql.DB, docs docstore.Client, jwtSecret string, blobs *blob.Store) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: database, Docs: docs, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{Docs: docs, Blobs: blobs}
	claimsHandler := &ClaimsHandler{Docs: docs}
	threadsHandler := &ThreadsHandler{Docs: docs}

	authMW := AuthMiddleware(jwtSecret, database)

	// Public: account bootstrap and browsing.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)

	// Account management.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Listings (owner-scoped writes).
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("POST /api/items/{id}/images", authMW(http.HandlerFunc(itemsHandler.UploadImages)))

	// Claim workflow.
	mux.Handle("POST /api/claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.Handle("GET /api/items/{id}/claims", authMW(http.HandlerFunc(claimsHandler.ListForItem)))
	mux.Handle("GET /api/items/{id}/claims/mine", authMW(http.HandlerFunc(claimsHandler.FindMine)))
	mux.Handle("POST /api/claims/{id}/approve", authMW(http.HandlerFunc(claimsHandler.Approve)))
	mux.Handle("POST /api/claims/{id}/reject", authMW(http.HandlerFunc(claimsHandler.Reject)))

	// Conversation threads (participants only).
	mux.Handle("GET /api/claims/{id}/thread", authMW(http.HandlerFunc(threadsHandler.GetForClaim)))

	// Uploaded images.
	mux.Handle("GET /files/", http.StripPrefix("/files/", blobs.Handler()))

	return mux
}
