package api

import (
	"net/http"

	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/store"
)

// ThreadsHandler exposes conversation thread lookups.
type ThreadsHandler struct {
	Docs docstore.Client
}

// GetForClaim handles GET /api/claims/{id}/thread. Only the thread's
// participants (item owner and claimer) may read it.
func (h *ThreadsHandler) GetForClaim(w http.ResponseWriter, r *http.Request) {
	thread, err := store.FindThreadByClaim(r.Context(), h.Docs, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to find thread")
		return
	}
	if thread == nil {
		jsonError(w, http.StatusNotFound, "thread not found")
		return
	}

	user := CurrentUser(r.Context())
	if user.UserID != thread.OwnerID && user.UserID != thread.ClaimerID {
		jsonError(w, http.StatusForbidden, "not a participant in this thread")
		return
	}
	jsonResponse(w, http.StatusOK, thread)
}
