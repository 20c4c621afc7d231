package api

import (
	"net/http"

	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/model"
	"github.com/erazemk/podari/internal/store"
	"github.com/erazemk/podari/internal/workflow"
)

// ClaimsHandler fronts the claim workflow. The workflow expects its
// callers to have verified preconditions (ownership, matching ids), so
// the authorization checks live here.
type ClaimsHandler struct {
	Docs docstore.Client
}

type createClaimRequest struct {
	ItemID            string `json:"itemId"`
	ShippingAddress   string `json:"shippingAddress"`
	ShippingConfirmed bool   `json:"shippingConfirmed"`
}

// Create handles POST /api/claims. The claimer is always the
// authenticated user, never a client-supplied id.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == "" {
		jsonError(w, http.StatusBadRequest, "itemId required")
		return
	}

	id, err := workflow.CreateClaim(r.Context(), h.Docs, model.ClaimInput{
		ItemID:            req.ItemID,
		ClaimerID:         user.UserID,
		ShippingAddress:   req.ShippingAddress,
		ShippingConfirmed: req.ShippingConfirmed,
	})
	switch err {
	case nil:
	case workflow.ErrItemUnavailable:
		jsonError(w, http.StatusConflict, "item is not available")
		return
	case workflow.ErrOwnItem:
		jsonError(w, http.StatusBadRequest, "cannot claim your own item")
		return
	case workflow.ErrAlreadyClaimed:
		jsonError(w, http.StatusConflict, "you already have a pending claim on this item")
		return
	default:
		jsonError(w, http.StatusInternalServerError, "failed to create claim")
		return
	}

	claim, err := store.GetClaim(r.Context(), h.Docs, id)
	if err != nil || claim == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load created claim")
		return
	}
	jsonResponse(w, http.StatusCreated, claim)
}

// ListForItem handles GET /api/items/{id}/claims. Only the item owner
// sees the claims on their listing.
func (h *ClaimsHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	item, err := store.GetItem(r.Context(), h.Docs, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	user := CurrentUser(r.Context())
	if user.UserID != item.OwnerID {
		jsonError(w, http.StatusForbidden, "not the item owner")
		return
	}

	claims, err := workflow.ListClaimsForItem(r.Context(), h.Docs, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

// FindMine handles GET /api/items/{id}/claims/mine, returning the
// current user's claim on the item.
func (h *ClaimsHandler) FindMine(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	claim, err := workflow.FindClaimForUser(r.Context(), h.Docs, r.PathValue("id"), user.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to find claim")
		return
	}
	if claim == nil {
		jsonError(w, http.StatusNotFound, "no claim on this item")
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}

// Approve handles POST /api/claims/{id}/approve.
func (h *ClaimsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	claim, item, ok := h.ownedClaim(w, r)
	if !ok {
		return
	}

	threadID, err := workflow.ApproveClaim(r.Context(), h.Docs,
		claim.ID, claim.ItemID, item.OwnerID, claim.ClaimerID)
	switch err {
	case nil:
	case workflow.ErrClaimNotPending:
		jsonError(w, http.StatusConflict, "claim is not pending")
		return
	case workflow.ErrItemUnavailable:
		jsonError(w, http.StatusConflict, "item is not available")
		return
	default:
		jsonError(w, http.StatusInternalServerError, "failed to approve claim")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"threadId": threadID})
}

// Reject handles POST /api/claims/{id}/reject.
func (h *ClaimsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	claim, _, ok := h.ownedClaim(w, r)
	if !ok {
		return
	}

	err := workflow.RejectClaim(r.Context(), h.Docs, claim.ID)
	switch err {
	case nil:
	case workflow.ErrClaimNotPending:
		jsonError(w, http.StatusConflict, "claim is not pending")
		return
	default:
		jsonError(w, http.StatusInternalServerError, "failed to reject claim")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "claim rejected"})
}

// ownedClaim loads the claim from the path together with its item and
// verifies the current user owns that item, writing the error response
// itself when not.
func (h *ClaimsHandler) ownedClaim(w http.ResponseWriter, r *http.Request) (*model.Claim, *model.Item, bool) {
	claim, err := store.GetClaim(r.Context(), h.Docs, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return nil, nil, false
	}
	if claim == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return nil, nil, false
	}

	item, err := store.GetItem(r.Context(), h.Docs, claim.ItemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, nil, false
	}

	user := CurrentUser(r.Context())
	if user.UserID != item.OwnerID {
		jsonError(w, http.StatusForbidden, "not the item owner")
		return nil, nil, false
	}
	return claim, item, true
}
