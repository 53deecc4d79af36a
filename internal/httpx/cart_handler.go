package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/storefront-go/storefront/internal/cart"
)

type CartHandler struct {
	carts *cart.Store
}

func NewCartHandler(carts *cart.Store) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartResponse struct {
	Success bool      `json:"success"`
	Cart    cart.Cart `json:"cart"`
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	c, err := h.carts.Get(r.Context(), sess.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cartResponse{Success: true, Cart: c})
}

func (h *CartHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	var line cart.Line
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if line.Key() == "" {
		respondWithError(w, http.StatusBadRequest, "product_id or deal_id is required")
		return
	}

	c, err := h.carts.UpdateLine(r.Context(), sess.UserID, line)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cartResponse{Success: true, Cart: c})
}

type mergeCartRequest struct {
	Cart cart.Cart `json:"cart"`
}

// handleMerge folds a guest cart (accumulated before login) into the
// server-side cart.
func (h *CartHandler) handleMerge(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	var req mergeCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	merged, err := h.carts.MergeGuest(r.Context(), sess.UserID, req.Cart)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cartResponse{Success: true, Cart: merged})
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	if err := h.carts.Clear(r.Context(), sess.UserID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Cart cleared"})
}
