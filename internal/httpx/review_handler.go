package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/storefront-go/storefront/internal/review"
	"github.com/storefront-go/storefront/internal/user"
)

type ReviewHandler struct {
	reviews review.Service
	users   user.Service
}

func NewReviewHandler(reviews review.Service, users user.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, users: users}
}

type addCommentRequest struct {
	ProductID string `json:"productId"`
	Content   string `json:"content"`
}

func (h *ReviewHandler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	productID, err := uuid.FromString(req.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	if req.Content == "" {
		respondWithError(w, http.StatusBadRequest, "content is required")
		return
	}

	u, err := h.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	c, err := h.reviews.AddComment(r.Context(), sess.UserID, u.Name, productID, req.Content)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "comment": c})
}

type replyRequest struct {
	ParentID string `json:"parentId"`
	Content  string `json:"content"`
}

func (h *ReviewHandler) handleReply(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	parentID, err := uuid.FromString(req.ParentID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid parent comment id")
		return
	}
	if req.Content == "" {
		respondWithError(w, http.StatusBadRequest, "content is required")
		return
	}

	u, err := h.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	c, err := h.reviews.Reply(r.Context(), sess.UserID, u.Name, parentID, req.Content)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "comment": c})
}

func (h *ReviewHandler) handleListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "productId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	comments, err := h.reviews.ListByProduct(r.Context(), productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "comments": comments})
}
