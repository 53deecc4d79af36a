package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/storefront-go/storefront/internal/catalog"
)

type CatalogHandler struct {
	catalog catalog.Service
}

func NewCatalogHandler(catalogSvc catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalogSvc}
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	// Admins see every status; the storefront sees published only.
	publishedOnly := true
	if sess, ok := SessionFromContext(r.Context()); ok && sess.IsAdmin {
		publishedOnly = r.URL.Query().Get("all") == ""
	}

	products, err := h.catalog.ListProducts(r.Context(), publishedOnly)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "products": products})
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "productId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "product": p})
}

func (h *CatalogHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	created, err := h.catalog.CreateProduct(r.Context(), &p)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "product": created})
}

func (h *CatalogHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if p.ID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "id is required")
		return
	}

	updated, err := h.catalog.UpdateProduct(r.Context(), &p)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "product": updated})
}

type removeRequest struct {
	ID string `json:"id"`
}

func (h *CatalogHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	id, err := uuid.FromString(req.ID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product deleted"})
}

func (h *CatalogHandler) handleListDeals(w http.ResponseWriter, r *http.Request) {
	publishedOnly := true
	if sess, ok := SessionFromContext(r.Context()); ok && sess.IsAdmin {
		publishedOnly = r.URL.Query().Get("all") == ""
	}

	deals, err := h.catalog.ListDeals(r.Context(), publishedOnly)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "deals": deals})
}

func (h *CatalogHandler) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var d catalog.Deal
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	created, err := h.catalog.CreateDeal(r.Context(), &d)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "deal": created})
}

func (h *CatalogHandler) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	id, err := uuid.FromString(req.ID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal id")
		return
	}

	if err := h.catalog.DeleteDeal(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Deal deleted"})
}
