package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/order"
)

// StockChecker is the slice of the catalog the order surface needs.
type StockChecker interface {
	CheckStock(ctx context.Context, productID string, quantity int) (*catalog.Availability, error)
}

type OrderHandler struct {
	orders order.Service
	stock  StockChecker
}

func NewOrderHandler(orders order.Service, stock StockChecker) *OrderHandler {
	return &OrderHandler{orders: orders, stock: stock}
}

type placeOrderRequest struct {
	Items           []order.ItemInput           `json:"items"`
	Amount          float64                     `json:"amount"`
	Address         order.Address               `json:"address"`
	DeliveryCharges float64                     `json:"deliveryCharges"`
	CustomerDetails *order.CustomerDetailsInput `json:"customerDetails"`
}

type placeOrderResponse struct {
	Success         bool                  `json:"success"`
	Message         string                `json:"message"`
	OrderID         uuid.UUID             `json:"orderId"`
	DeliveryCharges float64               `json:"deliveryCharges"`
	CustomerDetails order.CustomerDetails `json:"customerDetails"`
}

func (h *OrderHandler) handlePlace(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.orders.Place(r.Context(), sess.UserID, order.PlaceInput{
		Items:           req.Items,
		Amount:          req.Amount,
		Address:         req.Address,
		DeliveryCharges: req.DeliveryCharges,
		CustomerDetails: req.CustomerDetails,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, placeOrderResponse{
		Success:         true,
		Message:         "Order placed successfully",
		OrderID:         result.OrderID,
		DeliveryCharges: result.DeliveryCharges,
		CustomerDetails: result.CustomerDetails,
	})
}

type ordersResponse struct {
	Success bool          `json:"success"`
	Orders  []order.Order `json:"orders"`
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ordersResponse{Success: true, Orders: orders})
}

func (h *OrderHandler) handleUserOrders(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ordersResponse{Success: true, Orders: orders})
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	orderID, err := uuid.FromString(chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := h.orders.Get(r.Context(), orderID, sess.UserID, sess.IsAdmin)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

type updateStatusRequest struct {
	OrderID            string `json:"orderId"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellationReason"`
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	orderID, err := uuid.FromString(req.OrderID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), orderID, order.Status(req.Status), req.CancellationReason)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order status updated", "order": o})
}

type cancelOrderRequest struct {
	OrderID            string `json:"orderId"`
	CancellationReason string `json:"cancellationReason"`
}

func (h *OrderHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	orderID, err := uuid.FromString(req.OrderID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := h.orders.Cancel(r.Context(), orderID, sess.UserID, sess.IsAdmin, req.CancellationReason)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order cancelled", "order": o})
}

type checkStockRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type checkStockResponse struct {
	Success           bool `json:"success"`
	Available         bool `json:"available"`
	AvailableQuantity int  `json:"availableQuantity"`
}

func (h *OrderHandler) handleCheckStock(w http.ResponseWriter, r *http.Request) {
	var req checkStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.ProductID == "" {
		respondWithError(w, http.StatusBadRequest, "productId is required")
		return
	}

	availability, err := h.stock.CheckStock(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	log.Debug().Str("product_id", req.ProductID).Int("quantity", req.Quantity).Bool("available", availability.Available).Msg("httpx: stock check")
	respondWithJSON(w, http.StatusOK, checkStockResponse{
		Success:           true,
		Available:         availability.Available,
		AvailableQuantity: availability.AvailableQuantity,
	})
}
