package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/order"
	"github.com/storefront-go/storefront/internal/user"
)

type mockOrderService struct {
	PlaceFunc        func(ctx context.Context, userID uuid.UUID, in order.PlaceInput) (*order.PlaceResult, error)
	GetFunc          func(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*order.Order, error)
	ListAllFunc      func(ctx context.Context) ([]order.Order, error)
	ListByUserFunc   func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	UpdateStatusFunc func(ctx context.Context, orderID uuid.UUID, newStatus order.Status, reason string) (*order.Order, error)
	CancelFunc       func(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, reason string) (*order.Order, error)
}

func (m *mockOrderService) Place(ctx context.Context, userID uuid.UUID, in order.PlaceInput) (*order.PlaceResult, error) {
	return m.PlaceFunc(ctx, userID, in)
}

func (m *mockOrderService) Get(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*order.Order, error) {
	return m.GetFunc(ctx, orderID, requesterID, isAdmin)
}

func (m *mockOrderService) ListAll(ctx context.Context) ([]order.Order, error) {
	return m.ListAllFunc(ctx)
}

func (m *mockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.ListByUserFunc(ctx, userID)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status, reason string) (*order.Order, error) {
	return m.UpdateStatusFunc(ctx, orderID, newStatus, reason)
}

func (m *mockOrderService) Cancel(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, reason string) (*order.Order, error) {
	return m.CancelFunc(ctx, orderID, requesterID, isAdmin, reason)
}

type mockStockChecker struct {
	CheckStockFunc func(ctx context.Context, productID string, quantity int) (*catalog.Availability, error)
}

func (m *mockStockChecker) CheckStock(ctx context.Context, productID string, quantity int) (*catalog.Availability, error) {
	return m.CheckStockFunc(ctx, productID, quantity)
}

func withSession(req *http.Request, sess *user.Session) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), sessionCtxKey, sess))
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.FromString(s)
	require.NoError(t, err)
	return id
}

func TestOrderHandler_Place(t *testing.T) {
	userID := "123e4567-e89b-12d3-a456-426614174000"
	orderID := "550e8400-e29b-41d4-a716-446655440000"

	tests := []struct {
		name           string
		body           string
		place          func(ctx context.Context, userID uuid.UUID, in order.PlaceInput) (*order.PlaceResult, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"items":[{"id":"` + orderID + `","quantity":2}],"amount":100,"address":{"line1":"1 Main St","city":"Springfield"}}`,
			place: func(ctx context.Context, uid uuid.UUID, in order.PlaceInput) (*order.PlaceResult, error) {
				return &order.PlaceResult{
					OrderID:         uuid.FromStringOrNil(orderID),
					DeliveryCharges: 40,
					CustomerDetails: order.CustomerDetails{Name: "A", Email: "a@x.com", Phone: "1"},
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid_json",
			body:           `{not json}`,
			place:          nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "empty_items",
			body: `{"items":[]}`,
			place: func(ctx context.Context, uid uuid.UUID, in order.PlaceInput) (*order.PlaceResult, error) {
				return nil, &order.ValidationError{Msg: "order must contain at least one item"}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "insufficient_stock",
			body: `{"items":[{"id":"` + orderID + `","quantity":10}],"amount":100,"address":{"line1":"1 Main St","city":"Springfield"}}`,
			place: func(ctx context.Context, uid uuid.UUID, in order.PlaceInput) (*order.PlaceResult, error) {
				return nil, &catalog.StockError{Name: "Widget", Requested: 10, Available: 3}
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{PlaceFunc: tt.place}, &mockStockChecker{})

			req := httptest.NewRequest(http.MethodPost, "/api/order/place", bytes.NewBufferString(tt.body))
			req = withSession(req, &user.Session{UserID: mustUUID(t, userID)})
			w := httptest.NewRecorder()

			h.handlePlace(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if tt.expectedStatus == http.StatusCreated {
				assert.Equal(t, true, resp["success"])
				assert.Equal(t, orderID, resp["orderId"])
			} else {
				assert.Equal(t, false, resp["success"])
				assert.NotEmpty(t, resp["message"])
			}
		})
	}
}

func TestOrderHandler_PlaceRequiresSession(t *testing.T) {
	h := NewOrderHandler(&mockOrderService{}, &mockStockChecker{})

	req := httptest.NewRequest(http.MethodPost, "/api/order/place", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()

	h.handlePlace(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_Cancel(t *testing.T) {
	userID := mustUUID(t, "123e4567-e89b-12d3-a456-426614174000")
	orderID := "550e8400-e29b-41d4-a716-446655440000"

	tests := []struct {
		name           string
		body           string
		cancel         func(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, reason string) (*order.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"orderId":"` + orderID + `","cancellationReason":"ordered by mistake"}`,
			cancel: func(ctx context.Context, oid, rid uuid.UUID, isAdmin bool, reason string) (*order.Order, error) {
				return &order.Order{ID: oid, Status: order.StatusCancelled}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not_cancellable",
			body: `{"orderId":"` + orderID + `","cancellationReason":"too late"}`,
			cancel: func(ctx context.Context, oid, rid uuid.UUID, isAdmin bool, reason string) (*order.Order, error) {
				return nil, &order.NotCancellableError{Status: order.StatusShipped}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "not_owner",
			body: `{"orderId":"` + orderID + `","cancellationReason":"x"}`,
			cancel: func(ctx context.Context, oid, rid uuid.UUID, isAdmin bool, reason string) (*order.Order, error) {
				return nil, order.ErrForbidden
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "invalid_order_id",
			body:           `{"orderId":"nope"}`,
			cancel:         nil,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{CancelFunc: tt.cancel}, &mockStockChecker{})

			req := httptest.NewRequest(http.MethodPost, "/api/order/cancel", bytes.NewBufferString(tt.body))
			req = withSession(req, &user.Session{UserID: userID})
			w := httptest.NewRecorder()

			h.handleCancel(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	orderID := "550e8400-e29b-41d4-a716-446655440000"

	tests := []struct {
		name           string
		body           string
		update         func(ctx context.Context, orderID uuid.UUID, newStatus order.Status, reason string) (*order.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"orderId":"` + orderID + `","status":"Shipped"}`,
			update: func(ctx context.Context, oid uuid.UUID, st order.Status, reason string) (*order.Order, error) {
				return &order.Order{ID: oid, Status: st}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid_transition",
			body: `{"orderId":"` + orderID + `","status":"Packing"}`,
			update: func(ctx context.Context, oid uuid.UUID, st order.Status, reason string) (*order.Order, error) {
				return nil, &order.TransitionError{From: order.StatusDelivered, To: st}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "not_found",
			body: `{"orderId":"` + orderID + `","status":"Shipped"}`,
			update: func(ctx context.Context, oid uuid.UUID, st order.Status, reason string) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{UpdateStatusFunc: tt.update}, &mockStockChecker{})

			req := httptest.NewRequest(http.MethodPost, "/api/order/status", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			h.handleUpdateStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_CheckStock(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		check          func(ctx context.Context, productID string, quantity int) (*catalog.Availability, error)
		expectedStatus int
		wantAvailable  bool
	}{
		{
			name: "available",
			body: `{"productId":"p1","quantity":2}`,
			check: func(ctx context.Context, productID string, quantity int) (*catalog.Availability, error) {
				return &catalog.Availability{Available: true, AvailableQuantity: 5}, nil
			},
			expectedStatus: http.StatusOK,
			wantAvailable:  true,
		},
		{
			name: "out_of_stock",
			body: `{"productId":"p1","quantity":2}`,
			check: func(ctx context.Context, productID string, quantity int) (*catalog.Availability, error) {
				return &catalog.Availability{Available: false, AvailableQuantity: 0}, nil
			},
			expectedStatus: http.StatusOK,
			wantAvailable:  false,
		},
		{
			name: "unknown_product",
			body: `{"productId":"missing","quantity":1}`,
			check: func(ctx context.Context, productID string, quantity int) (*catalog.Availability, error) {
				return nil, catalog.ErrProductNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing_product_id",
			body:           `{"quantity":1}`,
			check:          nil,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{}, &mockStockChecker{CheckStockFunc: tt.check})

			req := httptest.NewRequest(http.MethodPost, "/api/order/check-stock", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			h.handleCheckStock(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp checkStockResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantAvailable, resp.Available)
			}
		})
	}
}

func TestOrderHandler_Get(t *testing.T) {
	userID := mustUUID(t, "123e4567-e89b-12d3-a456-426614174000")
	orderID := "550e8400-e29b-41d4-a716-446655440000"

	h := NewOrderHandler(&mockOrderService{
		GetFunc: func(ctx context.Context, oid, rid uuid.UUID, isAdmin bool) (*order.Order, error) {
			assert.Equal(t, userID, rid)
			return &order.Order{ID: oid, UserID: rid, Status: order.StatusPlaced}, nil
		},
	}, &mockStockChecker{})

	r := chi.NewRouter()
	r.Get("/api/order/{orderId}", h.handleGet)

	req := httptest.NewRequest(http.MethodGet, "/api/order/"+orderID, nil)
	req = withSession(req, &user.Session{UserID: userID})
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
