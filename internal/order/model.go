package order

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	CancelledByUser  = "user"
	CancelledByAdmin = "admin"
)

// Address is the denormalized shipping destination stored with the order.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a Address) Empty() bool {
	return a.Line1 == "" && a.City == ""
}

// CustomerDetails is resolved at placement time from the profile defaults and
// any per-order overrides; it is frozen into the order.
type CustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// OrderItem is an embedded snapshot line. Name, price and image are copied
// from the catalog at placement so later edits never alter order history.
// ProductID is unset for deal lines whose product could not be resolved.
type OrderItem struct {
	ID         uuid.UUID     `json:"id"`
	OrderID    uuid.UUID     `json:"order_id"`
	ProductID  uuid.NullUUID `json:"product_id,omitempty"`
	Name       string        `json:"name"`
	Quantity   int           `json:"quantity"`
	UnitPrice  float64       `json:"unit_price"`
	Image      string        `json:"image,omitempty"`
	IsFromDeal bool          `json:"is_from_deal,omitempty"`
	DealID     uuid.NullUUID `json:"deal_id,omitempty"`
	DealName   string        `json:"deal_name,omitempty"`
}

type Order struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"user_id"`
	Items              []OrderItem     `json:"items"`
	Amount             float64         `json:"amount"`
	DeliveryCharges    float64         `json:"delivery_charges"`
	Address            Address         `json:"address"`
	CustomerDetails    CustomerDetails `json:"customer_details"`
	Status             Status          `json:"status"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy        *string         `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
