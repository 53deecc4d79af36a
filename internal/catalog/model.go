package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

type ProductStatus string

const (
	StatusDraft     ProductStatus = "draft"
	StatusPublished ProductStatus = "published"
	StatusArchived  ProductStatus = "archived"
	StatusScheduled ProductStatus = "scheduled"
)

func (s ProductStatus) String() string {
	return string(s)
}

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived, StatusScheduled:
		return true
	}
	return false
}

type Product struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Price         float64       `json:"price"`
	DiscountPrice float64       `json:"discount_price"`
	Quantity      int           `json:"quantity"`
	Status        ProductStatus `json:"status"`
	Image         string        `json:"image,omitempty"`
	TotalSales    int           `json:"total_sales"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SellingPrice is the price an order line is frozen at: the discount price
// when one is set, the regular price otherwise.
func (p *Product) SellingPrice() float64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.Price
}

// Deal bundles several products into one purchasable line at a combined price.
type Deal struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Price         float64       `json:"price"`
	DiscountPrice float64       `json:"discount_price"`
	Status        ProductStatus `json:"status"`
	Image         string        `json:"image,omitempty"`
	ProductIDs    []uuid.UUID   `json:"product_ids"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ProductRef carries every identifier a client may use for a product, in
// resolution order: ID, then LegacyID, then ProductID, then Name (published
// products only).
type ProductRef struct {
	ID        string
	LegacyID  string
	ProductID string
	Name      string
}

// StockChange reports a product's stock after a deduction was applied.
type StockChange struct {
	ProductID uuid.UUID
	Name      string
	Deducted  int
	Remaining int
}
