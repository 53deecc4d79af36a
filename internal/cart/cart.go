package cart

// Line is a single cart entry. One line per product, or per deal for bundled
// purchases.
type Line struct {
	ProductID  string  `json:"product_id,omitempty"`
	DealID     string  `json:"deal_id,omitempty"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Image      string  `json:"image,omitempty"`
	Quantity   int     `json:"quantity"`
	IsFromDeal bool    `json:"is_from_deal,omitempty"`
}

// Key identifies the line within a cart. Deal lines are namespaced so a deal
// and a product with the same id never collide.
func (l Line) Key() string {
	if l.IsFromDeal && l.DealID != "" {
		return "deal:" + l.DealID
	}
	return l.ProductID
}

// Cart maps line keys to lines.
type Cart map[string]Line

// Merge combines a guest cart with the server-side cart by summing quantities
// per key. Line metadata (name, price, image) from the guest cart wins, since
// it is the most recently seen by the client. Neither input is modified.
func Merge(guest, server Cart) Cart {
	merged := make(Cart, len(guest)+len(server))
	for k, l := range server {
		merged[k] = l
	}
	for k, l := range guest {
		if existing, ok := merged[k]; ok {
			l.Quantity += existing.Quantity
		}
		merged[k] = l
	}
	return merged
}

// TotalItems is the number of units across all lines.
func (c Cart) TotalItems() int {
	n := 0
	for _, l := range c {
		n += l.Quantity
	}
	return n
}
