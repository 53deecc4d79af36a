package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDealNotFound    = errors.New("deal not found")
)

// UnavailableError reports a product that exists but is not in a sellable
// state.
type UnavailableError struct {
	Name   string
	Status ProductStatus
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available for purchase (status %s)", e.Name, e.Status)
}

// StockError reports a line whose requested quantity exceeds the stock on
// hand.
type StockError struct {
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Name, e.Requested, e.Available)
}
