package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Availability is the answer to a stock check for a single product.
type Availability struct {
	Available         bool `json:"available"`
	AvailableQuantity int  `json:"available_quantity"`
}

type Service interface {
	Resolve(ctx context.Context, ref ProductRef) (*Product, error)
	CheckStock(ctx context.Context, productID string, quantity int) (*Availability, error)

	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, publishedOnly bool) ([]Product, error)

	CreateDeal(ctx context.Context, d *Deal) (*Deal, error)
	DeleteDeal(ctx context.Context, id uuid.UUID) error
	ListDeals(ctx context.Context, publishedOnly bool) ([]Deal, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Resolve finds the authoritative product record for a client-supplied
// reference. Identifiers are tried in order (id, legacy id, product id); a
// name lookup against published products is the last resort.
func (s *service) Resolve(ctx context.Context, ref ProductRef) (*Product, error) {
	for _, candidate := range []string{ref.ID, ref.LegacyID, ref.ProductID} {
		if candidate == "" {
			continue
		}
		id, err := uuid.FromString(candidate)
		if err != nil {
			continue
		}
		p, err := s.repo.GetProductByID(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrProductNotFound) {
			return nil, fmt.Errorf("service: failed to resolve product by id %s: %w", id, err)
		}
	}

	if ref.Name != "" {
		p, err := s.repo.GetPublishedByName(ctx, ref.Name)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrProductNotFound) {
			return nil, fmt.Errorf("service: failed to resolve product by name %q: %w", ref.Name, err)
		}
	}

	return nil, ErrProductNotFound
}

func (s *service) CheckStock(ctx context.Context, productID string, quantity int) (*Availability, error) {
	if quantity <= 0 {
		quantity = 1
	}
	p, err := s.Resolve(ctx, ProductRef{ID: productID})
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPublished {
		return &Availability{Available: false, AvailableQuantity: 0}, nil
	}
	return &Availability{
		Available:         p.Quantity >= quantity,
		AvailableQuantity: p.Quantity,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if p.Name == "" {
		return nil, errors.New("service: product name is required")
	}
	if p.Price < 0 || p.DiscountPrice < 0 {
		return nil, errors.New("service: product price cannot be negative")
	}
	if p.Quantity < 0 {
		return nil, errors.New("service: product quantity cannot be negative")
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if !p.Status.Valid() {
		return nil, fmt.Errorf("service: invalid product status %q", p.Status)
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}
	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) (*Product, error) {
	if p.ID == uuid.Nil {
		return nil, errors.New("service: product id is required")
	}
	if !p.Status.Valid() {
		return nil, fmt.Errorf("service: invalid product status %q", p.Status)
	}
	if p.Quantity < 0 {
		return nil, errors.New("service: product quantity cannot be negative")
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", p.ID).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	// Orders keep a denormalized snapshot of every line, so deleting a
	// product does not touch order history.
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to get product: %w", err)
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context, publishedOnly bool) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) CreateDeal(ctx context.Context, d *Deal) (*Deal, error) {
	if d.Name == "" {
		return nil, errors.New("service: deal name is required")
	}
	if d.Price < 0 || d.DiscountPrice < 0 {
		return nil, errors.New("service: deal price cannot be negative")
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if !d.Status.Valid() {
		return nil, fmt.Errorf("service: invalid deal status %q", d.Status)
	}

	if err := s.repo.CreateDeal(ctx, d); err != nil {
		log.Error().Err(err).Str("name", d.Name).Msg("service: failed to create deal")
		return nil, fmt.Errorf("service: failed to create deal: %w", err)
	}
	return d, nil
}

func (s *service) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDeal(ctx, id); err != nil {
		if errors.Is(err, ErrDealNotFound) {
			return ErrDealNotFound
		}
		return fmt.Errorf("service: failed to delete deal: %w", err)
	}
	return nil
}

func (s *service) ListDeals(ctx context.Context, publishedOnly bool) ([]Deal, error) {
	deals, err := s.repo.ListDeals(ctx, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list deals: %w", err)
	}
	return deals, nil
}
