package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/notification"
	"github.com/storefront-go/storefront/internal/user"
)

// Stock at or below this (but above zero) after a deduction triggers a
// low-stock notification.
const lowStockThreshold = 10

// ItemInput is one cart line as submitted by the client. Clients identify
// products inconsistently, hence the three id fields; see catalog.ProductRef
// for the resolution order.
type ItemInput struct {
	ID         string  `json:"id"`
	LegacyID   string  `json:"_id"`
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Image      string  `json:"image"`
	IsFromDeal bool    `json:"isFromDeal"`
	DealID     string  `json:"dealId"`
	DealName   string  `json:"dealName"`
}

// CustomerDetailsInput carries optional per-order overrides of the profile
// contact details. Empty fields keep the profile value.
type CustomerDetailsInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PlaceInput struct {
	Items           []ItemInput
	Amount          float64
	Address         Address
	DeliveryCharges float64
	CustomerDetails *CustomerDetailsInput
}

type PlaceResult struct {
	OrderID         uuid.UUID       `json:"order_id"`
	DeliveryCharges float64         `json:"delivery_charges"`
	CustomerDetails CustomerDetails `json:"customer_details"`
}

// Collaborators the workflow consumes; satisfied by catalog.Service,
// user.Service, cart.Store and notification.Notifier respectively.

type ProductResolver interface {
	Resolve(ctx context.Context, ref catalog.ProductRef) (*catalog.Product, error)
}

type ProfileSource interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*user.Profile, error)
}

type CartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

// EventSink receives domain events after the primary mutation has committed.
// Implementations must never fail the caller.
type EventSink interface {
	OrderPlaced(ctx context.Context, ev notification.OrderPlacedEvent)
	OrderCancelled(ctx context.Context, ev notification.OrderCancelledEvent)
	StatusChanged(ctx context.Context, ev notification.StatusChangedEvent)
	LowStock(ctx context.Context, ev notification.StockEvent)
	OutOfStock(ctx context.Context, ev notification.StockEvent)
}

type Service interface {
	Place(ctx context.Context, userID uuid.UUID, in PlaceInput) (*PlaceResult, error)
	Get(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, reason string) (*Order, error)
	Cancel(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, reason string) (*Order, error)
}

// DeliveryOptions control the computed delivery charge when the client does
// not supply one.
type DeliveryOptions struct {
	Charge            float64
	FreeDeliveryAbove float64
}

type service struct {
	repo     Repository
	products ProductResolver
	profiles ProfileSource
	carts    CartClearer
	events   EventSink
	delivery DeliveryOptions
	validate *validator.Validate
}

func NewService(repo Repository, products ProductResolver, profiles ProfileSource, carts CartClearer, events EventSink, delivery DeliveryOptions) Service {
	return &service{
		repo:     repo,
		products: products,
		profiles: profiles,
		carts:    carts,
		events:   events,
		delivery: delivery,
		validate: validator.New(),
	}
}

// resolvedLine pairs a frozen order item with the product it resolved to.
// product is nil only for deal lines kept with client-supplied data.
type resolvedLine struct {
	item    OrderItem
	product *catalog.Product
}

func (s *service) Place(ctx context.Context, userID uuid.UUID, in PlaceInput) (*PlaceResult, error) {
	// Client-input checks first; nothing is written before all lines pass.
	if len(in.Items) == 0 {
		return nil, validationf("cart is empty")
	}
	if in.Amount <= 0 {
		return nil, validationf("order amount must be greater than zero")
	}
	if in.Address.Empty() {
		return nil, validationf("shipping address is required")
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to load profile for placement")
		return nil, fmt.Errorf("service: failed to load customer profile: %w", err)
	}

	details, err := s.resolveCustomerDetails(profile, in.CustomerDetails)
	if err != nil {
		return nil, err
	}

	lines, err := s.validateLines(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	charges := in.DeliveryCharges
	if charges <= 0 {
		charges = s.delivery.Charge
		if in.Amount >= s.delivery.FreeDeliveryAbove {
			charges = 0
		}
	}

	o := &Order{
		UserID:          userID,
		Amount:          in.Amount,
		DeliveryCharges: charges,
		Address:         in.Address,
		CustomerDetails: details,
		Status:          StatusPlaced,
	}
	var deductions []Deduction
	for _, l := range lines {
		o.Items = append(o.Items, l.item)
		if l.product != nil {
			deductions = append(deductions, Deduction{
				ProductID: l.product.ID,
				Name:      l.product.Name,
				Quantity:  l.item.Quantity,
			})
		}
	}

	changes, err := s.repo.Place(ctx, o, deductions)
	if err != nil {
		var stockErr *catalog.StockError
		if errors.As(err, &stockErr) {
			return nil, stockErr
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to place order")
		return nil, fmt.Errorf("service: failed to place order: %w", err)
	}

	// Everything below is best-effort: the order is committed and stays
	// committed no matter what fails here.
	for _, ch := range changes {
		ev := notification.StockEvent{ProductID: ch.ProductID.String(), Name: ch.Name, Remaining: ch.Remaining}
		if ch.Remaining == 0 {
			s.events.OutOfStock(ctx, ev)
		} else if ch.Remaining <= lowStockThreshold {
			s.events.LowStock(ctx, ev)
		}
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart after placement")
	}

	s.events.OrderPlaced(ctx, notification.OrderPlacedEvent{
		OrderID:       o.ID.String(),
		UserID:        userID.String(),
		Amount:        o.Amount,
		CustomerName:  details.Name,
		CustomerEmail: details.Email,
	})

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", userID).Float64("amount", o.Amount).Msg("service: order placed")
	return &PlaceResult{OrderID: o.ID, DeliveryCharges: charges, CustomerDetails: details}, nil
}

// resolveCustomerDetails starts from the profile defaults and overrides
// field-by-field with non-empty request values. An invalid override email
// fails the whole placement.
func (s *service) resolveCustomerDetails(profile *user.Profile, override *CustomerDetailsInput) (CustomerDetails, error) {
	details := CustomerDetails{
		Name:  profile.Name,
		Email: profile.Email,
		Phone: profile.Phone,
	}
	if override == nil {
		return details, nil
	}
	if override.Name != "" {
		details.Name = override.Name
	}
	if override.Email != "" {
		if err := s.validate.Var(override.Email, "email"); err != nil {
			return CustomerDetails{}, validationf("invalid email address %q", override.Email)
		}
		details.Email = override.Email
	}
	if override.Phone != "" {
		details.Phone = override.Phone
	}
	return details, nil
}

// validateLines resolves and checks every cart line before any stock is
// touched. Any failure rejects the whole placement.
func (s *service) validateLines(ctx context.Context, items []ItemInput) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, validationf("invalid quantity for %q", itemDisplayName(it))
		}

		p, err := s.products.Resolve(ctx, catalog.ProductRef{
			ID:        it.ID,
			LegacyID:  it.LegacyID,
			ProductID: it.ProductID,
			Name:      it.Name,
		})
		if err != nil {
			if !errors.Is(err, catalog.ErrProductNotFound) {
				return nil, fmt.Errorf("service: failed to resolve product for %q: %w", itemDisplayName(it), err)
			}
			if !it.IsFromDeal {
				return nil, fmt.Errorf("product %q: %w", itemDisplayName(it), catalog.ErrProductNotFound)
			}
			// Deal lines may reference products no longer individually
			// sellable; keep the client-supplied snapshot with no stock
			// effect.
			lines = append(lines, resolvedLine{item: s.dealLineFromInput(it)})
			continue
		}

		if p.Status != catalog.StatusPublished {
			return nil, &catalog.UnavailableError{Name: p.Name, Status: p.Status}
		}
		if p.Quantity < it.Quantity {
			return nil, &catalog.StockError{Name: p.Name, Requested: it.Quantity, Available: p.Quantity}
		}

		item := OrderItem{
			ProductID:  uuid.NullUUID{UUID: p.ID, Valid: true},
			Name:       p.Name,
			Quantity:   it.Quantity,
			UnitPrice:  p.SellingPrice(),
			Image:      p.Image,
			IsFromDeal: it.IsFromDeal,
			DealName:   it.DealName,
		}
		if dealID, err := uuid.FromString(it.DealID); err == nil {
			item.DealID = uuid.NullUUID{UUID: dealID, Valid: true}
		}
		lines = append(lines, resolvedLine{item: item, product: p})
	}
	return lines, nil
}

func (s *service) dealLineFromInput(it ItemInput) OrderItem {
	item := OrderItem{
		Name:       it.Name,
		Quantity:   it.Quantity,
		UnitPrice:  it.Price,
		Image:      it.Image,
		IsFromDeal: true,
		DealName:   it.DealName,
	}
	if dealID, err := uuid.FromString(it.DealID); err == nil {
		item.DealID = uuid.NullUUID{UUID: dealID, Valid: true}
	}
	return item
}

func itemDisplayName(it ItemInput) string {
	switch {
	case it.Name != "":
		return it.Name
	case it.ID != "":
		return it.ID
	case it.ProductID != "":
		return it.ProductID
	case it.LegacyID != "":
		return it.LegacyID
	}
	return "unknown item"
}

func (s *service) Get(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	if o.UserID != requesterID && !isAdmin {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list user orders: %w", err)
	}
	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, reason string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for status update: %w", err)
	}

	if newStatus == StatusCancelled {
		if reason == "" {
			reason = "Cancelled by admin"
		}
		return s.cancel(ctx, o, CancelledByAdmin, reason)
	}

	if !newStatus.Valid() {
		return nil, validationf("unknown order status %q", newStatus)
	}
	if o.Status == newStatus {
		return o, nil
	}
	if !CanTransition(o.Status, newStatus) {
		return nil, &TransitionError{From: o.Status, To: newStatus}
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	oldStatus := o.Status
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()

	s.events.StatusChanged(ctx, notification.StatusChangedEvent{
		OrderID: o.ID.String(),
		UserID:  o.UserID.String(),
		Phrase:  newStatus.Phrase(),
	})

	log.Info().Stringer("order_id", orderID).Stringer("old_status", oldStatus).Stringer("new_status", newStatus).Msg("service: order status updated")
	return o, nil
}

func (s *service) Cancel(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, reason string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for cancellation: %w", err)
	}

	if o.UserID != requesterID && !isAdmin {
		return nil, ErrForbidden
	}

	actor := CancelledByAdmin
	if o.UserID == requesterID {
		actor = CancelledByUser
	}

	if actor == CancelledByUser {
		if reason == "" {
			return nil, validationf("cancellation reason is required")
		}
		if !o.Status.UserCancellable() {
			return nil, &NotCancellableError{Status: o.Status}
		}
	}
	if reason == "" {
		reason = "Cancelled by admin"
	}

	return s.cancel(ctx, o, actor, reason)
}

func (s *service) cancel(ctx context.Context, o *Order, actor, reason string) (*Order, error) {
	if o.Status.Terminal() {
		return nil, &NotCancellableError{Status: o.Status}
	}

	now := time.Now().UTC()
	cancelled, err := s.repo.Cancel(ctx, o.ID, reason, actor, now)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to cancel order")
		return nil, fmt.Errorf("service: failed to cancel order: %w", err)
	}
	if !cancelled {
		// A concurrent call got there first; report against the stored
		// state rather than restoring twice.
		current, err := s.repo.GetByID(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to re-fetch order after refused cancellation: %w", err)
		}
		return nil, &NotCancellableError{Status: current.Status}
	}

	o.Status = StatusCancelled
	o.CancellationReason = &reason
	o.CancelledAt = &now
	o.CancelledBy = &actor
	o.UpdatedAt = now

	s.events.OrderCancelled(ctx, notification.OrderCancelledEvent{
		OrderID:      o.ID.String(),
		UserID:       o.UserID.String(),
		Reason:       reason,
		CancelledBy:  actor,
		CustomerName: o.CustomerDetails.Name,
	})

	log.Info().Stringer("order_id", o.ID).Str("cancelled_by", actor).Msg("service: order cancelled")
	return o, nil
}
