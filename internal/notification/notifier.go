package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Domain events handed to the notifier by the core services after their
// primary mutation has committed.

type OrderPlacedEvent struct {
	OrderID       string
	UserID        string
	Amount        float64
	CustomerName  string
	CustomerEmail string
}

type OrderCancelledEvent struct {
	OrderID      string
	UserID       string
	Reason       string
	CancelledBy  string
	CustomerName string
}

type StatusChangedEvent struct {
	OrderID string
	UserID  string
	Phrase  string
}

type StockEvent struct {
	ProductID string
	Name      string
	Remaining int
}

type CommentEvent struct {
	CommentID   string
	ProductID   string
	ProductName string
	AuthorName  string
	// ParentAuthorID is set for replies: the user to notify.
	ParentAuthorID string
}

// Notifier turns domain events into notification rows. Every write is
// fire-and-forget: failures are logged and never returned, so a broken sink
// cannot fail the operation that emitted the event.
type Notifier struct {
	repo Repository
}

func NewNotifier(repo Repository) *Notifier {
	return &Notifier{repo: repo}
}

func (n *Notifier) insert(ctx context.Context, rec *Notification) {
	if err := n.repo.Insert(ctx, rec); err != nil {
		log.Warn().Err(err).
			Str("user_id", rec.UserID).
			Str("type", string(rec.Type)).
			Msg("notifier: failed to insert notification, dropping")
	}
}

func (n *Notifier) OrderPlaced(ctx context.Context, ev OrderPlacedEvent) {
	n.insert(ctx, &Notification{
		UserID:      ev.UserID,
		Type:        TypeOrderPlaced,
		Title:       "Order placed",
		Message:     fmt.Sprintf("Your order has been placed successfully. Total: %.2f.", ev.Amount),
		RelatedID:   ev.OrderID,
		RelatedType: "order",
	})
	n.insert(ctx, &Notification{
		UserID:      ChannelAdmin,
		Type:        TypeOrderPlaced,
		Title:       "New order",
		Message:     fmt.Sprintf("New order from %s (%s). Total: %.2f.", ev.CustomerName, ev.CustomerEmail, ev.Amount),
		RelatedID:   ev.OrderID,
		RelatedType: "order",
	})
}

func (n *Notifier) OrderCancelled(ctx context.Context, ev OrderCancelledEvent) {
	n.insert(ctx, &Notification{
		UserID:      ev.UserID,
		Type:        TypeOrderCancelled,
		Title:       "Order cancelled",
		Message:     fmt.Sprintf("Your order has been cancelled. Reason: %s.", ev.Reason),
		RelatedID:   ev.OrderID,
		RelatedType: "order",
	})
	// The admin channel only hears about cancellations the customer made
	// themselves.
	if ev.CancelledBy == "user" {
		n.insert(ctx, &Notification{
			UserID:      ChannelAdmin,
			Type:        TypeOrderCancelled,
			Title:       "Order cancelled by customer",
			Message:     fmt.Sprintf("%s cancelled their order. Reason: %s.", ev.CustomerName, ev.Reason),
			RelatedID:   ev.OrderID,
			RelatedType: "order",
		})
	}
}

func (n *Notifier) StatusChanged(ctx context.Context, ev StatusChangedEvent) {
	n.insert(ctx, &Notification{
		UserID:      ev.UserID,
		Type:        TypeOrderStatus,
		Title:       "Order update",
		Message:     fmt.Sprintf("Your order %s.", ev.Phrase),
		RelatedID:   ev.OrderID,
		RelatedType: "order",
	})
}

func (n *Notifier) LowStock(ctx context.Context, ev StockEvent) {
	n.insert(ctx, &Notification{
		UserID:      ChannelAdmin,
		Type:        TypeLowStock,
		Title:       "Low stock",
		Message:     fmt.Sprintf("Product %q is low on stock: %d left.", ev.Name, ev.Remaining),
		RelatedID:   ev.ProductID,
		RelatedType: "product",
	})
}

func (n *Notifier) OutOfStock(ctx context.Context, ev StockEvent) {
	n.insert(ctx, &Notification{
		UserID:      ChannelAdmin,
		Type:        TypeOutOfStock,
		Title:       "Out of stock",
		Message:     fmt.Sprintf("Product %q is out of stock.", ev.Name),
		RelatedID:   ev.ProductID,
		RelatedType: "product",
	})
}

func (n *Notifier) CommentAdded(ctx context.Context, ev CommentEvent) {
	n.insert(ctx, &Notification{
		UserID:      ChannelAdmin,
		Type:        TypeComment,
		Title:       "New comment",
		Message:     fmt.Sprintf("%s commented on %q.", ev.AuthorName, ev.ProductName),
		RelatedID:   ev.CommentID,
		RelatedType: "comment",
	})
}

func (n *Notifier) CommentReplied(ctx context.Context, ev CommentEvent) {
	if ev.ParentAuthorID == "" {
		return
	}
	n.insert(ctx, &Notification{
		UserID:      ev.ParentAuthorID,
		Type:        TypeCommentReply,
		Title:       "New reply",
		Message:     fmt.Sprintf("%s replied to your comment on %q.", ev.AuthorName, ev.ProductName),
		RelatedID:   ev.CommentID,
		RelatedType: "comment",
	})
}
