package notification

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

var ErrNotFound = errors.New("notification not found")

// ChannelAdmin is the sentinel user id for the shared admin channel.
const ChannelAdmin = "admin"

type Type string

const (
	TypeOrderPlaced    Type = "order_placed"
	TypeOrderCancelled Type = "order_cancelled"
	TypeOrderStatus    Type = "order_status"
	TypeLowStock       Type = "low_stock"
	TypeOutOfStock     Type = "out_of_stock"
	TypeComment        Type = "comment"
	TypeCommentReply   Type = "comment_reply"
)

// Notification is an append-only record; only IsRead ever changes after
// insert.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RelatedID   string    `json:"related_id,omitempty"`
	RelatedType string    `json:"related_type,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
