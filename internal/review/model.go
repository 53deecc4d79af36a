package review

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

var ErrCommentNotFound = errors.New("comment not found")

// Comment is a product comment. ParentID is set on replies.
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	ProductID uuid.UUID     `json:"product_id"`
	UserID    uuid.UUID     `json:"user_id"`
	UserName  string        `json:"user_name"`
	Content   string        `json:"content"`
	ParentID  uuid.NullUUID `json:"parent_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
