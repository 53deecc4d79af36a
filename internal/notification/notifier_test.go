package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/notification"
)

type mockRepository struct {
	insertFunc func(ctx context.Context, n *notification.Notification) error
	inserted   []notification.Notification
}

func (m *mockRepository) Insert(ctx context.Context, n *notification.Notification) error {
	if m.insertFunc != nil {
		if err := m.insertFunc(ctx, n); err != nil {
			return err
		}
	}
	m.inserted = append(m.inserted, *n)
	return nil
}

func (m *mockRepository) ListByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	return nil, nil
}

func (m *mockRepository) MarkRead(ctx context.Context, id uuid.UUID, userID string) error {
	return nil
}

func (m *mockRepository) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func (m *mockRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func TestNotifierOrderPlaced(t *testing.T) {
	repo := &mockRepository{}
	n := notification.NewNotifier(repo)

	n.OrderPlaced(context.Background(), notification.OrderPlacedEvent{
		OrderID:       "o1",
		UserID:        "u1",
		Amount:        120,
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
	})

	require.Len(t, repo.inserted, 2)
	assert.Equal(t, "u1", repo.inserted[0].UserID)
	assert.Equal(t, notification.TypeOrderPlaced, repo.inserted[0].Type)
	assert.Equal(t, notification.ChannelAdmin, repo.inserted[1].UserID)
	assert.Contains(t, repo.inserted[1].Message, "Alice")
	assert.Contains(t, repo.inserted[1].Message, "alice@example.com")
}

func TestNotifierCancellationAdminFanout(t *testing.T) {
	tests := []struct {
		name        string
		cancelledBy string
		wantInserts int
	}{
		{name: "user_cancel_notifies_admin_too", cancelledBy: "user", wantInserts: 2},
		{name: "admin_cancel_notifies_user_only", cancelledBy: "admin", wantInserts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{}
			n := notification.NewNotifier(repo)

			n.OrderCancelled(context.Background(), notification.OrderCancelledEvent{
				OrderID:      "o1",
				UserID:       "u1",
				Reason:       "stock issue",
				CancelledBy:  tt.cancelledBy,
				CustomerName: "Alice",
			})

			require.Len(t, repo.inserted, tt.wantInserts)
			assert.Equal(t, "u1", repo.inserted[0].UserID)
			if tt.wantInserts == 2 {
				assert.Equal(t, notification.ChannelAdmin, repo.inserted[1].UserID)
			}
		})
	}
}

func TestNotifierSwallowsInsertFailures(t *testing.T) {
	repo := &mockRepository{
		insertFunc: func(ctx context.Context, n *notification.Notification) error {
			return errors.New("sink down")
		},
	}
	n := notification.NewNotifier(repo)

	// Must not panic or surface the error in any way.
	n.OrderPlaced(context.Background(), notification.OrderPlacedEvent{OrderID: "o1", UserID: "u1"})
	n.LowStock(context.Background(), notification.StockEvent{ProductID: "p1", Name: "Mug", Remaining: 3})

	assert.Empty(t, repo.inserted)
}

func TestNotifierCommentReplyWithoutParentAuthor(t *testing.T) {
	repo := &mockRepository{}
	n := notification.NewNotifier(repo)

	n.CommentReplied(context.Background(), notification.CommentEvent{CommentID: "c1", ProductName: "Mug"})

	assert.Empty(t, repo.inserted)
}
