package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/notification"
)

type ProductGetter interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type EventSink interface {
	CommentAdded(ctx context.Context, ev notification.CommentEvent)
	CommentReplied(ctx context.Context, ev notification.CommentEvent)
}

type Service interface {
	AddComment(ctx context.Context, userID uuid.UUID, userName string, productID uuid.UUID, content string) (*Comment, error)
	Reply(ctx context.Context, userID uuid.UUID, userName string, parentID uuid.UUID, content string) (*Comment, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Comment, error)
}

type service struct {
	repo     Repository
	products ProductGetter
	events   EventSink
}

func NewService(repo Repository, products ProductGetter, events EventSink) Service {
	return &service{repo: repo, products: products, events: events}
}

func (s *service) AddComment(ctx context.Context, userID uuid.UUID, userName string, productID uuid.UUID, content string) (*Comment, error) {
	if content == "" {
		return nil, errors.New("comment content cannot be empty")
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product for comment: %w", err)
	}

	c := &Comment{
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Content:   content,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to insert comment")
		return nil, fmt.Errorf("service: failed to add comment: %w", err)
	}

	s.events.CommentAdded(ctx, notification.CommentEvent{
		CommentID:   c.ID.String(),
		ProductID:   productID.String(),
		ProductName: p.Name,
		AuthorName:  userName,
	})
	return c, nil
}

func (s *service) Reply(ctx context.Context, userID uuid.UUID, userName string, parentID uuid.UUID, content string) (*Comment, error) {
	if content == "" {
		return nil, errors.New("reply content cannot be empty")
	}

	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch parent comment: %w", err)
	}

	productName := ""
	if p, err := s.products.GetProduct(ctx, parent.ProductID); err == nil {
		productName = p.Name
	}

	c := &Comment{
		ProductID: parent.ProductID,
		UserID:    userID,
		UserName:  userName,
		Content:   content,
		ParentID:  uuid.NullUUID{UUID: parent.ID, Valid: true},
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		log.Error().Err(err).Stringer("parent_id", parentID).Msg("service: failed to insert reply")
		return nil, fmt.Errorf("service: failed to add reply: %w", err)
	}

	ev := notification.CommentEvent{
		CommentID:   c.ID.String(),
		ProductID:   parent.ProductID.String(),
		ProductName: productName,
		AuthorName:  userName,
	}
	// Do not notify users about replies to their own comments.
	if parent.UserID != userID {
		ev.ParentAuthorID = parent.UserID.String()
	}
	s.events.CommentReplied(ctx, ev)
	return c, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Comment, error) {
	comments, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list comments: %w", err)
	}
	return comments, nil
}
