package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Insert(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Comment, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Insert(ctx context.Context, c *Comment) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate comment id: %w", err)
		}
		c.ID = id
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO comments (id, product_id, user_id, user_name, content, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.ProductID, c.UserID, c.UserName, c.Content, c.ParentID, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert comment: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, product_id, user_id, user_name, content, parent_id, created_at
		FROM comments WHERE id = $1
	`, id)

	var c Comment
	err := row.Scan(&c.ID, &c.ProductID, &c.UserID, &c.UserName, &c.Content, &c.ParentID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("repository: failed to select comment %s: %w", id, err)
	}
	return &c, nil
}

func (r *postgresRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, user_id, user_name, content, parent_id, created_at
		FROM comments WHERE product_id = $1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query comments for product %s: %w", productID, err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ProductID, &c.UserID, &c.UserName, &c.Content, &c.ParentID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating comments: %w", err)
	}
	return comments, nil
}
