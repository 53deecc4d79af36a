package catalog

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
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetPublishedByName(ctx context.Context, name string) (*Product, error)
	ListProducts(ctx context.Context, publishedOnly bool) ([]Product, error)

	CreateDeal(ctx context.Context, d *Deal) error
	DeleteDeal(ctx context.Context, id uuid.UUID) error
	GetDealByID(ctx context.Context, id uuid.UUID) (*Deal, error)
	ListDeals(ctx context.Context, publishedOnly bool) ([]Deal, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, name, description, price, discount_price, quantity, status, image, total_sales, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.DiscountPrice,
		&p.Quantity,
		&p.Status,
		&p.Image,
		&p.TotalSales,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product id: %w", err)
		}
		p.ID = id
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (id, name, description, price, discount_price, quantity, status, image, total_sales, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.DiscountPrice, p.Quantity,
		string(p.Status), p.Image, p.TotalSales, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, discount_price = $5,
		    quantity = $6, status = $7, image = $8, updated_at = $9
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.DiscountPrice, p.Quantity,
		string(p.Status), p.Image, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresRepository) GetPublishedByName(ctx context.Context, name string) (*Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE name = $1 AND status = $2`,
		name, string(StatusPublished),
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by name %q: %w", name, err)
	}
	return p, nil
}

func (r *postgresRepository) ListProducts(ctx context.Context, publishedOnly bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if publishedOnly {
		query += ` WHERE status = $1`
		args = append(args, string(StatusPublished))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return products, nil
}

func (r *postgresRepository) CreateDeal(ctx context.Context, d *Deal) error {
	if d.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate deal id: %w", err)
		}
		d.ID = id
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO deals (id, name, price, discount_price, status, image, product_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		d.ID, d.Name, d.Price, d.DiscountPrice, string(d.Status), d.Image,
		d.ProductIDs, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert deal: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete deal %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrDealNotFound
	}
	return nil
}

func (r *postgresRepository) GetDealByID(ctx context.Context, id uuid.UUID) (*Deal, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, price, discount_price, status, image, product_ids, created_at, updated_at FROM deals WHERE id = $1`, id)
	var d Deal
	err := row.Scan(&d.ID, &d.Name, &d.Price, &d.DiscountPrice, &d.Status, &d.Image, &d.ProductIDs, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("repository: failed to select deal by id %s: %w", id, err)
	}
	return &d, nil
}

func (r *postgresRepository) ListDeals(ctx context.Context, publishedOnly bool) ([]Deal, error) {
	query := `SELECT id, name, price, discount_price, status, image, product_ids, created_at, updated_at FROM deals`
	var args []any
	if publishedOnly {
		query += ` WHERE status = $1`
		args = append(args, string(StatusPublished))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query deals: %w", err)
	}
	defer rows.Close()

	deals := make([]Deal, 0)
	for rows.Next() {
		var d Deal
		if err := rows.Scan(&d.ID, &d.Name, &d.Price, &d.DiscountPrice, &d.Status, &d.Image, &d.ProductIDs, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan deal: %w", err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating deals: %w", err)
	}
	return deals, nil
}
