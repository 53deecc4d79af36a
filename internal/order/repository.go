package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/storefront-go/storefront/internal/catalog"
)

// Deduction is one stock mutation the placement transaction must apply.
type Deduction struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
}

type Repository interface {
	// Place persists the order and applies every deduction in one
	// transaction. A deduction that cannot be satisfied aborts the whole
	// transaction with a *catalog.StockError. On success the remaining
	// stock per deducted product is returned.
	Place(ctx context.Context, o *Order, deductions []Deduction) ([]catalog.StockChange, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error

	// Cancel marks the order cancelled and restores inventory for every
	// item with a product reference, in one transaction. The status update
	// is conditional on the order not being terminal yet, which makes
	// repeated calls harmless: restoration runs only when this call was
	// the one that flipped the status, and cancelled=false is returned
	// otherwise.
	Cancel(ctx context.Context, orderID uuid.UUID, reason, cancelledBy string, at time.Time) (cancelled bool, err error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Place(ctx context.Context, o *Order, deductions []Deduction) ([]catalog.StockChange, error) {
	if o.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("repository: failed to generate order id: %w", err)
		}
		o.ID = id
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Conditional decrement: the WHERE clause rejects the whole placement
	// when another request consumed the stock between validation and here.
	changes := make([]catalog.StockChange, 0, len(deductions))
	for _, d := range deductions {
		var remaining int
		err := tx.QueryRow(ctx, `
			UPDATE products
			SET quantity = quantity - $2, total_sales = total_sales + $2, updated_at = $3
			WHERE id = $1 AND quantity >= $2
			RETURNING quantity
		`, d.ProductID, d.Quantity, now).Scan(&remaining)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.stockError(ctx, d)
			}
			return nil, fmt.Errorf("repository: failed to deduct stock for product %s: %w", d.ProductID, err)
		}
		changes = append(changes, catalog.StockChange{
			ProductID: d.ProductID,
			Name:      d.Name,
			Deducted:  d.Quantity,
			Remaining: remaining,
		})
	}

	addressJSON, err := json.Marshal(o.Address)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to encode address: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, amount, delivery_charges, address,
		                    customer_name, customer_email, customer_phone,
		                    status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, o.ID, o.UserID, o.Amount, o.DeliveryCharges, addressJSON,
		o.CustomerDetails.Name, o.CustomerDetails.Email, o.CustomerDetails.Phone,
		string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		itemID, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("repository: failed to generate order item id: %w", err)
		}
		item.ID = itemID
		item.OrderID = o.ID

		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, quantity, unit_price, image, is_from_deal, deal_id, deal_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, item.ID, item.OrderID, item.ProductID, item.Name, item.Quantity,
			item.UnitPrice, item.Image, item.IsFromDeal, item.DealID, item.DealName)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository: failed to commit placement: %w", err)
	}
	return changes, nil
}

// stockError builds the descriptive insufficient-stock error for a deduction
// the conditional update refused.
func (r *postgresRepository) stockError(ctx context.Context, d Deduction) error {
	var available int
	err := r.db.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1`, d.ProductID).Scan(&available)
	if err != nil {
		log.Warn().Err(err).Stringer("product_id", d.ProductID).Msg("repository: failed to read stock for rejection detail")
		available = 0
	}
	return &catalog.StockError{Name: d.Name, Requested: d.Quantity, Available: available}
}

const orderColumns = `id, user_id, amount, delivery_charges, address,
	customer_name, customer_email, customer_phone,
	status, cancellation_reason, cancelled_at, cancelled_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var addressJSON []byte
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Amount,
		&o.DeliveryCharges,
		&addressJSON,
		&o.CustomerDetails.Name,
		&o.CustomerDetails.Email,
		&o.CustomerDetails.Phone,
		&o.Status,
		&o.CancellationReason,
		&o.CancelledAt,
		&o.CancelledBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addressJSON, &o.Address); err != nil {
		return nil, fmt.Errorf("failed to decode address for order %s: %w", o.ID, err)
	}
	return &o, nil
}

const itemColumns = `id, order_id, product_id, name, quantity, unit_price, image, is_from_deal, deal_id, deal_name`

func scanItem(row pgx.Row) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Quantity,
		&it.UnitPrice, &it.Image, &it.IsFromDeal, &it.DealID, &it.DealName)
	return it, err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", id, err)
	}
	defer rows.Close()

	o.Items = make([]OrderItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", id, err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", id, err)
	}
	return o, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	ordersByID := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]OrderItem, 0)
		ordersByID[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemRows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		it, err := scanItem(itemRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := ordersByID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersByID[id])
	}
	return result, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
	`, orderID, string(newStatus), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) Cancel(ctx context.Context, orderID uuid.UUID, reason, cancelledBy string, at time.Time) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmdTag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $2, cancellation_reason = $3, cancelled_at = $4, cancelled_by = $5, updated_at = $4
		WHERE id = $1 AND status NOT IN ($6, $7)
	`, orderID, string(StatusCancelled), reason, at, cancelledBy,
		string(StatusDelivered), string(StatusCancelled))
	if err != nil {
		return false, fmt.Errorf("repository: failed to cancel order %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Already terminal; nothing to restore.
		return false, nil
	}

	rows, err := tx.Query(ctx, `
		SELECT product_id, quantity FROM order_items
		WHERE order_id = $1 AND product_id IS NOT NULL
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("repository: failed to query items for restoration of order %s: %w", orderID, err)
	}

	type restore struct {
		productID uuid.UUID
		qty       int
	}
	var restores []restore
	for rows.Next() {
		var pid uuid.UUID
		var qty int
		if err := rows.Scan(&pid, &qty); err != nil {
			rows.Close()
			return false, fmt.Errorf("repository: failed to scan restoration item for order %s: %w", orderID, err)
		}
		restores = append(restores, restore{productID: pid, qty: qty})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("repository: error iterating restoration items for order %s: %w", orderID, err)
	}

	// Delta restoration: the product may have been edited since placement,
	// so increment rather than reset. A deleted product matches no row and
	// is skipped.
	for _, rs := range restores {
		_, err := tx.Exec(ctx, `
			UPDATE products
			SET quantity = quantity + $2, total_sales = total_sales - $2, updated_at = $3
			WHERE id = $1
		`, rs.productID, rs.qty, at)
		if err != nil {
			return false, fmt.Errorf("repository: failed to restore stock for product %s: %w", rs.productID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("repository: failed to commit cancellation: %w", err)
	}
	return true, nil
}
