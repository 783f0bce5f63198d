package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

const orderColumns = `id, customer_name, phone, address, shipping_zone, shipping_fee,
	total_price, line_items, status, created_at`

const (
	insertOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	listOrdersByPhoneSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE phone = $1 ORDER BY created_at DESC, id`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	// The status predicate makes the update a compare-and-set.
	updateOrderStatusSQL = `UPDATE orders SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items are stored as a JSONB snapshot.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.LineItems)
	if err != nil {
		return fmt.Errorf("marshaling line items: %w", err)
	}
	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.ID, o.CustomerName, o.Phone, o.Address, string(o.ShippingZone), o.ShippingFee,
		o.TotalPrice, items, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

func (r *OrderRepository) ListByPhone(ctx context.Context, phone string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByPhoneSQL, phone)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, updateOrderStatusSQL, id, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, orderExistsSQL, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking order %q: %w", id, err)
	}
	if !exists {
		return nil, order.ErrNotFound
	}
	return nil, order.ErrStatusConflict
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		zone   string
		status string
		items  []byte
	)
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.Phone, &o.Address, &zone, &o.ShippingFee,
		&o.TotalPrice, &items, &status, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.ShippingZone = order.ShippingZone(zone)
	o.Status = order.Status(status)
	if err := json.Unmarshal(items, &o.LineItems); err != nil {
		return o, fmt.Errorf("decoding line items of order %q: %w", o.ID, err)
	}
	return o, nil
}
