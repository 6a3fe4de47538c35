package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/errs"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, user_id, full_name, email, phone, address, city, state, postal_code,
	payment_method, subtotal, shipping, total, status, created_at`

const summaryColumns = `id, full_name, email, total, status, created_at`

// Create writes the header and every item snapshot in one transaction. On
// success o.ID, o.Status and o.CreatedAt are filled in.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if o.Status == "" {
		o.Status = domain.OrderPending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Persistence(err, "begin order tx")
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO orders
		  (user_id, full_name, email, phone, address, city, state, postal_code,
		   payment_method, subtotal, shipping, total, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`),
		o.UserID, o.FullName, o.Email, o.Phone, o.Address, o.City, o.State, o.PostalCode,
		o.PaymentMethod, o.Subtotal, o.Shipping, o.Total, o.Status,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return errs.Persistence(err, "insert order")
	}

	insertItem := tx.Rebind(`
		INSERT INTO order_items(order_id, product_id, name, price, quantity, subtotal)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if _, err := tx.ExecContext(ctx, insertItem,
			it.OrderID, it.ProductID, it.Name, it.Price, it.Quantity, it.Subtotal); err != nil {
			return errs.Persistence(err, "insert order item")
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Persistence(err, "commit order")
	}
	return nil
}

// Get returns the header with its items.
func (r *OrderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	if err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id); err != nil {
		return domain.Order{}, classify(err, "order", id)
	}
	if err := r.db.SelectContext(ctx, &o.Items, r.db.Rebind(`
		SELECT order_id, product_id, name, price, quantity, subtotal
		FROM order_items
		WHERE order_id = ?
		ORDER BY id`), id); err != nil {
		return domain.Order{}, classify(err, "order items", id)
	}
	return o, nil
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.OrderSummary
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+summaryColumns+`
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, classify(err, "orders", "")
	}
	return out, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.OrderSummary, error) {
	var out []domain.OrderSummary
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+summaryColumns+`
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`), userID)
	if err != nil {
		return nil, classify(err, "orders", userID)
	}
	return out, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !domain.ValidOrderStatus(status) {
		return errs.New(errs.CodeValidation, "unknown order status").
			WithFields(map[string]string{"status": "Choose a valid status"})
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE orders SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return errs.Persistence(err, "update order status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("order", id)
	}
	return nil
}

// OrderStats feeds the admin dashboard.
type OrderStats struct {
	Count   int             `db:"n"`
	Revenue decimal.Decimal `db:"revenue"`
}

// Stats counts every order; revenue skips cancelled ones.
func (r *OrderRepo) Stats(ctx context.Context) (OrderStats, error) {
	var s OrderStats
	err := r.db.GetContext(ctx, &s, r.db.Rebind(`
		SELECT COUNT(*) AS n,
		       COALESCE(SUM(CASE WHEN status <> ? THEN total ELSE 0 END), 0) AS revenue
		FROM orders`), domain.OrderCancelled)
	if err != nil {
		return OrderStats{}, errs.Persistence(err, "order stats")
	}
	return s, nil
}
