package domain

import "github.com/shopspring/decimal"

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

var OrderStatuses = []string{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

func ValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Contact is the customer block captured at checkout.
type Contact struct {
	FullName      string `db:"full_name"`
	Email         string `db:"email"`
	Phone         string `db:"phone"`
	Address       string `db:"address"`
	City          string `db:"city"`
	State         string `db:"state"`
	PostalCode    string `db:"postal_code"`
	PaymentMethod string `db:"payment_method"`
}

type Order struct {
	ID     int64  `db:"id"`
	UserID *int64 `db:"user_id"`
	Contact
	Subtotal  decimal.Decimal `db:"subtotal"`
	Shipping  decimal.Decimal `db:"shipping"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
	Items     []OrderItem     `db:"-"`
}

// OrderItem is a snapshot of a cart line at purchase time.
type OrderItem struct {
	OrderID   int64           `db:"order_id"`
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Quantity  int             `db:"quantity"`
	Subtotal  decimal.Decimal `db:"subtotal"`
}

type OrderSummary struct {
	ID        int64           `db:"id"`
	FullName  string          `db:"full_name"`
	Email     string          `db:"email"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
}
