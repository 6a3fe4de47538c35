package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/session"
	"storefront/internal/validate"
)

// ErrEmptyCart is returned by Place when there is nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

var PaymentMethods = []string{"card", "transfer", "cash_on_delivery"}

// CheckoutForm is the customer block posted from the checkout page.
type CheckoutForm struct {
	FullName      string `form:"full_name" validate:"required,max=150"`
	Email         string `form:"email" validate:"required,email,max=255"`
	Phone         string `form:"phone" validate:"required,max=64"`
	Address       string `form:"address" validate:"required,max=500"`
	City          string `form:"city" validate:"required,max=128"`
	State         string `form:"state" validate:"required,max=128"`
	PostalCode    string `form:"postal_code" validate:"required,max=32"`
	PaymentMethod string `form:"payment_method" validate:"required,oneof=card transfer cash_on_delivery"`
}

func (f CheckoutForm) contact() domain.Contact {
	return domain.Contact{
		FullName:      f.FullName,
		Email:         f.Email,
		Phone:         f.Phone,
		Address:       f.Address,
		City:          f.City,
		State:         f.State,
		PostalCode:    f.PostalCode,
		PaymentMethod: f.PaymentMethod,
	}
}

type OrderWriter interface {
	Create(ctx context.Context, o *domain.Order) error
}

type CheckoutService struct {
	Carts    *CartService
	Orders   OrderWriter
	Shipping decimal.Decimal
	Metrics  *metrics.Metrics
}

func NewCheckoutService(carts *CartService, orders OrderWriter, shipping decimal.Decimal, m *metrics.Metrics) *CheckoutService {
	return &CheckoutService{Carts: carts, Orders: orders, Shipping: shipping, Metrics: m}
}

// Totals prices the current cart for display.
func (s *CheckoutService) Totals(c cart.Cart) cart.Totals {
	return cart.ComputeTotals(c, s.Shipping)
}

// Place turns the current cart into an order. Lines are priced from the
// catalog, never from the stored cart. The cart is cleared only after the
// order and all its items are stored; any failure leaves it as it was.
func (s *CheckoutService) Place(ctx context.Context, sess *session.Session, jar CookieJar, form CheckoutForm) (domain.Order, error) {
	c, err := s.Carts.Reprice(ctx, s.Carts.Current(sess, jar))
	if err != nil {
		s.Metrics.Checkout(metrics.OutcomeFailed, 0)
		return domain.Order{}, err
	}
	if c.IsEmpty() {
		s.Metrics.Checkout(metrics.OutcomeEmptyCart, 0)
		return domain.Order{}, ErrEmptyCart
	}

	validate.TrimStrings(&form)
	if err := validate.Struct(form); err != nil {
		s.Metrics.Checkout(metrics.OutcomeInvalid, 0)
		return domain.Order{}, err
	}

	totals := s.Totals(c)
	o := domain.Order{
		Contact:  form.contact(),
		Subtotal: totals.Subtotal,
		Shipping: totals.Shipping,
		Total:    totals.Total,
		Status:   domain.OrderPending,
		Items:    make([]domain.OrderItem, 0, len(c)),
	}
	if u := sess.Identity(); u != nil {
		uid := u.ID
		o.UserID = &uid
	}
	for _, it := range c {
		o.Items = append(o.Items, domain.OrderItem{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}

	if err := s.Orders.Create(ctx, &o); err != nil {
		s.Metrics.Checkout(metrics.OutcomeFailed, 0)
		return domain.Order{}, err
	}

	s.Carts.Save(sess, jar, cart.Cart{})
	total, _ := o.Total.Float64()
	s.Metrics.Checkout(metrics.OutcomePlaced, total)
	applog.L().Info().Str("category", "audit").Str("action", "order.placed").
		Int64("order_id", o.ID).Str("total", o.Total.StringFixed(2)).Int("lines", len(o.Items)).Send()
	return o, nil
}
