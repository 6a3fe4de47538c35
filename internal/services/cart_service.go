package services

import (
	"context"
	"errors"
	"net/url"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/errs"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/session"
)

// CookieJar is the request/response pair the cart cookie travels through.
type CookieJar interface {
	CartCookie() string
	SetCartCookie(value string)
}

type ProductGetter interface {
	Get(ctx context.Context, id int64) (domain.Product, error)
}

// CartService resolves and persists the visitor's cart. The session bag is the
// primary copy; the cart cookie is a fallback that survives session loss.
type CartService struct {
	Prods   ProductGetter
	Metrics *metrics.Metrics
}

func NewCartService(prods ProductGetter, m *metrics.Metrics) *CartService {
	return &CartService{Prods: prods, Metrics: m}
}

// Current returns the canonical cart. A session array always wins, even an
// empty one. Otherwise a readable cart cookie is adopted into the session.
func (s *CartService) Current(sess *session.Session, jar CookieJar) cart.Cart {
	if sess.Data.HasCartArray() {
		c, err := cart.Parse(sess.Data.Cart)
		if err != nil {
			applog.L().Debug().Err(err).Str("action", "cart.session.unreadable").Send()
			return cart.Cart{}
		}
		return c
	}

	c, ok := cookieCart(jar)
	if !ok {
		return cart.Cart{}
	}
	if b, err := cart.Encode(c); err == nil {
		sess.Data.Cart = b
	}
	return c
}

func cookieCart(jar CookieJar) (cart.Cart, bool) {
	raw := jar.CartCookie()
	if raw == "" {
		return nil, false
	}
	if dec, err := url.QueryUnescape(raw); err == nil {
		raw = dec
	}
	c, err := cart.Parse([]byte(raw))
	if err != nil {
		applog.L().Debug().Err(err).Str("action", "cart.cookie.unreadable").Send()
		return nil, false
	}
	return c, true
}

// Save writes c to the session bag and re-issues the cart cookie.
func (s *CartService) Save(sess *session.Session, jar CookieJar, c cart.Cart) {
	b, err := cart.Encode(c)
	if err != nil {
		// Encode only fails on unencodable values, which Item never holds.
		applog.L().Error().Err(err).Str("action", "cart.encode.fail").Send()
		return
	}
	sess.Data.Cart = b
	jar.SetCartCookie(url.QueryEscape(string(b)))
}

// Reprice replaces each line's name, price and image with the catalog's
// current values. Lines whose product no longer exists are dropped.
func (s *CartService) Reprice(ctx context.Context, c cart.Cart) (cart.Cart, error) {
	out := make(cart.Cart, 0, len(c))
	for _, it := range c {
		p, err := s.Prods.Get(ctx, it.ID)
		if errors.Is(err, errs.ErrNotFound) {
			applog.L().Warn().Str("category", "security").Str("action", "cart.line.unknown").Int64("product_id", it.ID).Send()
			continue
		}
		if err != nil {
			return nil, err
		}
		it.Name = p.Name
		it.Price = p.Price.Round(2)
		it.ImageURL = p.ImageURL
		out = append(out, it)
	}
	return out, nil
}

// Add puts one unit of product id into the cart.
func (s *CartService) Add(ctx context.Context, sess *session.Session, jar CookieJar, id int64) (cart.Cart, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c := cart.Add(s.Current(sess, jar), p)
	s.Save(sess, jar, c)
	s.Metrics.CartOp("add")
	return c, nil
}

// Update sets the quantity of line id; qty <= 0 removes it.
func (s *CartService) Update(sess *session.Session, jar CookieJar, id int64, qty int) cart.Cart {
	c := cart.Update(s.Current(sess, jar), id, qty)
	s.Save(sess, jar, c)
	s.Metrics.CartOp("update")
	return c
}

func (s *CartService) Remove(sess *session.Session, jar CookieJar, id int64) cart.Cart {
	c := cart.Remove(s.Current(sess, jar), id)
	s.Save(sess, jar, c)
	s.Metrics.CartOp("remove")
	return c
}

func (s *CartService) Clear(sess *session.Session, jar CookieJar) {
	s.Save(sess, jar, cart.Cart{})
	s.Metrics.CartOp("clear")
}

// MergeOnLogin binds u to a fresh session id and settles which cart survives:
// a non-empty session cart, else a non-empty cookie cart, else nothing.
func (s *CartService) MergeOnLogin(sess *session.Session, jar CookieJar, u domain.Identity) cart.Cart {
	sess.Regenerate()
	sess.SetIdentity(u)

	var merged cart.Cart
	if sess.Data.HasCartArray() {
		if c, err := cart.Parse(sess.Data.Cart); err == nil && !c.IsEmpty() {
			merged = c
		}
	}
	if merged.IsEmpty() {
		if c, ok := cookieCart(jar); ok && !c.IsEmpty() {
			merged = c
		}
	}
	if merged == nil {
		merged = cart.Cart{}
	}
	s.Save(sess, jar, merged)
	return merged
}
