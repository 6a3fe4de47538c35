package session

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"storefront/internal/errs"
	applog "storefront/internal/log"
)

const (
	CookieName = "sid"
	localsKey  = "session"
)

// Manager loads the session before a handler runs and commits it afterwards.
// Every commit pushes the expiry out by TTL, giving a sliding window.
type Manager struct {
	Store      Store
	TTL        time.Duration
	CookieName string
	Secure     bool
}

func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{Store: store, TTL: ttl, CookieName: CookieName, Secure: secure}
}

func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := m.load(c)
		c.Locals(localsKey, sess)
		if u := sess.Identity(); u != nil {
			c.Locals("user", u)
		}

		err := c.Next()

		if cerr := m.commit(c, sess); cerr != nil {
			applog.Error(c, "session.save.fail", cerr, nil)
			m.abandon(c, sess)
			if err == nil {
				return errs.Persistence(cerr, "save session")
			}
		}
		return err
	}
}

func (m *Manager) load(c *fiber.Ctx) *Session {
	raw := c.Cookies(m.CookieName)
	if raw == "" {
		return newSession()
	}
	if _, err := uuid.Parse(raw); err != nil {
		applog.Security(c, "session.id.invalid", nil)
		return newSession()
	}
	id := utils.CopyString(raw)

	data, err := m.Store.Load(c.UserContext(), id)
	switch {
	case err == nil:
		return &Session{ID: id, Data: data}
	case errors.Is(err, ErrNotFound):
		return newSession()
	default:
		// Store trouble: carry on with an empty bag so the cart cookie can
		// still stand in for the session cart.
		applog.Error(c, "session.load.fail", err, nil)
		return newSession()
	}
}

func (m *Manager) commit(c *fiber.Ctx, sess *Session) error {
	ctx := c.UserContext()
	if sess.staleID != "" {
		if err := m.Store.Destroy(ctx, sess.staleID); err != nil {
			return err
		}
	}
	if sess.destroyed {
		c.Cookie(m.cookie("", time.Now().Add(-time.Hour), -1))
		if sess.fresh {
			return nil
		}
		return m.Store.Destroy(ctx, sess.ID)
	}
	if sess.fresh && sess.Data.empty() {
		return nil
	}
	if err := m.Store.Save(ctx, sess.ID, sess.Data, m.TTL); err != nil {
		return err
	}
	c.Cookie(m.cookie(sess.ID, time.Now().Add(m.TTL), int(m.TTL.Seconds())))
	return nil
}

// abandon drops a session whose changes could not be stored. The stored bag
// is stale by now, so the sid cookie is expired and the row removed when the
// store allows it. A stale cart can then never win over the cart cookie.
func (m *Manager) abandon(c *fiber.Ctx, sess *Session) {
	c.Cookie(m.cookie("", time.Now().Add(-time.Hour), -1))
	if sess.fresh {
		return
	}
	loaded := sess.ID
	if sess.staleID != "" {
		loaded = sess.staleID
	}
	if err := m.Store.Destroy(c.UserContext(), loaded); err != nil {
		applog.Error(c, "session.abandon.fail", err, nil)
	}
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     m.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   m.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// From returns the request's session. Outside the middleware it returns a
// detached empty session so callers never see nil.
func From(c *fiber.Ctx) *Session {
	if s, ok := c.Locals(localsKey).(*Session); ok && s != nil {
		return s
	}
	s := newSession()
	c.Locals(localsKey, s)
	return s
}
