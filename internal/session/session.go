// Package session keeps a small JSON bag per visitor, keyed by the sid cookie.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// ErrNotFound is returned by stores for unknown or expired ids.
var ErrNotFound = errors.New("session not found")

// Data is the persisted bag. Cart is kept as raw JSON because older writers
// stored other shapes; the cart package decides what it means.
type Data struct {
	Cart       json.RawMessage  `json:"cart,omitempty"`
	User       *domain.Identity `json:"user,omitempty"`
	RedirectTo string           `json:"redirect_to,omitempty"`
}

// HasCartArray reports whether the bag holds a JSON array under cart.
func (d Data) HasCartArray() bool {
	b := bytes.TrimSpace(d.Cart)
	return len(b) > 0 && b[0] == '['
}

func (d Data) empty() bool {
	return len(d.Cart) == 0 && d.User == nil && d.RedirectTo == ""
}

// Store persists bags with a TTL. Save always resets the TTL.
type Store interface {
	Load(ctx context.Context, id string) (Data, error)
	Save(ctx context.Context, id string, data Data, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

type Session struct {
	ID   string
	Data Data

	fresh     bool
	destroyed bool
	staleID   string
}

func newSession() *Session {
	return &Session{ID: uuid.NewString(), fresh: true}
}

// Identity returns the logged in user, nil for anonymous visitors.
func (s *Session) Identity() *domain.Identity {
	if s == nil {
		return nil
	}
	return s.Data.User
}

func (s *Session) SetIdentity(id domain.Identity) {
	s.Data.User = &id
}

// Regenerate moves the bag to a new id; the old id is dropped on commit.
func (s *Session) Regenerate() {
	if !s.fresh && s.staleID == "" {
		s.staleID = s.ID
	}
	s.ID = uuid.NewString()
}

// Destroy drops the bag and the sid cookie at the end of the request.
func (s *Session) Destroy() {
	s.destroyed = true
	s.Data = Data{}
}

// PopRedirect returns and forgets the remembered post-login destination.
func (s *Session) PopRedirect() string {
	to := s.Data.RedirectTo
	s.Data.RedirectTo = ""
	return to
}

func encode(d Data) ([]byte, error) { return json.Marshal(d) }

func decode(b []byte) (Data, error) {
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return Data{}, err
	}
	return d, nil
}
