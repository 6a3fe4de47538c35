package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/errs"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errs.New(errs.CodeValidation, "email already registered").
	WithFields(map[string]string{"email": "An account with this email already exists"})

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, password_hash, role, created_at`

// Create stores u with a lower-cased email and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	var out domain.User
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
		INSERT INTO users(name, email, password_hash, role)
		VALUES(?, ?, ?, ?)
		RETURNING `+userColumns),
		u.Name, normalizeEmail(u.Email), u.Hash, u.Role)
	if isUniqueViolation(err) {
		return domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, errs.Persistence(err, "insert user")
	}
	return out, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), normalizeEmail(email))
	if err != nil {
		return domain.User{}, classify(err, "user", email)
	}
	return u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return domain.User{}, classify(err, "user", id)
	}
	return u, nil
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`), normalizeEmail(email))
	if err != nil {
		return false, errs.Persistence(err, "count users")
	}
	return n > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
