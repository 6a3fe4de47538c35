package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

type seedProduct struct {
	name, description, price, image string
	category                        int
}

var seedCategories = []domain.Category{
	{Name: "Perfume", Slug: "perfume"},
	{Name: "Body Cream", Slug: "body-cream"},
	{Name: "Hair Cream", Slug: "hair-cream"},
}

// category is a 1-based index into seedCategories.
var seedProducts = []seedProduct{
	{"Chanel No. 5", "Classic fragrance", "5000.00", "perfume1.jpg", 1},
	{"Caro Clear", "Perfect in smooth and fresh body", "3000.00", "body1.png", 2},
	{"Body Nurture", "Nurture the body", "2400.00", "body2.jpg", 2},
	{"Shea Butter", "Smooth body cream", "5800.00", "body3.jpg", 2},
	{"Fresh", "Freshen the body", "3500.00", "body4.png", 2},
	{"Shea Butter", "Oil the body for freshness", "4000.00", "body5.jpg", 2},
	{"Hair Cream", "Nourishing hair treatment", "3000.00", "hair1.jpeg", 3},
	{"Himalava", "Protein hair cream", "4200.00", "hair2.jpg", 3},
	{"Element", "Fresh modern scent", "3000.00", "perfume2.jpg", 1},
	{"Christian Dior", "Perfect smell", "5200.00", "perfume3.jpg", 1},
	{"Dolce & Gabban", "Men fragrances", "4000.00", "perfume4.jpg", 1},
	{"Lincoln", "Smell nice", "1800.00", "perfume5.jpg", 1},
}

// SeedCatalog inserts the demo categories and products once. It is a no-op when
// any category exists.
func SeedCatalog(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info().Str("action", "seed.catalog").Int("products", len(seedProducts)).Send()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, len(seedCategories))
	for i, c := range seedCategories {
		if err := tx.QueryRowxContext(ctx, tx.Rebind(
			`INSERT INTO categories(name, slug) VALUES(?, ?) RETURNING id`), c.Name, c.Slug).Scan(&ids[i]); err != nil {
			return err
		}
	}
	for _, p := range seedProducts {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO products(category_id, name, description, price, image_url)
			VALUES(?, ?, ?, ?, ?)`), ids[p.category-1], p.name, p.description, p.price, p.image); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SeedAdmin makes sure an ADMIN account exists for email. An existing account
// with that email is promoted; its password is left alone.
func SeedAdmin(ctx context.Context, db *sqlx.DB, name, email, hash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := db.ExecContext(ctx, db.Rebind(`UPDATE users SET role = ? WHERE email = ?`), domain.RoleAdmin, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = db.ExecContext(ctx, db.Rebind(`
		INSERT INTO users(name, email, password_hash, role) VALUES(?, ?, ?, ?)`),
		name, email, hash, domain.RoleAdmin)
	return err
}
