package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/errs"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, category_id, name, description, price, image_url, created_at`

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if err != nil {
		return domain.Product{}, classify(err, "product", id)
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `SELECT `+productColumns+` FROM products ORDER BY category_id, id`)
	if err != nil {
		return nil, classify(err, "products", "")
	}
	return out, nil
}

func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productColumns+`
		FROM products
		WHERE category_id = ?
		ORDER BY id`), categoryID)
	if err != nil {
		return nil, classify(err, "products", categoryID)
	}
	return out, nil
}

// Create inserts p and returns it with its id and created_at filled in.
func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	var out domain.Product
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
		INSERT INTO products(category_id, name, description, price, image_url)
		VALUES(?, ?, ?, ?, ?)
		RETURNING `+productColumns),
		p.CategoryID, p.Name, p.Description, p.Price, p.ImageURL)
	if err != nil {
		return domain.Product{}, errs.Persistence(err, "insert product")
	}
	return out, nil
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products
		SET category_id = ?, name = ?, description = ?, price = ?, image_url = ?
		WHERE id = ?`),
		p.CategoryID, p.Name, p.Description, p.Price, p.ImageURL, p.ID)
	if err != nil {
		return errs.Persistence(err, "update product")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("product", p.ID)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return errs.Persistence(err, "delete product")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("product", id)
	}
	return nil
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, errs.Persistence(err, "count products")
	}
	return n, nil
}
