package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := r.db.SelectContext(ctx, &out, `SELECT id, name, slug FROM categories ORDER BY id`); err != nil {
		return nil, classify(err, "categories", "")
	}
	return out, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT id, name, slug FROM categories WHERE id = ?`), id)
	if err != nil {
		return domain.Category{}, classify(err, "category", id)
	}
	return c, nil
}
