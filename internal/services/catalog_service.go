package services

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

// Home groups every product under its category, categories in id order.
// Categories without products are kept so the page shows every section.
func (s *CatalogService) Home(ctx context.Context) ([]domain.CategoryProducts, error) {
	cats, err := s.Cats.List(ctx)
	if err != nil {
		return nil, err
	}
	prods, err := s.Prods.List(ctx)
	if err != nil {
		return nil, err
	}
	byCat := make(map[int64][]domain.Product, len(cats))
	for _, p := range prods {
		byCat[p.CategoryID] = append(byCat[p.CategoryID], p)
	}
	out := make([]domain.CategoryProducts, 0, len(cats))
	for _, c := range cats {
		out = append(out, domain.CategoryProducts{Category: c, Products: byCat[c.ID]})
	}
	return out, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) Category(ctx context.Context, id int64) (domain.CategoryProducts, error) {
	c, err := s.Cats.Get(ctx, id)
	if err != nil {
		return domain.CategoryProducts{}, err
	}
	prods, err := s.Prods.ListByCategory(ctx, id)
	if err != nil {
		return domain.CategoryProducts{}, err
	}
	return domain.CategoryProducts{Category: c, Products: prods}, nil
}

func (s *CatalogService) Product(ctx context.Context, id int64) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

// ProductForm is the admin create/edit form.
type ProductForm struct {
	Name        string `form:"name" validate:"required,max=255"`
	Description string `form:"description" validate:"max=5000"`
	Price       string `form:"price" validate:"required,numeric"`
	ImageURL    string `form:"image_url" validate:"max=500"`
	CategoryID  int64  `form:"category_id" validate:"required,gt=0"`
}

func (f ProductForm) product() (domain.Product, error) {
	validate.TrimStrings(&f)
	if err := validate.Struct(f); err != nil {
		return domain.Product{}, err
	}
	price, err := decimal.NewFromString(f.Price)
	if err != nil || price.IsNegative() {
		return domain.Product{}, priceError()
	}
	return domain.Product{
		CategoryID:  f.CategoryID,
		Name:        f.Name,
		Description: f.Description,
		Price:       price.Round(2),
		ImageURL:    f.ImageURL,
	}, nil
}

// CreateProduct validates f, checks the category exists and stores the product.
func (s *CatalogService) CreateProduct(ctx context.Context, f ProductForm) (domain.Product, error) {
	p, err := f.product()
	if err != nil {
		return domain.Product{}, err
	}
	if _, err := s.Cats.Get(ctx, p.CategoryID); err != nil {
		return domain.Product{}, categoryError(err)
	}
	return s.Prods.Create(ctx, p)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, f ProductForm) (domain.Product, error) {
	p, err := f.product()
	if err != nil {
		return domain.Product{}, err
	}
	if _, err := s.Cats.Get(ctx, p.CategoryID); err != nil {
		return domain.Product{}, categoryError(err)
	}
	p.ID = id
	if err := s.Prods.Update(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.Prods.Delete(ctx, id)
}

func (s *CatalogService) ProductCount(ctx context.Context) (int, error) {
	return s.Prods.Count(ctx)
}
