package repos_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/errs"
	"storefront/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(context.Background(), repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDBSeedsCatalogOnce(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	cats, err := repos.NewCategoryRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "perfume", cats[0].Slug)

	prods := repos.NewProductRepo(db)
	n, err := prods.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	require.NoError(t, repos.SeedCatalog(ctx, db))
	n, _ = prods.Count(ctx)
	assert.Equal(t, 12, n, "seeding twice must not duplicate")

	hair, err := prods.ListByCategory(ctx, cats[2].ID)
	require.NoError(t, err)
	assert.Len(t, hair, 2)
}

func TestProductCRUD(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	prods := repos.NewProductRepo(db)

	p, err := prods.Create(ctx, domain.Product{
		CategoryID: 1, Name: "Oud", Description: "Smoky", Price: decimal.RequireFromString("7500.50"), ImageURL: "oud.jpg",
	})
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	assert.NotEmpty(t, p.CreatedAt)

	got, err := prods.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("7500.5")))

	got.Name = "Oud Royale"
	require.NoError(t, prods.Update(ctx, got))
	got, _ = prods.Get(ctx, p.ID)
	assert.Equal(t, "Oud Royale", got.Name)

	require.NoError(t, prods.Delete(ctx, p.ID))
	_, err = prods.Get(ctx, p.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, prods.Delete(ctx, p.ID), errs.ErrNotFound)
}

func TestUserRepo(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	users := repos.NewUserRepo(db)

	u, err := users.Create(ctx, domain.User{Name: "Ada", Email: " Ada@Example.com ", Hash: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)

	_, err = users.Create(ctx, domain.User{Name: "Ada 2", Email: "ADA@example.com", Hash: "y"})
	assert.ErrorIs(t, err, repos.ErrEmailTaken)

	byEmail, err := users.ByEmail(ctx, "ADA@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	ok, err := users.EmailExists(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = users.ByID(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, repos.SeedAdmin(ctx, db, "Root", "ada@example.com", "ignored"))
	promoted, _ := users.ByID(ctx, u.ID)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)
	assert.Equal(t, "x", promoted.Hash)
}

func TestOrderCreateAndQuery(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)

	o := &domain.Order{
		Contact: domain.Contact{
			FullName: "Ada Lovelace", Email: "ada@example.com", Phone: "0800",
			Address: "1 Loop", City: "Lagos", State: "LA", PostalCode: "100001", PaymentMethod: "card",
		},
		Subtotal: decimal.NewFromInt(3600),
		Shipping: decimal.NewFromInt(1000),
		Total:    decimal.NewFromInt(4600),
		Items: []domain.OrderItem{
			{ProductID: 12, Name: "Lincoln", Price: decimal.NewFromInt(1800), Quantity: 2, Subtotal: decimal.NewFromInt(3600)},
		},
	}
	require.NoError(t, orders.Create(ctx, o))
	require.NotZero(t, o.ID)
	assert.Equal(t, domain.OrderPending, o.Status)

	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
	assert.Equal(t, "Lagos", got.City)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(4600)))

	latest, err := orders.ListLatest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, latest, 1)

	stats, err := orders.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
	assert.True(t, stats.Revenue.Equal(decimal.NewFromInt(4600)))

	require.NoError(t, orders.UpdateStatus(ctx, o.ID, domain.OrderCancelled))
	stats, _ = orders.Stats(ctx)
	assert.True(t, stats.Revenue.IsZero(), "cancelled orders earn nothing")

	assert.ErrorIs(t, orders.UpdateStatus(ctx, o.ID, "lost"), errs.ErrValidation)
	assert.ErrorIs(t, orders.UpdateStatus(ctx, 999, domain.OrderShipped), errs.ErrNotFound)
}

func TestOrderCreateRollsBackOnItemFailure(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)

	o := &domain.Order{
		Contact:  domain.Contact{FullName: "A", Email: "a@b.c", Phone: "1", Address: "x", City: "y", State: "z", PostalCode: "1", PaymentMethod: "card"},
		Subtotal: decimal.Zero, Shipping: decimal.Zero, Total: decimal.Zero,
		// quantity 0 violates the CHECK constraint
		Items: []domain.OrderItem{{ProductID: 1, Name: "bad", Price: decimal.Zero, Quantity: 0, Subtotal: decimal.Zero}},
	}
	err := orders.Create(ctx, o)
	require.ErrorIs(t, err, errs.ErrPersistence)

	stats, err := orders.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Count, "header must roll back with its items")
}

func TestOrdersByUser(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	u, err := repos.NewUserRepo(db).Create(ctx, domain.User{Name: "Bo", Email: "bo@example.com", Hash: "h"})
	require.NoError(t, err)

	orders := repos.NewOrderRepo(db)
	uid := u.ID
	o := &domain.Order{
		UserID:   &uid,
		Contact:  domain.Contact{FullName: "Bo", Email: "bo@example.com", Phone: "1", Address: "x", City: "y", State: "z", PostalCode: "1", PaymentMethod: "cash_on_delivery"},
		Subtotal: decimal.NewFromInt(10), Shipping: decimal.NewFromInt(1000), Total: decimal.NewFromInt(1010),
		Items:    []domain.OrderItem{{ProductID: 1, Name: "Chanel No. 5", Price: decimal.NewFromInt(10), Quantity: 1, Subtotal: decimal.NewFromInt(10)}},
	}
	require.NoError(t, orders.Create(ctx, o))

	mine, err := orders.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, o.ID, mine[0].ID)

	none, err := orders.ListByUser(ctx, u.ID+1)
	require.NoError(t, err)
	assert.Empty(t, none)
}
