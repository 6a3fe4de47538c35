package cart_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/errs"
)

func records(t *testing.T, raw string) []cart.Record {
	t.Helper()
	var out []cart.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestParseCookieScenario(t *testing.T) {
	c, err := cart.Parse([]byte(`[{"id":1,"qty":2,"price":"10.50"}]`))
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.Equal(t, int64(1), c[0].ID)
	assert.Equal(t, 2, c[0].Quantity)
	assert.True(t, c[0].Price.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, "", c[0].ImageURL)
	assert.Equal(t, "", c[0].Name)
}

func TestParseMalformed(t *testing.T) {
	c, err := cart.Parse([]byte("{not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMalformedInput)
	assert.Empty(t, c)

	_, err = cart.Parse([]byte(`{"id":1}`))
	assert.ErrorIs(t, err, errs.ErrMalformedInput)
}

func TestNormalizeLegacyShapes(t *testing.T) {
	in := records(t, `[
		{"id":"3","name":"Fresh","price":3500,"image":"body4.png","quantity":"4"},
		{"id":4,"price":"abc","imageUrl":"hair1.jpeg"},
		{"id":5,"price":-20,"image_url":"a.jpg","image":"b.jpg","qty":1}
	]`)
	c := cart.Normalize(in)
	require.Len(t, c, 3)

	assert.Equal(t, "body4.png", c[0].ImageURL)
	assert.Equal(t, 4, c[0].Quantity)
	assert.True(t, c[0].Price.Equal(decimal.NewFromInt(3500)))

	assert.Equal(t, "hair1.jpeg", c[1].ImageURL)
	assert.Equal(t, 1, c[1].Quantity, "missing quantity defaults to 1")
	assert.True(t, c[1].Price.IsZero(), "invalid price defaults to 0")

	assert.Equal(t, "a.jpg", c[2].ImageURL, "image_url takes precedence")
	assert.True(t, c[2].Price.IsZero(), "negative price clamps to 0")
}

func TestNormalizeDropsInvalidLines(t *testing.T) {
	in := records(t, `[
		{"id":"abc","price":1},
		{"price":1},
		{"id":1.5,"price":1},
		{"id":-2,"price":1},
		{"id":7,"quantity":0},
		{"id":8,"quantity":2,"qty":0},
		{"id":9,"quantity":null,"qty":3}
	]`)
	c := cart.Normalize(in)
	require.Len(t, c, 2)
	assert.Equal(t, int64(8), c[0].ID)
	assert.Equal(t, 2, c[0].Quantity, "quantity wins over qty")
	assert.Equal(t, int64(9), c[1].ID)
	assert.Equal(t, 3, c[1].Quantity, "null quantity falls through to qty")
}

func TestNormalizeMergesDuplicateIDs(t *testing.T) {
	c := cart.Normalize(records(t, `[{"id":1,"qty":2},{"id":2},{"id":1,"quantity":3}]`))
	require.Len(t, c, 2)
	assert.Equal(t, int64(1), c[0].ID)
	assert.Equal(t, 5, c[0].Quantity)
	assert.Equal(t, int64(2), c[1].ID)
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		`[]`,
		`[{"id":1,"qty":2,"price":"10.50"}]`,
		`[{"id":"2","name":"Lincoln","price":1800,"image":"perfume5.jpg"},{"id":3,"quantity":"7","price":"0.999"}]`,
		`[{"id":4,"qty":5000,"price":12}]`,
	}
	for _, raw := range inputs {
		once := cart.Normalize(records(t, raw))
		twice := cart.Normalize(once.Records())
		assert.True(t, once.Equal(twice), "normalize not idempotent for %s", raw)

		b, err := cart.Encode(once)
		require.NoError(t, err)
		back, err := cart.Parse(b)
		require.NoError(t, err)
		assert.True(t, once.Equal(back), "encode/parse changed %s", raw)

		for _, it := range once {
			assert.GreaterOrEqual(t, it.Quantity, 1)
			assert.LessOrEqual(t, it.Quantity, cart.MaxQuantity)
		}
	}
}

func TestAddTwiceIncrements(t *testing.T) {
	p := domain.Product{ID: 5, Name: "Lincoln", Price: decimal.RequireFromString("1800.00"), ImageURL: "perfume5.jpg"}

	c := cart.Add(nil, p)
	require.Len(t, c, 1)
	assert.Equal(t, 1, c[0].Quantity)
	assert.True(t, c[0].Price.Equal(decimal.NewFromInt(1800)))

	c = cart.Add(c, p)
	require.Len(t, c, 1)
	assert.Equal(t, 2, c[0].Quantity)
}

func TestAddDoesNotMutateInput(t *testing.T) {
	p := domain.Product{ID: 1, Price: decimal.NewFromInt(1)}
	orig := cart.Add(nil, p)
	_ = cart.Add(orig, p)
	assert.Equal(t, 1, orig[0].Quantity)
}

func TestUpdateAndRemove(t *testing.T) {
	c := cart.Cart{{ID: 1, Quantity: 1}, {ID: 2, Quantity: 4}}

	up := cart.Update(c, 2, 9)
	assert.Equal(t, 9, up[1].Quantity, "update sets, not increments")

	assert.True(t, c.Equal(cart.Update(c, 42, 3)), "unknown id is a no-op")

	gone := cart.Update(c, 1, 0)
	require.Len(t, gone, 1)
	assert.Equal(t, int64(2), gone[0].ID)

	assert.Len(t, cart.Update(c, 2, -1), 1)
	assert.Len(t, cart.Remove(c, 2), 1)
	assert.Len(t, cart.Remove(c, 99), 2)
}

func TestTotals(t *testing.T) {
	c := cart.Cart{
		{ID: 1, Price: decimal.RequireFromString("10.50"), Quantity: 2},
		{ID: 2, Price: decimal.RequireFromString("1800.00"), Quantity: 1},
	}
	tot := cart.ComputeTotals(c, decimal.NewFromInt(1000))
	assert.True(t, tot.Subtotal.Equal(decimal.RequireFromString("1821")))
	assert.True(t, tot.Total.Equal(tot.Subtotal.Add(tot.Shipping)))
	assert.Equal(t, 3, c.Count())
}

func TestEncodeEmpty(t *testing.T) {
	b, err := cart.Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}
