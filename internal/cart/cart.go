// Package cart holds the canonical cart model and the pure operations on it.
//
// Carts arrive from two untrusted places, the cart cookie and whatever an older
// session stored, so every inbound cart passes through Normalize. Nothing past
// this package sees a legacy item shape.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/errs"
)

// MaxQuantity caps a single line.
const MaxQuantity = 999

// Item is one canonical line.
type Item struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
	Quantity int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an insertion ordered list of lines with unique ids.
type Cart []Item

func (c Cart) Find(id int64) (Item, bool) {
	for _, it := range c {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Count is the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c {
		n += it.Quantity
	}
	return n
}

func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func (c Cart) IsEmpty() bool { return len(c) == 0 }

// Equal compares carts line by line, prices by value.
func (c Cart) Equal(o Cart) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		a, b := c[i], o[i]
		if a.ID != b.ID || a.Name != b.Name || a.ImageURL != b.ImageURL ||
			a.Quantity != b.Quantity || !a.Price.Equal(b.Price) {
			return false
		}
	}
	return true
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Add puts one unit of p into the cart, appending a line snapshot if p is new.
func Add(c Cart, p domain.Product) Cart {
	out := c.clone()
	for i := range out {
		if out[i].ID == p.ID {
			out[i].Quantity = clampQuantity(out[i].Quantity + 1)
			return out
		}
	}
	return append(out, Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    money(p.Price),
		ImageURL: p.ImageURL,
		Quantity: 1,
	})
}

// Update sets the quantity of line id exactly. qty <= 0 removes the line and an
// unknown id leaves the cart unchanged.
func Update(c Cart, id int64, qty int) Cart {
	if qty <= 0 {
		return Remove(c, id)
	}
	out := c.clone()
	for i := range out {
		if out[i].ID == id {
			out[i].Quantity = clampQuantity(qty)
		}
	}
	return out
}

func Remove(c Cart, id int64) Cart {
	out := make(Cart, 0, len(c))
	for _, it := range c {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Totals is the priced summary of a cart at checkout.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

func ComputeTotals(c Cart, shipping decimal.Decimal) Totals {
	sub := c.Subtotal()
	return Totals{Subtotal: sub, Shipping: shipping, Total: sub.Add(shipping)}
}

// Parse decodes a JSON array of loosely typed records and normalizes it.
// Undecodable input yields a MALFORMED_INPUT error; callers pick the fallback.
func Parse(data []byte) (Cart, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return Cart{}, errs.Wrap(errs.CodeMalformedInput, err, "decode cart")
	}
	return Normalize(records), nil
}

// Encode renders the canonical JSON form. An empty cart encodes as [].
func Encode(c Cart) ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	return json.Marshal(c)
}

func clampQuantity(q int) int {
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// money fixes a price to cents so equal prices share one representation.
func money(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return d.Round(2)
}
