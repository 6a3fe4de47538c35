package cart

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one cart entry in any of the accepted shapes:
//
//	id        number | numeric string
//	name      string
//	price     number | numeric string
//	image     image_url | image | imageUrl, first non-empty wins
//	quantity  quantity | qty, first present wins, default 1
type Record struct {
	ID            json.RawMessage `json:"id,omitempty"`
	Name          json.RawMessage `json:"name,omitempty"`
	Price         json.RawMessage `json:"price,omitempty"`
	ImageURL      json.RawMessage `json:"image_url,omitempty"`
	Image         json.RawMessage `json:"image,omitempty"`
	ImageURLCamel json.RawMessage `json:"imageUrl,omitempty"`
	Quantity      json.RawMessage `json:"quantity,omitempty"`
	Qty           json.RawMessage `json:"qty,omitempty"`
}

// Normalize maps records to canonical lines, preserving order.
//
// Records without a positive integer id are dropped, as are records whose
// quantity is below one. Invalid or negative prices become 0. Repeated ids
// collapse into the first line with quantities summed.
func Normalize(records []Record) Cart {
	out := make(Cart, 0, len(records))
	index := make(map[int64]int, len(records))
	for _, r := range records {
		it, ok := r.item()
		if !ok {
			continue
		}
		if i, dup := index[it.ID]; dup {
			out[i].Quantity = clampQuantity(out[i].Quantity + it.Quantity)
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

// Records converts canonical lines back to records.
func (c Cart) Records() []Record {
	out := make([]Record, 0, len(c))
	for _, it := range c {
		id, _ := json.Marshal(it.ID)
		name, _ := json.Marshal(it.Name)
		price, _ := json.Marshal(it.Price)
		img, _ := json.Marshal(it.ImageURL)
		qty, _ := json.Marshal(it.Quantity)
		out = append(out, Record{ID: id, Name: name, Price: price, ImageURL: img, Quantity: qty})
	}
	return out
}

func (r Record) item() (Item, bool) {
	id, ok := number(r.ID)
	if !ok || !id.IsInteger() || !id.IsPositive() || id.GreaterThan(maxID) {
		return Item{}, false
	}

	qty := 1
	raw := r.Quantity
	if !present(raw) {
		raw = r.Qty
	}
	if present(raw) {
		if q, ok := number(raw); ok {
			if q.LessThan(decimal.NewFromInt(1)) {
				return Item{}, false
			}
			if q.GreaterThan(decimal.NewFromInt(MaxQuantity)) {
				qty = MaxQuantity
			} else {
				qty = int(q.IntPart())
			}
		}
	}

	price, ok := number(r.Price)
	if !ok {
		price = decimal.Zero
	}

	return Item{
		ID:       id.IntPart(),
		Name:     str(r.Name),
		Price:    money(price),
		ImageURL: firstNonEmpty(str(r.ImageURL), str(r.Image), str(r.ImageURLCamel)),
		Quantity: qty,
	}, true
}

var maxID = decimal.NewFromInt(math.MaxInt64)

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

// number accepts a JSON number or a string holding one.
func number(raw json.RawMessage) (decimal.Decimal, bool) {
	if !present(raw) {
		return decimal.Zero, false
	}
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, false
		}
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// str returns the value of a JSON string, "" for anything else.
func str(raw json.RawMessage) string {
	if !present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
