package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/foodcart/internal/money"
)

// fieldAliases lists, per canonical field, the keys accepted when reading a persisted entry.
// The first key present with a non-null value wins. Writes always use the canonical key.
var fieldAliases = map[string][]string{
	"id":       {"id"},
	"name":     {"name", "title"},
	"price":    {"price", "value"},
	"qty":      {"qty", "quantity"},
	"note":     {"note"},
	"subtitle": {"subtitle"},
	"image":    {"image", "img"},
}

const defaultItemName = "Item"

// decodeResult reports what normalization kept and threw away.
type decodeResult struct {
	Items   []LineItem
	Dropped int
	Corrupt bool
}

// decodeLines parses a persisted payload. It never fails: an unreadable payload yields an
// empty, corrupt result and individual bad entries are dropped.
func decodeLines(raw []byte) decodeResult {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decodeResult{}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return decodeResult{Corrupt: true}
	}

	var entries []any
	switch v := payload.(type) {
	case nil:
		return decodeResult{}
	case []any:
		entries = v
	case map[string]any:
		entries = []any{v}
	default:
		return decodeResult{Corrupt: true}
	}

	var res decodeResult
	for idx, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			res.Dropped++
			continue
		}
		line, err := normalizeEntry(obj, idx)
		if err != nil {
			res.Dropped++
			continue
		}
		res.Items = upsertLine(res.Items, line, line.Quantity)
	}
	return res
}

// normalizeEntry converts a loosely typed record into a LineItem. Missing fields take
// defaults (id from position, name "Item", price 0, qty 1); present fields that do not
// coerce reject the entry.
func normalizeEntry(obj map[string]any, idx int) (LineItem, error) {
	var line LineItem

	if v, ok := lookup(obj, "id"); ok {
		f, err := toFloat(v)
		if err != nil {
			return LineItem{}, fmt.Errorf("id: %w", err)
		}
		if f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
			return LineItem{}, fmt.Errorf("id: %v is not a positive integer", f)
		}
		line.ID = int(f)
	} else {
		line.ID = idx + 1
	}

	line.Name = defaultItemName
	if v, ok := lookup(obj, "name"); ok {
		line.Name = strings.TrimSpace(toString(v))
	}
	if line.Name == "" {
		return LineItem{}, fmt.Errorf("name: empty")
	}

	if v, ok := lookup(obj, "price"); ok {
		price, err := toMoney(v)
		if err != nil {
			return LineItem{}, fmt.Errorf("price: %w", err)
		}
		if price < 0 {
			return LineItem{}, fmt.Errorf("price: negative")
		}
		line.UnitPrice = price
	}

	line.Quantity = 1
	if v, ok := lookup(obj, "qty"); ok {
		f, err := toFloat(v)
		if err != nil {
			return LineItem{}, fmt.Errorf("qty: %w", err)
		}
		if f > math.MaxInt32 {
			return LineItem{}, fmt.Errorf("qty: out of range")
		}
		qty := int(math.Trunc(f))
		if qty < 1 {
			qty = 1
		}
		line.Quantity = qty
	}
	if line.UnitPrice > 0 && int64(line.UnitPrice) > math.MaxInt64/int64(line.Quantity) {
		return LineItem{}, fmt.Errorf("price: total out of range")
	}

	if v, ok := lookup(obj, "note"); ok {
		line.Note = strings.TrimSpace(toString(v))
	}
	if v, ok := lookup(obj, "subtitle"); ok {
		line.Subtitle = strings.TrimSpace(toString(v))
	}
	if v, ok := lookup(obj, "image"); ok {
		line.ImageURL = toString(v)
	}
	return line, nil
}

func lookup(obj map[string]any, field string) (any, bool) {
	for _, key := range fieldAliases[field] {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toFloat(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = strconv.ParseFloat(t.String(), 64)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, money.ErrNotFinite
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, money.ErrNotFinite
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, money.ErrNotFinite
	}
	return f, nil
}

func toMoney(v any) (money.Money, error) {
	switch t := v.(type) {
	case json.Number:
		return money.Parse(t.String())
	case string:
		return money.Parse(t)
	default:
		return 0, money.ErrNotFinite
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return ""
	default:
		return ""
	}
}

// encodeLines renders items with canonical field names.
func encodeLines(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}
