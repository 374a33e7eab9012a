// Package projection derives the cart view shown on the cart and payment
// pages from the stored cart and, when available, the live catalog.
package projection

import (
	"fmt"
	"strings"

	"github.com/ecoisla/market/cart"
	"github.com/shopspring/decimal"
)

const (
	FallbackImage = "img/producto-generico.png"
	EmptyMessage  = "Your cart is empty."
)

// Entry is the authoritative catalog record for one line-item key.
type Entry struct {
	Price        float64
	ImageURL     string
	ProducerName string
	Origin       string
}

// Catalog resolves line-item keys against live product data.
type Catalog interface {
	Lookup(k cart.Key) (Entry, bool)
}

type Row struct {
	Index         int
	Key           cart.Key
	Name          string
	Unit          cart.Unit
	UnitLabel     string
	PriceLabel    string
	Quantity      float64
	Price         float64
	SnapshotPrice float64
	Subtotal      float64
	ImageURL      string
	ProducerName  string
	Origin        string
	PriceChanged  bool
	Unlisted      bool
}

type View struct {
	Rows        []Row
	Total       float64
	Empty       bool
	Message     string
	CanCheckout bool
}

// Project builds the view of c. catalog may be nil. Subtotals are rounded
// per row for display; Total is the unrounded sum rounded once.
func Project(c cart.Cart, catalog Catalog) View {
	if len(c) == 0 {
		return View{Rows: []Row{}, Empty: true, Message: EmptyMessage}
	}

	rows := make([]Row, 0, len(c))
	total := decimal.Zero
	for i, li := range c {
		row := Row{
			Index:         i,
			Key:           li.Key(),
			Name:          li.Name,
			Unit:          li.Unit,
			UnitLabel:     li.Unit.Label(),
			PriceLabel:    li.Unit.PriceLabel(),
			Quantity:      li.Quantity,
			Price:         li.Price,
			SnapshotPrice: li.Price,
			ImageURL:      li.ImageURL,
		}
		if catalog != nil {
			if e, ok := catalog.Lookup(row.Key); ok {
				row.Price = e.Price
				row.PriceChanged = e.Price != li.Price
				row.ProducerName = e.ProducerName
				row.Origin = e.Origin
				if row.ImageURL == "" {
					row.ImageURL = e.ImageURL
				}
			} else {
				row.Unlisted = true
			}
		}
		if strings.TrimSpace(row.ImageURL) == "" {
			row.ImageURL = FallbackImage
		}

		sub := decimal.NewFromFloat(row.Price).Mul(decimal.NewFromFloat(row.Quantity))
		total = total.Add(sub)
		row.Subtotal = Round(sub)
		rows = append(rows, row)
	}

	return View{
		Rows:        rows,
		Total:       Round(total),
		CanCheckout: true,
	}
}

// Round rounds half away from zero to cents.
func Round(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Money formats an amount the way the storefront prints prices.
func Money(amount float64) string {
	return fmt.Sprintf("%s €", decimal.NewFromFloat(amount).StringFixed(2))
}

// TotalText is the formatted grand total.
func (v View) TotalText() string { return Money(v.Total) }
