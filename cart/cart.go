// Package cart keeps the per-user shopping cart in the local profile.
//
// A cart is an ordered list of line items stored as one JSON array under the
// current user's cart key. Line items are identified by product name and
// pricing unit, not by product id; see KeyOf.
package cart

import (
	"time"
)

// LineItem is one cart entry. Price is the snapshot taken when the item was
// first added.
type LineItem struct {
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Unit     Unit      `json:"unit"`
	Quantity float64   `json:"quantity"`
	ImageURL string    `json:"imageUrl"`
	AddedAt  time.Time `json:"addedAt"`
}

// Key identifies a line item within a cart.
type Key struct {
	Name string
	Unit Unit
}

// KeyOf is the only place line-item identity is decided.
func KeyOf(name string, unit Unit) Key {
	if unit == "" {
		unit = DefaultUnit
	}
	return Key{Name: name, Unit: unit}
}

func (li LineItem) Key() Key { return KeyOf(li.Name, li.Unit) }

// Subtotal is price × quantity, unrounded.
func (li LineItem) Subtotal() float64 { return li.Price * li.Quantity }

type Cart []LineItem

// Total is Σ price × quantity, unrounded.
func (c Cart) Total() float64 {
	var total float64
	for _, li := range c {
		total += li.Subtotal()
	}
	return total
}

// Find returns the position of the line item with key k, or -1.
func (c Cart) Find(k Key) int {
	for i, li := range c {
		if li.Key() == k {
			return i
		}
	}
	return -1
}

// Quantity is the sum of all line item quantities.
func (c Cart) Quantity() float64 {
	var q float64
	for _, li := range c {
		q += li.Quantity
	}
	return q
}

// Clone returns a copy that shares nothing with c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
