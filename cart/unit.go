package cart

import (
	"encoding/json"
	"strings"
)

// Unit is the pricing unit of a line item.
type Unit string

const (
	UnitEach     Unit = "unit"
	UnitKilogram Unit = "kilogram"
	UnitDozen    Unit = "dozen"
	UnitJar      Unit = "jar"
)

// DefaultUnit is used when an item carries no unit.
const DefaultUnit = UnitEach

// ParseUnit maps a stored or submitted label onto a Unit. The legacy
// storefront labels are accepted and an empty label is DefaultUnit. Anything
// else reads as DefaultUnit and reports false.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultUnit, true
	case "unit", "unidad":
		return UnitEach, true
	case "kilogram", "kg":
		return UnitKilogram, true
	case "dozen", "docena":
		return UnitDozen, true
	case "jar", "tarro":
		return UnitJar, true
	default:
		return DefaultUnit, false
	}
}

// IsWeight reports whether quantities of u may be fractional.
func (u Unit) IsWeight() bool { return u == UnitKilogram }

// DefaultQuantity is the quantity used when a caller supplies an invalid one.
func (u Unit) DefaultQuantity() float64 {
	if u.IsWeight() {
		return 0.1
	}
	return 1
}

// Label is the quantity suffix shown next to an amount, e.g. "3 dozens".
func (u Unit) Label() string {
	switch u {
	case UnitKilogram:
		return "kg"
	case UnitDozen:
		return "dozens"
	case UnitJar:
		return "jars"
	default:
		return "unit."
	}
}

// PriceLabel is the per-unit suffix shown after a price, e.g. "2.50 €/kg".
func (u Unit) PriceLabel() string {
	switch u {
	case UnitKilogram:
		return "kg"
	case UnitDozen:
		return "dozen"
	case UnitJar:
		return "jar"
	default:
		return "unit"
	}
}

// UnmarshalJSON normalizes whatever label was stored.
func (u *Unit) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*u, _ = ParseUnit(s)
	return nil
}
