package storefront

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/projection"
)

// Cart layouts.
const (
	LayoutList = "list"
	LayoutGrid = "grid"
)

func render(w io.Writer, v projection.View, layout string) error {
	if v.Empty {
		fmt.Fprintln(w, v.Message)
		return nil
	}
	switch layout {
	case LayoutList:
		renderList(w, v)
	case LayoutGrid:
		renderGrid(w, v)
	default:
		return fmt.Errorf("unknown layout %q: must be %s or %s", layout, LayoutList, LayoutGrid)
	}
	fmt.Fprintf(w, "Total: %s\n", v.TotalText())
	return nil
}

func renderList(w io.Writer, v projection.View) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPRODUCT\tQUANTITY\tPRICE\tSUBTOTAL\t")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s/%s\t%s\t%s\n",
			r.Index+1, r.Name,
			cart.FormatQuantity(r.Quantity), r.UnitLabel,
			projection.Money(r.Price), r.PriceLabel,
			projection.Money(r.Subtotal), notes(r))
	}
	tw.Flush()
}

func renderGrid(w io.Writer, v projection.View) {
	for _, r := range v.Rows {
		fmt.Fprintf(w, "+-- %d. %s\n", r.Index+1, r.Name)
		fmt.Fprintf(w, "|   photo: %s\n", r.ImageURL)
		if r.ProducerName != "" || r.Origin != "" {
			fmt.Fprintf(w, "|   from: %s\n", strings.Trim(r.ProducerName+", "+r.Origin, ", "))
		}
		fmt.Fprintf(w, "|   %s %s x %s/%s\n",
			cart.FormatQuantity(r.Quantity), r.UnitLabel, projection.Money(r.Price), r.PriceLabel)
		fmt.Fprintf(w, "|   subtotal: %s\n", projection.Money(r.Subtotal))
		if n := notes(r); n != "" {
			fmt.Fprintf(w, "|   %s\n", n)
		}
		fmt.Fprintln(w, "+--")
	}
}

func notes(r projection.Row) string {
	switch {
	case r.Unlisted:
		return "(no longer listed)"
	case r.PriceChanged:
		return fmt.Sprintf("(was %s)", projection.Money(r.SnapshotPrice))
	}
	return ""
}
