package storefront

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/catalog"
	"github.com/ecoisla/market/projection"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewCatalogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the product catalog",
	}
	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogWatchCommand(opts))
	return cmd
}

func newCatalogListCommand(opts *RootOptions) *cobra.Command {
	var producerID, origin string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				app.Badge()
				products, err := app.Client.Products(cmd.Context(), producerID)
				if err != nil {
					app.Logger.Warn("catalog unavailable", zap.Error(err))
					fmt.Fprintln(app.Out, "The catalog is not available right now.")
					return nil
				}
				printProducts(app.Out, byOrigin(products, origin))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&producerID, "producer", "", "only this producer's products")
	cmd.Flags().StringVar(&origin, "origin", "", "only products grown here")
	return cmd
}

func printProducts(w io.Writer, products []catalog.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tPRICE\tORIGIN\tPRODUCER\tID")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\t%s\n",
			p.Name, projection.Money(p.Price), p.Unit.PriceLabel(), p.Origin, p.ProducerName, p.ID)
	}
	tw.Flush()
}

func newCatalogWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow catalog changes as producers make them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return catalog.Watch(cmd.Context(), catalog.FeedURL(opts.APIURL), func(ev catalog.Event) {
				p := ev.Product
				fmt.Fprintf(out, "%-8s %s %s/%s (%s)\n",
					ev.Type, p.Name, projection.Money(p.Price), p.Unit.PriceLabel(), p.ProducerName)
			})
		},
	}
}

// byOrigin keeps the products from origin; an empty origin keeps them all.
func byOrigin(products []catalog.Product, origin string) []catalog.Product {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return products
	}
	var out []catalog.Product
	for _, p := range products {
		if strings.EqualFold(strings.TrimSpace(p.Origin), origin) {
			out = append(out, p)
		}
	}
	return out
}

// findProduct picks the newest listing whose name matches, and whose unit
// matches when one is given.
func findProduct(products []catalog.Product, name string, unit cart.Unit) (catalog.Product, bool) {
	for _, p := range products {
		if !strings.EqualFold(p.Name, name) {
			continue
		}
		if unit != "" && p.Unit != unit {
			continue
		}
		return p, true
	}
	return catalog.Product{}, false
}
