package storefront

import (
	"fmt"
	"strconv"

	"github.com/ecoisla/market/cart"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage your cart",
	}
	cmd.AddCommand(newCartAddCommand(opts))
	cmd.AddCommand(newCartShowCommand(opts))
	cmd.AddCommand(newCartRemoveCommand(opts))
	cmd.AddCommand(newCartClearCommand(opts))
	return cmd
}

func newCartAddCommand(opts *RootOptions) *cobra.Command {
	var (
		quantity float64
		unit     string
	)
	cmd := &cobra.Command{
		Use:   "add <product>",
		Short: "Add a catalog product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				// checked before the catalog round trip
				if _, ok := app.Ident.CartKey(); !ok {
					return cart.ErrNotAuthenticated
				}

				var wantUnit cart.Unit
				if unit != "" {
					u, ok := cart.ParseUnit(unit)
					if !ok {
						return fmt.Errorf("unknown unit %q", unit)
					}
					wantUnit = u
				}

				products, err := app.Client.Products(cmd.Context(), "")
				if err != nil {
					return errors.Wrap(err, "the catalog is not available right now")
				}
				p, ok := findProduct(products, args[0], wantUnit)
				if !ok {
					return fmt.Errorf("no product called %q in the catalog", args[0])
				}

				li, err := app.Cart.Add(cart.Item{
					Name:     p.Name,
					Price:    p.Price,
					Unit:     p.Unit,
					Quantity: quantity,
					ImageURL: p.ImageURL,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Added %s (%s %s in cart).\n", li.Name, cart.FormatQuantity(li.Quantity), li.Unit.Label())
				app.Badge()
				return nil
			})
		},
	}
	cmd.Flags().Float64VarP(&quantity, "quantity", "q", 0, "quantity (default 1, or 0.1 kg for produce sold by weight)")
	cmd.Flags().StringVar(&unit, "unit", "", "pick the listing sold in this unit")
	return cmd
}

func newCartShowCommand(opts *RootOptions) *cobra.Command {
	var layout string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				app.Badge()
				view := app.Flow(app.FetchCatalog(cmd.Context())).Review()
				if err := render(app.Out, view, layout); err != nil {
					return err
				}
				if view.CanCheckout {
					fmt.Fprintln(app.Out, nextStep(opts))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&layout, "layout", LayoutList, "cart layout (list|grid)")
	return cmd
}

func nextStep(opts *RootOptions) string {
	if opts.Variant == VariantShipping {
		return "Continue with: storefront checkout ship"
	}
	return "Continue with: storefront checkout pay"
}

func newCartRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <line>",
		Short: "Remove a line from the cart by its number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("line must be a number, got %q", args[0])
			}
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				li, err := app.Cart.RemoveAt(n - 1)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Removed %s.\n", li.Name)
				app.Badge()
				return nil
			})
		},
	}
}

func newCartClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				if err := app.Cart.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "Cart emptied.")
				app.Badge()
				return nil
			})
		},
	}
}
