package storefront

import (
	"fmt"
	"io"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/checkout"
	"github.com/ecoisla/market/projection"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrRejected reports a form that failed validation. The reasons have
// already been printed.
var ErrRejected = errors.New("please correct the highlighted fields")

func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the cart",
	}
	cmd.AddCommand(newCheckoutShipCommand(opts))
	cmd.AddCommand(newCheckoutPayCommand(opts))
	return cmd
}

func newCheckoutShipCommand(opts *RootOptions) *cobra.Command {
	var s checkout.Shipping
	cmd := &cobra.Command{
		Use:   "ship",
		Short: "Enter delivery details (shipping checkout)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Variant != VariantShipping {
				return fmt.Errorf("delivery details are only collected with --variant %s", VariantShipping)
			}
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				if _, err := app.RequireUser(); err != nil {
					return err
				}
				flow := app.Flow(nil)
				if err := flow.Proceed(); err != nil {
					return err
				}
				if err := flow.SubmitShipping(s); err != nil {
					return rejected(app.Out, err)
				}
				fmt.Fprintf(app.Out, "Delivering to %s, %s.\n", s.BuyerName, s.Address)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&s.BuyerName, "name", "", "buyer name")
	cmd.Flags().StringVar(&s.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&s.Email, "email", "", "contact email")
	return cmd
}

func newCheckoutPayCommand(opts *RootOptions) *cobra.Command {
	var p checkout.Payment
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Pay for the cart with a card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				if _, err := app.RequireUser(); err != nil {
					return err
				}
				flow := app.Flow(app.FetchCatalog(cmd.Context()))
				// the shipping variant arrives here on a later page load
				start := flow.Proceed
				if flow.Shipping() {
					start = flow.ResumePayment
				}
				if err := start(); err != nil {
					if errors.Is(err, checkout.ErrNoDraft) {
						return errors.New("enter your delivery details first: storefront checkout ship")
					}
					return err
				}
				fmt.Fprintf(app.Out, "Amount due: %s\n", projection.Money(flow.PaymentTotal()))

				receipt, err := flow.SubmitPayment(p)
				if err != nil {
					return rejected(app.Out, err)
				}
				printReceipt(app.Out, receipt)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&p.CardHolder, "holder", "", "cardholder name")
	cmd.Flags().StringVar(&p.CardNumber, "number", "", "card number (16 digits)")
	cmd.Flags().StringVar(&p.Expiry, "expiry", "", "expiry date (MM/YY)")
	cmd.Flags().StringVar(&p.CVV, "cvv", "", "security code (3 digits)")
	return cmd
}

func rejected(w io.Writer, err error) error {
	var verr *checkout.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for _, msg := range verr.Messages {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
	return ErrRejected
}

func printReceipt(w io.Writer, r checkout.Receipt) {
	fmt.Fprintln(w, "Payment accepted. Thank you for buying local!")
	fmt.Fprintf(w, "Order %s\n", r.Ref)
	for _, li := range r.Items {
		fmt.Fprintf(w, "  %s %s %s\n", cart.FormatQuantity(li.Quantity), li.Unit.Label(), li.Name)
	}
	if r.Buyer != nil {
		fmt.Fprintf(w, "Delivery: %s, %s\n", r.Buyer.BuyerName, r.Buyer.Address)
	}
	fmt.Fprintf(w, "Paid: %s\n", projection.Money(r.Total))
}
