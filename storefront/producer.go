package storefront

import (
	"fmt"
	"os"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/catalog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewProducerCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "producer",
		Short: "Manage your products (producer accounts)",
	}
	cmd.AddCommand(newProducerAddCommand(opts))
	cmd.AddCommand(newProducerEditCommand(opts))
	cmd.AddCommand(newProducerDeleteCommand(opts))
	cmd.AddCommand(newProducerListCommand(opts))
	cmd.AddCommand(newProducerExportCommand(opts))
	cmd.AddCommand(newProducerImportCommand(opts))
	return cmd
}

func parseUnitFlag(s string) (cart.Unit, error) {
	u, ok := cart.ParseUnit(s)
	if !ok {
		return "", fmt.Errorf("unknown unit %q", s)
	}
	return u, nil
}

func newProducerAddCommand(opts *RootOptions) *cobra.Command {
	var (
		p    catalog.NewProduct
		unit string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "List a new product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := parseUnitFlag(unit)
			if err != nil {
				return err
			}
			p.Unit = u
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				me, err := app.RequireProducer()
				if err != nil {
					return err
				}
				created, err := app.Client.CreateProduct(cmd.Context(), me.Token, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Listed %s (%s).\n", created.Name, created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().StringVar(&p.Origin, "origin", "", "where it is grown")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "price per unit")
	cmd.Flags().StringVar(&unit, "unit", "", "unit (unit|kilogram|dozen|jar)")
	cmd.Flags().StringVar(&p.ImageURL, "image-url", "", "photo URL")
	cmd.Flags().StringVar(&p.ImagePath, "image", "", "photo file to upload")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProducerEditCommand(opts *RootOptions) *cobra.Command {
	var (
		u    catalog.ProductUpdate
		unit string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change one of your products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unit != "" {
				parsed, err := parseUnitFlag(unit)
				if err != nil {
					return err
				}
				u.Unit = parsed
			}
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				me, err := app.RequireProducer()
				if err != nil {
					return err
				}
				updated, err := app.Client.UpdateProduct(cmd.Context(), me.Token, args[0], u)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Updated %s.\n", updated.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&u.Name, "name", "", "product name")
	cmd.Flags().StringVar(&u.Origin, "origin", "", "where it is grown")
	cmd.Flags().Float64Var(&u.Price, "price", 0, "price per unit")
	cmd.Flags().StringVar(&unit, "unit", "", "unit, unchanged when omitted")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProducerDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove one of your products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				me, err := app.RequireProducer()
				if err != nil {
					return err
				}
				if err := app.Client.DeleteProduct(cmd.Context(), me.Token, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "Product removed.")
				return nil
			})
		},
	}
}

func newProducerListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				me, err := app.RequireProducer()
				if err != nil {
					return err
				}
				products, err := app.Client.Products(cmd.Context(), me.ID)
				if err != nil {
					return err
				}
				printProducts(app.Out, products)
				return nil
			})
		},
	}
}

func newProducerExportCommand(opts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download your products as a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				me, err := app.RequireProducer()
				if err != nil {
					return err
				}
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, "create export file")
				}
				if err := app.Client.ExportProducts(cmd.Context(), me.Token, f); err != nil {
					f.Close()
					os.Remove(output)
					return err
				}
				if err := f.Close(); err != nil {
					return errors.Wrap(err, "write export file")
				}
				fmt.Fprintf(app.Out, "Saved %s.\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "products.xlsx", "spreadsheet to write")
	return cmd
}

func newProducerImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Create or update products from a spreadsheet laid out like the export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				me, err := app.RequireProducer()
				if err != nil {
					return err
				}
				res, err := app.Client.ImportProducts(cmd.Context(), me.Token, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Imported: %d created, %d updated, %d skipped.\n", res.Created, res.Updated, res.Skipped)
				return nil
			})
		},
	}
}
