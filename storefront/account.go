package storefront

import (
	"fmt"

	"github.com/ecoisla/market/catalog"
	"github.com/ecoisla/market/checkout"
	"github.com/ecoisla/market/identity"
	"github.com/spf13/cobra"
)

func NewRegisterCommand(opts *RootOptions) *cobra.Command {
	var (
		name, email, password string
		producer              bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				role := identity.RoleCustomer
				if producer {
					role = identity.RoleProducer
				}
				u, err := app.Client.Register(cmd.Context(), catalog.Registration{
					Name: name, Email: email, Password: password, Role: role,
				})
				if err != nil {
					return err
				}
				if err := app.Ident.Replace(u); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Welcome, %s.\n", u.Name)
				app.Badge()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVar(&producer, "producer", false, "register as a producer")
	return cmd
}

func NewLoginCommand(opts *RootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				u, err := app.Client.Login(cmd.Context(), email, password)
				if err != nil {
					return err
				}
				if err := app.Ident.Replace(u); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Logged in as %s (%s).\n", u.Name, u.Role)
				app.Badge()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; the cart stays stored for the next login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				if err := checkout.DiscardDraft(app.Local); err != nil {
					return err
				}
				if err := app.Ident.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "Logged out.")
				app.Badge()
				return nil
			})
		},
	}
}

func NewWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				u, ok := app.Ident.CurrentUser()
				if !ok {
					fmt.Fprintln(app.Out, "Not logged in.")
					return nil
				}
				fmt.Fprintf(app.Out, "%s <%s> (%s)\n", u.Name, u.Email, u.Role)
				app.Badge()
				return nil
			})
		},
	}
}

func NewDeleteAccountCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Delete your account, your products and your cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete the account without --yes")
			}
			return withApp(opts, cmd.OutOrStdout(), func(app *App) error {
				u, err := app.RequireUser()
				if err != nil {
					return err
				}
				if err := app.Client.DeleteUser(cmd.Context(), u.Token, u.ID); err != nil {
					return err
				}
				if err := app.Cart.Clear(); err != nil {
					return err
				}
				if err := app.Local.Remove(identity.CartKeyFor(u.Email)); err != nil {
					return err
				}
				if err := checkout.DiscardDraft(app.Local); err != nil {
					return err
				}
				if err := app.Ident.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "Account deleted.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
