// Package storefront is the command-line storefront. Every command is one
// page load against a local profile and the catalog backend.
package storefront

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ecoisla/market/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Checkout variants.
const (
	VariantDirect   = "direct"
	VariantShipping = "shipping"
)

// ValidVariants defines the allowed checkout variants.
var ValidVariants = []string{VariantDirect, VariantShipping}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIURL   string
	Profile  string
	Variant  string
	LogLevel string

	// Set by tests.
	HTTPClient *http.Client
	Logger     *zap.Logger
	Now        func() time.Time
}

func (o *RootOptions) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"stderr"}
	if lvl, err := zapcore.ParseLevel(o.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	l, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	o.Logger = l
	return l
}

// NewRootCommand creates the storefront command tree with defaults from cfg.
func NewRootCommand(cfg *config.Storefront) *cobra.Command {
	opts := &RootOptions{}
	return newRootCommand(cfg, opts)
}

func newRootCommand(cfg *config.Storefront, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "EcoIsla storefront",
		Long:          "Browse local produce, keep a cart and pay for it from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidVariant(opts.Variant) {
				return fmt.Errorf("invalid variant %q: must be one of %v", opts.Variant, ValidVariants)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", cfg.APIURL, "catalog backend URL")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", cfg.Profile, "local profile database")
	cmd.PersistentFlags().StringVar(&opts.Variant, "variant", cfg.Variant, "checkout variant (direct|shipping)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", cfg.LogLevel, "log level")

	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewDeleteAccountCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewProducerCommand(opts))

	return cmd
}

func isValidVariant(v string) bool {
	for _, valid := range ValidVariants {
		if v == valid {
			return true
		}
	}
	return false
}
