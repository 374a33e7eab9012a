package storefront

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/catalog"
	"github.com/ecoisla/market/checkout"
	"github.com/ecoisla/market/identity"
	"github.com/ecoisla/market/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// App is one page load: everything is rebuilt from the profile each time a
// command runs.
type App struct {
	Local   *storage.Profile
	Ident   *identity.Context
	Cart    *cart.Store
	Client  *catalog.Client
	Logger  *zap.Logger
	Out     io.Writer
	options *RootOptions
}

func openApp(opts *RootOptions, out io.Writer) (*App, error) {
	local, err := storage.OpenProfile(opts.Profile)
	if err != nil {
		return nil, errors.Wrap(err, "open profile")
	}
	logger := opts.logger()
	ident := identity.NewContext(local, logger)

	storeOpts := []cart.Option{cart.WithLogger(logger)}
	if opts.Now != nil {
		storeOpts = append(storeOpts, cart.WithClock(opts.Now))
	}
	return &App{
		Local:   local,
		Ident:   ident,
		Cart:    cart.NewStore(ident, local, storeOpts...),
		Client:  catalog.NewClient(opts.APIURL, opts.HTTPClient),
		Logger:  logger,
		Out:     out,
		options: opts,
	}, nil
}

func (a *App) Close() error { return a.Local.Close() }

// Flow builds the checkout for the configured variant. catalog may be nil.
func (a *App) Flow(idx catalog.Index) *checkout.Flow {
	opts := []checkout.Option{
		checkout.WithBadge(headerBadge{w: a.Out}),
		checkout.WithNavigator(pageNavigator{w: a.Out}),
		checkout.WithCatalog(idx.Catalog()),
		checkout.WithLogger(a.Logger),
	}
	if a.options.Variant == VariantShipping {
		opts = append(opts, checkout.WithShipping())
	}
	if a.options.Now != nil {
		opts = append(opts, checkout.WithClock(a.options.Now))
	}
	return checkout.NewFlow(a.Cart, a.Local, opts...)
}

// FetchCatalog takes a catalog snapshot; nil when the backend is down.
func (a *App) FetchCatalog(ctx context.Context) catalog.Index {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return catalog.Fetch(ctx, a.Client, a.Logger)
}

// Badge prints the header cart count.
func (a *App) Badge() {
	headerBadge{w: a.Out}.Update(a.Cart.Count())
}

// RequireUser returns the signed-in user or an error asking to sign in.
func (a *App) RequireUser() (identity.User, error) {
	u, ok := a.Ident.CurrentUser()
	if !ok {
		return identity.User{}, errors.New("you are not logged in")
	}
	return u, nil
}

func (a *App) RequireProducer() (identity.User, error) {
	u, err := a.RequireUser()
	if err != nil {
		return u, err
	}
	if !u.IsProducer() {
		return u, errors.New("only producer accounts can manage products")
	}
	return u, nil
}

type headerBadge struct{ w io.Writer }

func (b headerBadge) Update(count float64) {
	fmt.Fprintf(b.w, "[%s]\n", cart.BadgeText(count))
}

type pageNavigator struct{ w io.Writer }

func (n pageNavigator) Navigate(page string) {
	fmt.Fprintf(n.w, "-> %s\n", page)
}

// withApp runs fn inside one page load.
func withApp(opts *RootOptions, out io.Writer, fn func(*App) error) error {
	app, err := openApp(opts, out)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
