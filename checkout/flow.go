// Package checkout drives a cart from review to a confirmed payment.
//
// The flow is forward-only. A successful payment clears the cart, refreshes
// the header badge, discards the checkout draft and navigates to the
// confirmation page, in that order. Card details are validated and dropped.
package checkout

import (
	"strings"
	"time"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/projection"
	"github.com/ecoisla/market/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrCartEmpty         = errors.New("your cart is empty")
	ErrInvalidTransition = errors.New("checkout: invalid transition")
	ErrNoDraft           = errors.New("checkout: no shipping details on file")
)

type State int

const (
	Reviewing State = iota
	EnteringShipping
	EnteringPayment
	Confirmed
)

func (s State) String() string {
	switch s {
	case Reviewing:
		return "reviewing"
	case EnteringShipping:
		return "entering-shipping"
	case EnteringPayment:
		return "entering-payment"
	case Confirmed:
		return "confirmed"
	}
	return "unknown"
}

// Pages the flow navigates to.
const (
	PagePayment      = "payment"
	PageConfirmation = "confirmation"
)

// Badge shows the cart count in the page header.
type Badge interface {
	Update(count float64)
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(page string)
}

type nopBadge struct{}

func (nopBadge) Update(float64) {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}

// Receipt describes a confirmed payment. Items carry the prices that were
// charged.
type Receipt struct {
	Ref      string
	Items    cart.Cart
	Total    float64
	Buyer    *Shipping
	PlacedAt time.Time
}

type Flow struct {
	store    *cart.Store
	local    storage.Local
	badge    Badge
	nav      Navigator
	catalog  projection.Catalog
	shipping bool
	now      func() time.Time
	logger   *zap.Logger

	state State
}

type Option func(*Flow)

// WithShipping enables the variant that collects contact details before
// payment.
func WithShipping() Option { return func(f *Flow) { f.shipping = true } }

func WithBadge(b Badge) Option { return func(f *Flow) { f.badge = b } }

func WithNavigator(n Navigator) Option { return func(f *Flow) { f.nav = n } }

// WithCatalog reconciles the review against live product data.
func WithCatalog(c projection.Catalog) Option { return func(f *Flow) { f.catalog = c } }

func WithClock(now func() time.Time) Option { return func(f *Flow) { f.now = now } }

func WithLogger(l *zap.Logger) Option { return func(f *Flow) { f.logger = l } }

func NewFlow(store *cart.Store, local storage.Local, opts ...Option) *Flow {
	f := &Flow{
		store:  store,
		local:  local,
		badge:  nopBadge{},
		nav:    nopNavigator{},
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) State() State { return f.state }

// Shipping reports whether the flow collects contact details.
func (f *Flow) Shipping() bool { return f.shipping }

// Review projects the live cart.
func (f *Flow) Review() projection.View {
	return projection.Project(f.store.Load(), f.catalog)
}

// Proceed leaves the review. It is blocked while the cart is empty.
func (f *Flow) Proceed() error {
	if f.state != Reviewing {
		return errors.Wrapf(ErrInvalidTransition, "proceed from %s", f.state)
	}
	if len(f.store.Load()) == 0 {
		return ErrCartEmpty
	}
	if f.shipping {
		// details from an earlier attempt are entered again
		if err := DiscardDraft(f.local); err != nil {
			return err
		}
		f.state = EnteringShipping
		return nil
	}
	f.state = EnteringPayment
	f.nav.Navigate(PagePayment)
	return nil
}

// SubmitShipping records the contact details with a snapshot of the cart
// and moves on to payment. Nothing is stored when a field is missing.
func (f *Flow) SubmitShipping(s Shipping) error {
	if f.state != EnteringShipping {
		return errors.Wrapf(ErrInvalidTransition, "submit shipping from %s", f.state)
	}
	if msgs := ValidateShipping(s); len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}

	owner, ok := f.store.Identity().CartKey()
	if !ok {
		return cart.ErrNotAuthenticated
	}
	c := f.store.Load()
	if len(c) == 0 {
		return ErrCartEmpty
	}
	d := Draft{
		Owner:     owner,
		BuyerName: strings.TrimSpace(s.BuyerName),
		Address:   strings.TrimSpace(s.Address),
		Email:     strings.TrimSpace(s.Email),
		Cart:      c,
		CreatedAt: f.now().UTC(),
	}
	if err := saveDraft(f.local, d); err != nil {
		return err
	}

	f.state = EnteringPayment
	f.nav.Navigate(PagePayment)
	return nil
}

// ResumePayment enters the payment step on a fresh page load. The shipping
// variant requires a draft saved by an earlier SubmitShipping.
func (f *Flow) ResumePayment() error {
	if f.state != Reviewing {
		return errors.Wrapf(ErrInvalidTransition, "resume payment from %s", f.state)
	}
	if len(f.store.Load()) == 0 {
		return ErrCartEmpty
	}
	if f.shipping {
		if _, ok := f.draft(); !ok {
			return ErrNoDraft
		}
	}
	f.state = EnteringPayment
	return nil
}

// PaymentTotal is the total shown on the payment page, computed from the
// live cart rather than the draft snapshot.
func (f *Flow) PaymentTotal() float64 {
	return projection.Project(f.store.Load(), f.catalog).Total
}

// SubmitPayment validates the card form and, when it passes, confirms the
// order against the cart as it is now.
func (f *Flow) SubmitPayment(p Payment) (Receipt, error) {
	if f.state != EnteringPayment {
		return Receipt{}, errors.Wrapf(ErrInvalidTransition, "submit payment from %s", f.state)
	}
	if msgs := ValidatePayment(p); len(msgs) > 0 {
		return Receipt{}, &ValidationError{Messages: msgs}
	}

	c := f.store.Load()
	if len(c) == 0 {
		return Receipt{}, ErrCartEmpty
	}
	view := projection.Project(c, f.catalog)
	items := make(cart.Cart, len(c))
	copy(items, c)
	for _, row := range view.Rows {
		items[row.Index].Price = row.Price
	}
	receipt := Receipt{
		Ref:      uuid.NewString(),
		Items:    items,
		Total:    view.Total,
		PlacedAt: f.now().UTC(),
	}
	if d, ok := f.draft(); ok {
		receipt.Buyer = &Shipping{BuyerName: d.BuyerName, Address: d.Address, Email: d.Email}
	}

	if err := f.store.Clear(); err != nil {
		return Receipt{}, errors.Wrap(err, "clear cart")
	}
	f.badge.Update(f.store.Count())
	if err := DiscardDraft(f.local); err != nil {
		f.logger.Warn("discard checkout draft", zap.Error(err))
	}
	f.state = Confirmed
	f.nav.Navigate(PageConfirmation)

	f.logger.Info("payment confirmed",
		zap.String("ref", receipt.Ref),
		zap.Int("items", len(receipt.Items)),
		zap.Float64("total", receipt.Total),
	)
	return receipt, nil
}

// draft is the current user's pending draft.
func (f *Flow) draft() (Draft, bool) {
	owner, _ := f.store.Identity().CartKey()
	return LoadDraft(f.local, owner)
}
