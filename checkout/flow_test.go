package checkout

import (
	"testing"
	"time"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/identity"
	"github.com/ecoisla/market/projection"
	"github.com/ecoisla/market/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

var anaKey = identity.CartKeyFor("ana@example.com")

var validCard = Payment{CardHolder: "Ana", CardNumber: "4111111111111111", Expiry: "08/27", CVV: "123"}

// recorder observes the side effects of a payment, in order, together with
// what the profile held when each happened.
type recorder struct {
	t      *testing.T
	store  *cart.Store
	local  storage.Local
	events []string
}

func (r *recorder) Update(count float64) {
	assert.Empty(r.t, r.store.Load(), "cart must be cleared before the badge refresh")
	r.events = append(r.events, "badge:"+cart.BadgeText(count))
}

func (r *recorder) Navigate(page string) {
	if page == PageConfirmation {
		_, hasDraft := LoadDraft(r.local, anaKey)
		assert.False(r.t, hasDraft, "draft must be discarded before confirming")
	}
	r.events = append(r.events, "navigate:"+page)
}

func setup(t *testing.T, opts ...Option) (*Flow, *cart.Store, *recorder, storage.Local) {
	t.Helper()
	local := storage.NewMemory()
	ident := identity.NewContext(local, nil)
	require.NoError(t, ident.Replace(identity.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: identity.RoleCustomer}))
	store := cart.NewStore(ident, local, cart.WithClock(func() time.Time { return fixedNow }))

	rec := &recorder{t: t, store: store, local: local}
	opts = append([]Option{
		WithBadge(rec),
		WithNavigator(rec),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return NewFlow(store, local, opts...), store, rec, local
}

func TestValidatePayment(t *testing.T) {
	t.Run("all violations are reported", func(t *testing.T) {
		msgs := ValidatePayment(Payment{CardHolder: "", CardNumber: "1234", Expiry: "13/20", CVV: "12"})
		assert.Equal(t, []string{MsgCardHolder, MsgCardNumber, MsgExpiry, MsgCVV}, msgs)
	})

	t.Run("valid card", func(t *testing.T) {
		assert.Empty(t, ValidatePayment(validCard))
	})

	tests := []struct {
		name string
		p    Payment
		want []string
	}{
		{"blank holder", Payment{CardHolder: "   ", CardNumber: "4111111111111111", Expiry: "08/27", CVV: "123"}, []string{MsgCardHolder}},
		{"number with spaces", Payment{CardHolder: "Ana", CardNumber: "4111 1111 1111 1111", Expiry: "08/27", CVV: "123"}, nil},
		{"number with letters", Payment{CardHolder: "Ana", CardNumber: "4111a11111111111", Expiry: "08/27", CVV: "123"}, []string{MsgCardNumber}},
		{"month zero", Payment{CardHolder: "Ana", CardNumber: "4111111111111111", Expiry: "00/27", CVV: "123"}, []string{MsgExpiry}},
		{"four digit year", Payment{CardHolder: "Ana", CardNumber: "4111111111111111", Expiry: "08/2027", CVV: "123"}, []string{MsgExpiry}},
		{"december", Payment{CardHolder: "Ana", CardNumber: "4111111111111111", Expiry: "12/30", CVV: "123"}, nil},
		{"four digit cvv", Payment{CardHolder: "Ana", CardNumber: "4111111111111111", Expiry: "08/27", CVV: "1234"}, []string{MsgCVV}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePayment(tt.p))
		})
	}
}

func TestFlow_NaranjasEndToEnd(t *testing.T) {
	flow, store, rec, local := setup(t)

	_, err := store.Add(cart.Item{Name: "Naranjas", Price: 2.5, Unit: cart.UnitKilogram, Quantity: 3})
	require.NoError(t, err)

	view := flow.Review()
	require.Len(t, view.Rows, 1)
	assert.Equal(t, 3.0, view.Rows[0].Quantity)
	assert.Equal(t, 7.5, view.Rows[0].Subtotal)
	assert.Equal(t, "7.50 €", view.TotalText())
	assert.Equal(t, "Cart (3)", cart.BadgeText(store.Count()))

	require.NoError(t, flow.Proceed())
	assert.Equal(t, EnteringPayment, flow.State())
	assert.Equal(t, 7.5, flow.PaymentTotal())

	receipt, err := flow.SubmitPayment(validCard)
	require.NoError(t, err)
	assert.Equal(t, Confirmed, flow.State())
	assert.NotEmpty(t, receipt.Ref)
	assert.Equal(t, 7.5, receipt.Total)
	assert.Equal(t, fixedNow, receipt.PlacedAt)
	require.Len(t, receipt.Items, 1)
	assert.Nil(t, receipt.Buyer)

	assert.Empty(t, store.Load())
	assert.Equal(t, []string{"navigate:" + PagePayment, "badge:Cart (0)", "navigate:" + PageConfirmation}, rec.events)

	_, ok := LoadDraft(local, anaKey)
	assert.False(t, ok)
}

func TestFlow_RejectedPaymentChangesNothing(t *testing.T) {
	flow, store, rec, _ := setup(t)
	_, err := store.Add(cart.Item{Name: "Naranjas", Price: 2.5, Unit: cart.UnitKilogram, Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, flow.Proceed())
	rec.events = nil

	_, err = flow.SubmitPayment(Payment{CardNumber: "1234", Expiry: "13/20", CVV: "12"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Messages, 4)

	assert.Equal(t, EnteringPayment, flow.State())
	assert.Len(t, store.Load(), 1)
	assert.Empty(t, rec.events)
}

func TestFlow_ProceedBlockedWhenEmpty(t *testing.T) {
	flow, _, rec, _ := setup(t)

	view := flow.Review()
	assert.True(t, view.Empty)
	assert.False(t, view.CanCheckout)

	assert.ErrorIs(t, flow.Proceed(), ErrCartEmpty)
	assert.Equal(t, Reviewing, flow.State())
	assert.Empty(t, rec.events)
}

func TestFlow_CartEmptiedBeforePayment(t *testing.T) {
	flow, store, rec, _ := setup(t)
	_, err := store.Add(cart.Item{Name: "Miel", Price: 6, Unit: cart.UnitJar, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, flow.Proceed())
	rec.events = nil

	// Another page emptied the cart while the payment form was open.
	require.NoError(t, store.Clear())

	assert.Equal(t, 0.0, flow.PaymentTotal())
	_, err = flow.SubmitPayment(validCard)
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Equal(t, EnteringPayment, flow.State())
	assert.Empty(t, rec.events)
}

func TestFlow_PaymentTotalFollowsLiveCart(t *testing.T) {
	flow, store, _, _ := setup(t)
	_, err := store.Add(cart.Item{Name: "Naranjas", Price: 2.5, Unit: cart.UnitKilogram, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, flow.Proceed())

	_, err = store.Add(cart.Item{Name: "Naranjas", Price: 2.5, Unit: cart.UnitKilogram, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 5.0, flow.PaymentTotal())

	receipt, err := flow.SubmitPayment(validCard)
	require.NoError(t, err)
	assert.Equal(t, 5.0, receipt.Total)
}

func TestFlow_ShippingVariant(t *testing.T) {
	flow, store, rec, local := setup(t, WithShipping())
	_, err := store.Add(cart.Item{Name: "Papas", Price: 1.2, Unit: cart.UnitKilogram, Quantity: 2.5})
	require.NoError(t, err)

	require.NoError(t, flow.Proceed())
	assert.Equal(t, EnteringShipping, flow.State())
	assert.Empty(t, rec.events)

	t.Run("missing fields", func(t *testing.T) {
		err := flow.SubmitShipping(Shipping{BuyerName: " ", Address: "", Email: "ana@example.com"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{MsgBuyerName, MsgAddress}, verr.Messages)
		assert.Equal(t, EnteringShipping, flow.State())

		_, ok := LoadDraft(local, anaKey)
		assert.False(t, ok)
	})

	require.NoError(t, flow.SubmitShipping(Shipping{BuyerName: " Ana ", Address: "Calle Real 1", Email: "ana@example.com"}))
	assert.Equal(t, EnteringPayment, flow.State())

	d, ok := LoadDraft(local, anaKey)
	require.True(t, ok)
	assert.Equal(t, "Ana", d.BuyerName)
	assert.Equal(t, fixedNow, d.CreatedAt)
	require.Len(t, d.Cart, 1)
	assert.Equal(t, 3.0, flow.PaymentTotal())

	receipt, err := flow.SubmitPayment(validCard)
	require.NoError(t, err)
	require.NotNil(t, receipt.Buyer)
	assert.Equal(t, "Calle Real 1", receipt.Buyer.Address)

	_, ok = LoadDraft(local, anaKey)
	assert.False(t, ok)
	assert.Equal(t, []string{"navigate:" + PagePayment, "badge:Cart (0)", "navigate:" + PageConfirmation}, rec.events)
}

func TestFlow_ResumePayment(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		flow, store, _, _ := setup(t)
		assert.ErrorIs(t, flow.ResumePayment(), ErrCartEmpty)

		_, err := store.Add(cart.Item{Name: "Mojo", Price: 3.1, Quantity: 1})
		require.NoError(t, err)
		require.NoError(t, flow.ResumePayment())
		assert.Equal(t, EnteringPayment, flow.State())
	})

	t.Run("shipping needs a draft", func(t *testing.T) {
		flow, store, _, local := setup(t, WithShipping())
		_, err := store.Add(cart.Item{Name: "Mojo", Price: 3.1, Quantity: 1})
		require.NoError(t, err)
		assert.ErrorIs(t, flow.ResumePayment(), ErrNoDraft)

		require.NoError(t, saveDraft(local, Draft{Owner: anaKey, BuyerName: "Ana", Address: "Calle Real 1", Email: "ana@example.com"}))
		require.NoError(t, flow.ResumePayment())
	})
}

func TestFlow_InvalidTransitions(t *testing.T) {
	flow, store, _, _ := setup(t)
	_, err := store.Add(cart.Item{Name: "Mojo", Price: 3.1, Quantity: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, flow.SubmitShipping(Shipping{BuyerName: "a", Address: "b", Email: "c"}), ErrInvalidTransition)
	_, err = flow.SubmitPayment(validCard)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, flow.Proceed())
	assert.ErrorIs(t, flow.Proceed(), ErrInvalidTransition)
	assert.ErrorIs(t, flow.SubmitShipping(Shipping{BuyerName: "a", Address: "b", Email: "c"}), ErrInvalidTransition)

	_, err = flow.SubmitPayment(validCard)
	require.NoError(t, err)
	_, err = flow.SubmitPayment(validCard)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

type priceList map[cart.Key]projection.Entry

func (p priceList) Lookup(k cart.Key) (projection.Entry, bool) {
	e, ok := p[k]
	return e, ok
}

func TestFlow_ReviewWithCatalog(t *testing.T) {
	catalog := priceList{cart.KeyOf("Naranjas", cart.UnitKilogram): {Price: 3, ProducerName: "Finca La Vega"}}
	flow, store, _, _ := setup(t, WithCatalog(catalog))
	_, err := store.Add(cart.Item{Name: "Naranjas", Price: 2.5, Unit: cart.UnitKilogram, Quantity: 2})
	require.NoError(t, err)

	view := flow.Review()
	require.Len(t, view.Rows, 1)
	assert.True(t, view.Rows[0].PriceChanged)
	assert.Equal(t, 6.0, flow.PaymentTotal())
}

func TestFlow_ReceiptChargesCatalogPrices(t *testing.T) {
	catalog := priceList{cart.KeyOf("Naranjas", cart.UnitKilogram): {Price: 3}}
	flow, store, _, _ := setup(t, WithCatalog(catalog))
	_, err := store.Add(cart.Item{Name: "Naranjas", Price: 2.5, Unit: cart.UnitKilogram, Quantity: 2})
	require.NoError(t, err)
	_, err = store.Add(cart.Item{Name: "Mojo", Price: 4.5, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, flow.Proceed())
	receipt, err := flow.SubmitPayment(validCard)
	require.NoError(t, err)

	require.Len(t, receipt.Items, 2)
	assert.Equal(t, 3.0, receipt.Items[0].Price)
	assert.Equal(t, 4.5, receipt.Items[1].Price, "unlisted items keep their cart price")
	assert.Equal(t, receipt.Items.Total(), receipt.Total)
	assert.Equal(t, 10.5, receipt.Total)
}

func TestFlow_DraftBelongsToItsUser(t *testing.T) {
	local := storage.NewMemory()
	ident := identity.NewContext(local, nil)
	store := cart.NewStore(ident, local)

	require.NoError(t, ident.Replace(identity.User{ID: "a", Name: "Alicia", Email: "alicia@example.com"}))
	_, err := store.Add(cart.Item{Name: "Naranjas", Price: 2.5, Quantity: 3})
	require.NoError(t, err)
	flow := NewFlow(store, local, WithShipping())
	require.NoError(t, flow.Proceed())
	require.NoError(t, flow.SubmitShipping(Shipping{BuyerName: "Alicia", Address: "Calle A 1", Email: "alicia@example.com"}))
	require.NoError(t, ident.Clear())

	require.NoError(t, ident.Replace(identity.User{ID: "b", Name: "Bruno", Email: "bruno@example.com"}))
	_, err = store.Add(cart.Item{Name: "Papas", Price: 1.2, Quantity: 1})
	require.NoError(t, err)

	flow = NewFlow(store, local, WithShipping())
	assert.ErrorIs(t, flow.ResumePayment(), ErrNoDraft)
	_, err = local.Get(storage.CheckoutKey)
	assert.ErrorIs(t, err, storage.ErrNotFound, "a foreign draft is discarded")

	_, ok := LoadDraft(local, identity.CartKeyFor("alicia@example.com"))
	assert.False(t, ok)
}

func TestFlow_FailedShippingDropsEarlierDraft(t *testing.T) {
	flow, store, _, local := setup(t, WithShipping())
	_, err := store.Add(cart.Item{Name: "Papas", Price: 1.2, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, flow.Proceed())
	require.NoError(t, flow.SubmitShipping(Shipping{BuyerName: "Ana", Address: "Calle Real 1", Email: "ana@example.com"}))

	// a later page load starts the shipping step again and gives up
	again := NewFlow(store, local, WithShipping())
	require.NoError(t, again.Proceed())
	var verr *ValidationError
	require.True(t, errors.As(again.SubmitShipping(Shipping{BuyerName: "Ana"}), &verr))

	assert.ErrorIs(t, NewFlow(store, local, WithShipping()).ResumePayment(), ErrNoDraft)
}
