package checkout

import (
	"encoding/json"
	"time"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/storage"
	"github.com/pkg/errors"
)

// Draft is the buyer's contact details plus the cart as it was when they
// were submitted. It lives between the cart page and the payment page and
// belongs to the cart key it was saved under.
type Draft struct {
	Owner     string    `json:"owner"`
	BuyerName string    `json:"buyerName"`
	Address   string    `json:"address"`
	Email     string    `json:"email"`
	Cart      cart.Cart `json:"cart"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoadDraft returns the pending draft of owner, a cart key. Absent or
// unreadable drafts read as none. A draft left by another user is discarded.
func LoadDraft(local storage.Local, owner string) (Draft, bool) {
	raw, err := local.Get(storage.CheckoutKey)
	if err != nil || raw == "" {
		return Draft{}, false
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Draft{}, false
	}
	if owner == "" || d.Owner != owner {
		_ = local.Remove(storage.CheckoutKey)
		return Draft{}, false
	}
	return d, true
}

func saveDraft(local storage.Local, d Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "encode checkout draft")
	}
	return errors.Wrap(local.Set(storage.CheckoutKey, string(raw)), "save checkout draft")
}

// DiscardDraft deletes any pending draft.
func DiscardDraft(local storage.Local) error {
	return errors.Wrap(local.Remove(storage.CheckoutKey), "discard checkout draft")
}
