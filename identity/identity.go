// Package identity resolves the current storefront user from the local
// profile and derives the namespace under which that user's cart is stored.
package identity

import (
	"encoding/json"

	"github.com/ecoisla/market/storage"
	"go.uber.org/zap"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProducer Role = "producer"
)

// User is the locally cached copy of the backend user record.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Token string `json:"token,omitempty"`
}

func (u User) IsProducer() bool { return u.Role == RoleProducer }

// Context reads and replaces the current user of one profile.
type Context struct {
	local  storage.Local
	logger *zap.Logger
}

func NewContext(local storage.Local, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{local: local, logger: logger}
}

// CurrentUser returns the cached user. Absent or malformed data reads as no
// user.
func (c *Context) CurrentUser() (User, bool) {
	raw, err := c.local.Get(storage.UserKey)
	if err != nil || raw == "" {
		return User{}, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		c.logger.Debug("discarding malformed user record", zap.Error(err))
		return User{}, false
	}
	return u, true
}

// CartKey returns the storage key of the current user's cart.
func (c *Context) CartKey() (string, bool) {
	u, ok := c.CurrentUser()
	if !ok || u.Email == "" {
		return "", false
	}
	return CartKeyFor(u.Email), true
}

// CartKeyFor is the cart namespace of an email.
func CartKeyFor(email string) string {
	return storage.CartPrefix + email
}

// Replace caches u as the current user after a login or registration.
// Carts stored under other emails are left in place.
func (c *Context) Replace(u User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.local.Set(storage.UserKey, string(raw))
}

// Clear forgets the current user (logout).
func (c *Context) Clear() error {
	return c.local.Remove(storage.UserKey)
}
