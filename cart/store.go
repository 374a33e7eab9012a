package cart

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ecoisla/market/identity"
	"github.com/ecoisla/market/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrNotAuthenticated aborts an add attempted without a current user.
	// Its message is the prompt shown to the user.
	ErrNotAuthenticated = errors.New("you need to log in or register before adding products to the cart")
	ErrItemNotFound     = errors.New("cart item not found")
)

// CountMode selects what Count sums.
type CountMode int

const (
	// CountQuantities sums item quantities.
	CountQuantities CountMode = iota
	// CountLines counts distinct line items.
	CountLines
)

// Item is what a caller asks to add. Zero or invalid fields are normalized.
type Item struct {
	Name     string
	Price    float64
	Unit     Unit
	Quantity float64
	ImageURL string
}

// Store loads, mutates and saves the current user's cart. It holds no cart
// state of its own: every operation is a read-modify-write of the profile.
type Store struct {
	ident  *identity.Context
	local  storage.Local
	logger *zap.Logger
	now    func() time.Time
	mode   CountMode
}

type Option func(*Store)

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.logger = l } }

func WithCountMode(m CountMode) Option { return func(s *Store) { s.mode = m } }

func NewStore(ident *identity.Context, local storage.Local, opts ...Option) *Store {
	s := &Store{
		ident:  ident,
		local:  local,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity returns the identity context the store is scoped by.
func (s *Store) Identity() *identity.Context { return s.ident }

// Load returns the stored cart, or an empty cart when there is no user, no
// stored data, or the data does not parse.
func (s *Store) Load() Cart {
	key, ok := s.ident.CartKey()
	if !ok {
		return Cart{}
	}
	raw, err := s.local.Get(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("cart read failed", zap.String("key", key), zap.Error(err))
		}
		return Cart{}
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.logger.Warn("discarding unreadable cart", zap.String("key", key), zap.Error(err))
		return Cart{}
	}
	if c == nil {
		return Cart{}
	}
	for i := range c {
		c[i] = repair(c[i])
	}
	return c
}

// repair restores the invariants of an item read back from storage.
func repair(li LineItem) LineItem {
	li.Unit, _ = ParseUnit(string(li.Unit))
	if !validQuantity(li.Quantity) {
		li.Quantity = li.Unit.DefaultQuantity()
	}
	if li.Price < 0 || math.IsNaN(li.Price) || math.IsInf(li.Price, 0) {
		li.Price = 0
	}
	return li
}

func validQuantity(q float64) bool {
	return q > 0 && !math.IsInf(q, 0) && !math.IsNaN(q)
}

// Save replaces the stored cart. Without a current user it does nothing.
func (s *Store) Save(c Cart) error {
	key, ok := s.ident.CartKey()
	if !ok {
		return nil
	}
	if c == nil {
		c = Cart{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.local.Set(key, string(raw)); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

// Add merges item into the cart and returns the resulting line item.
func (s *Store) Add(item Item) (LineItem, error) {
	if _, ok := s.ident.CartKey(); !ok {
		return LineItem{}, ErrNotAuthenticated
	}

	item = normalize(item)
	c := s.Load()

	var added LineItem
	if i := c.Find(KeyOf(item.Name, item.Unit)); i >= 0 {
		c[i].Quantity += item.Quantity
		if c[i].ImageURL == "" && item.ImageURL != "" {
			c[i].ImageURL = item.ImageURL
		}
		added = c[i]
	} else {
		added = LineItem{
			Name:     item.Name,
			Price:    item.Price,
			Unit:     item.Unit,
			Quantity: item.Quantity,
			ImageURL: item.ImageURL,
			AddedAt:  s.now().UTC(),
		}
		c = append(c, added)
	}

	if err := s.Save(c); err != nil {
		return LineItem{}, err
	}
	s.logger.Debug("cart item added",
		zap.String("name", added.Name),
		zap.String("unit", string(added.Unit)),
		zap.Float64("quantity", added.Quantity))
	return added, nil
}

func normalize(item Item) Item {
	item.Unit, _ = ParseUnit(string(item.Unit))
	if !validQuantity(item.Quantity) {
		item.Quantity = item.Unit.DefaultQuantity()
	}
	if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
		item.Price = 0
	}
	return item
}

// RemoveAt deletes the line item at position i.
func (s *Store) RemoveAt(i int) (LineItem, error) {
	c := s.Load()
	if i < 0 || i >= len(c) {
		return LineItem{}, ErrItemNotFound
	}
	removed := c[i]
	c = append(c[:i], c[i+1:]...)
	if err := s.Save(c); err != nil {
		return LineItem{}, err
	}
	return removed, nil
}

// Clear stores an empty cart for the current user.
func (s *Store) Clear() error {
	return s.Save(Cart{})
}

// Count is the header badge figure. It is 0 without a current user.
func (s *Store) Count() float64 {
	if _, ok := s.ident.CartKey(); !ok {
		return 0
	}
	c := s.Load()
	if s.mode == CountLines {
		return float64(len(c))
	}
	return c.Quantity()
}

// BadgeText formats a count for the header badge.
func BadgeText(count float64) string {
	return fmt.Sprintf("Cart (%s)", FormatQuantity(count))
}

// FormatQuantity prints whole numbers without decimals and fractional ones
// with at most three.
func FormatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', 0, 64)
	}
	return strconv.FormatFloat(math.Round(q*1000)/1000, 'f', -1, 64)
}
