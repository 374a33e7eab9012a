package catalog

import (
	"context"

	"github.com/ecoisla/market/cart"
	"github.com/ecoisla/market/projection"
	"go.uber.org/zap"
)

// Index resolves cart line items against a catalog snapshot. A nil Index is
// valid and resolves nothing.
type Index map[cart.Key]Product

func NewIndex(products []Product) Index {
	idx := make(Index, len(products))
	for _, p := range products {
		k := cart.KeyOf(p.Name, p.Unit)
		// products arrive newest first; keep the newest listing per key
		if _, dup := idx[k]; !dup {
			idx[k] = p
		}
	}
	return idx
}

func (idx Index) Lookup(k cart.Key) (projection.Entry, bool) {
	p, ok := idx[k]
	if !ok {
		return projection.Entry{}, false
	}
	return projection.Entry{
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		ProducerName: p.ProducerName,
		Origin:       p.Origin,
	}, true
}

// Catalog returns idx as a projection.Catalog, or nil when there is no
// snapshot. Passing a nil map typed as the interface would mark every row
// unlisted.
func (idx Index) Catalog() projection.Catalog {
	if idx == nil {
		return nil
	}
	return idx
}

// Fetch takes one catalog snapshot. Failure is logged and yields a nil
// index; it is never retried.
func Fetch(ctx context.Context, c *Client, logger *zap.Logger) Index {
	products, err := c.Products(ctx, "")
	if err != nil {
		logger.Warn("catalog unavailable", zap.Error(err))
		return nil
	}
	return NewIndex(products)
}
