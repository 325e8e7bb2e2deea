package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ProductInfo is the authoritative catalog view of one product at merge
// time. Exists=false means the catalog has no such product; InStock folds
// active state and stock together, since an inactive product cannot be sold
// either way.
type ProductInfo struct {
	ID         uuid.UUID
	Name       string
	Image      string
	Category   string
	PriceCents int64
	InStock    bool
	Exists     bool
}

// Gateway resolves products against catalog truth. The merge engine never
// trusts client-supplied prices; everything flows through here.
type Gateway interface {
	Lookup(ctx context.Context, productID uuid.UUID) (ProductInfo, error)
}

const lookupParallelism = 8

// LookupAll fetches catalog truth for the given product ids, issuing
// lookups concurrently since items are independent. Lookup failures are
// aggregated rather than aborting on the first, so a partial catalog outage
// reports every affected product.
func LookupAll(ctx context.Context, gw Gateway, ids []uuid.UUID) (map[uuid.UUID]ProductInfo, error) {
	results := make(map[uuid.UUID]ProductInfo, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupParallelism)

	for _, id := range ids {
		g.Go(func() error {
			info, err := gw.Lookup(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			results[id] = info
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if combined := multierr.Combine(errs...); combined != nil {
		return nil, combined
	}
	return results, nil
}
