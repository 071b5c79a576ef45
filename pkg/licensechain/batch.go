package licensechain

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is used by ValidateLicenses when concurrency is not positive.
const DefaultBatchConcurrency = 4

// LicenseValidation is the outcome of validating one key.
type LicenseValidation struct {
	Key   string
	Valid bool
}

// ValidateLicenses validates keys with at most concurrency calls in flight.
// Results are in the order of keys. The first failure cancels the remaining
// calls and is returned.
func (c *Client) ValidateLicenses(ctx context.Context, keys []string, concurrency int) ([]LicenseValidation, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]LicenseValidation, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, key := range keys {
		g.Go(func() error {
			valid, err := c.ValidateLicense(gctx, key)
			if err != nil {
				return err
			}
			results[i] = LicenseValidation{Key: key, Valid: valid}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
