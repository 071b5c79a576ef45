// Package gate decides whether a caller's license key grants access.
//
// A Gate asks a Validator (normally *licensechain.Client) whether a key is
// valid and caches the answer for a short time, so that a busy endpoint does
// not call the LicenseChain API on every request:
//
//	client, _ := licensechain.New(licensechain.DefaultConfig(apiKey))
//	g := gate.New(client)
//	decision, err := g.Check(ctx, key)
//
// The framework middlewares under middleware/ are thin adapters around Check.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/licensechain/licensechain-go/pkg/licensechain"
	"github.com/licensechain/licensechain-go/pkg/utils"
)

// DefaultTTL is how long a validation outcome is cached.
const DefaultTTL = 5 * time.Minute

// Validator reports whether a license key is valid.
// *licensechain.Client satisfies it.
type Validator interface {
	ValidateLicense(ctx context.Context, key string) (bool, error)
}

// Decision is the outcome of a gate check.
type Decision int

const (
	// DecisionMissing means no license key was presented.
	DecisionMissing Decision = iota
	// DecisionAllowed means the key is valid.
	DecisionAllowed
	// DecisionDenied means the key is not valid, or could not be validated.
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionMissing:
		return "missing"
	case DecisionAllowed:
		return "allowed"
	case DecisionDenied:
		return "denied"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Gate checks license keys against a Validator.
// Fields must not change after the first Check.
type Gate struct {
	Validator Validator
	// Cache holds outcomes; nil disables caching.
	Cache Cache
	// TTL for cached outcomes; zero means DefaultTTL.
	TTL    time.Duration
	Logger licensechain.Logger

	group singleflight.Group
}

// New returns a Gate with an LRU cache and the default TTL.
func New(v Validator) *Gate {
	return &Gate{
		Validator: v,
		Cache:     NewLRUCache(DefaultCacheSize),
		TTL:       DefaultTTL,
		Logger:    &licensechain.NoopLogger{},
	}
}

// Check validates key. A blank key yields DecisionMissing. When the validator
// fails, Check returns DecisionDenied with the error and caches nothing.
// Concurrent checks of the same uncached key share one validator call.
func (g *Gate) Check(ctx context.Context, key string) (Decision, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return DecisionMissing, nil
	}
	if g.Validator == nil {
		return DecisionDenied, errors.New("gate: no validator configured")
	}

	// Keys are cached by digest so raw license keys are not retained.
	cacheKey := utils.SHA256(key)
	if valid, ok := g.cache().Get(cacheKey); ok {
		return decisionFor(valid), nil
	}

	// The shared call outlives any single caller; each caller stops waiting
	// when its own context ends.
	ch := g.group.DoChan(cacheKey, func() (interface{}, error) {
		valid, err := g.Validator.ValidateLicense(context.WithoutCancel(ctx), key)
		if err != nil {
			return false, err
		}
		g.cache().Set(cacheKey, valid, g.ttl())
		return valid, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return DecisionDenied, fmt.Errorf("validate license: %w", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		g.logger().Warn("license validation failed",
			licensechain.Field{Key: "error", Value: res.Err},
			licensechain.Field{Key: "shared", Value: res.Shared},
		)
		return DecisionDenied, fmt.Errorf("validate license: %w", res.Err)
	}

	valid, _ := res.Val.(bool)
	if !valid {
		g.logger().Debug("license key rejected")
	}
	return decisionFor(valid), nil
}

// Forget drops any cached outcome for key, e.g. after a license.revoked webhook.
func (g *Gate) Forget(key string) {
	g.cache().Invalidate(utils.SHA256(strings.TrimSpace(key)))
}

func decisionFor(valid bool) Decision {
	if valid {
		return DecisionAllowed
	}
	return DecisionDenied
}

func (g *Gate) cache() Cache {
	if g.Cache == nil {
		return &NoopCache{}
	}
	return g.Cache
}

func (g *Gate) ttl() time.Duration {
	if g.TTL <= 0 {
		return DefaultTTL
	}
	return g.TTL
}

func (g *Gate) logger() licensechain.Logger {
	if g.Logger == nil {
		return &licensechain.NoopLogger{}
	}
	return g.Logger
}
