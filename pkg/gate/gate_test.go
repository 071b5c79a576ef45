package gate_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensechain/licensechain-go/pkg/gate"
	"github.com/licensechain/licensechain-go/pkg/licensechain"
)

type stubValidator struct {
	calls int32
	valid map[string]bool
	err   error
	block chan struct{}
}

func (s *stubValidator) ValidateLicense(ctx context.Context, key string) (bool, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if s.err != nil {
		return false, s.err
	}
	return s.valid[key], nil
}

func TestGate_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v := &stubValidator{}
		g := gate.New(v)

		for _, key := range []string{"", "   "} {
			d, err := g.Check(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, gate.DecisionMissing, d)
		}
		assert.Zero(t, atomic.LoadInt32(&v.calls))
	})

	t.Run("allowed and denied are cached", func(t *testing.T) {
		v := &stubValidator{valid: map[string]bool{"good": true}}
		g := gate.New(v)

		for i := 0; i < 3; i++ {
			d, err := g.Check(ctx, "good")
			require.NoError(t, err)
			assert.Equal(t, gate.DecisionAllowed, d)

			d, err = g.Check(ctx, "bad")
			require.NoError(t, err)
			assert.Equal(t, gate.DecisionDenied, d)
		}
		assert.Equal(t, int32(2), atomic.LoadInt32(&v.calls))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		v := &stubValidator{err: &licensechain.Error{Kind: licensechain.KindNetwork, Message: "connection refused"}}
		g := gate.New(v)

		d, err := g.Check(ctx, "key")
		assert.Equal(t, gate.DecisionDenied, d)
		assert.ErrorIs(t, err, licensechain.ErrNetwork)

		v.err = nil
		v.valid = map[string]bool{"key": true}
		d, err = g.Check(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, gate.DecisionAllowed, d)
		assert.Equal(t, int32(2), atomic.LoadInt32(&v.calls))
	})

	t.Run("nil cache validates every time", func(t *testing.T) {
		v := &stubValidator{valid: map[string]bool{"good": true}}
		g := &gate.Gate{Validator: v}

		for i := 0; i < 3; i++ {
			d, err := g.Check(ctx, "good")
			require.NoError(t, err)
			assert.Equal(t, gate.DecisionAllowed, d)
		}
		assert.Equal(t, int32(3), atomic.LoadInt32(&v.calls))
	})

	t.Run("no validator", func(t *testing.T) {
		d, err := (&gate.Gate{}).Check(ctx, "key")
		assert.Equal(t, gate.DecisionDenied, d)
		assert.Error(t, err)
	})

	t.Run("forget drops cached outcome", func(t *testing.T) {
		v := &stubValidator{valid: map[string]bool{"key": true}}
		g := gate.New(v)

		_, _ = g.Check(ctx, "key")
		v.valid["key"] = false
		g.Forget("key")

		d, err := g.Check(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, gate.DecisionDenied, d)
	})
}

func TestGate_ConcurrentChecksShareOneCall(t *testing.T) {
	v := &stubValidator{valid: map[string]bool{"key": true}, block: make(chan struct{})}
	g := gate.New(v)

	var wg sync.WaitGroup
	decisions := make([]gate.Decision, 8)
	for i := range decisions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decisions[i], _ = g.Check(context.Background(), "key")
		}(i)
	}

	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(v.block)
	wg.Wait()

	for _, d := range decisions {
		assert.Equal(t, gate.DecisionAllowed, d)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&v.calls))
}

func TestGate_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	v := &stubValidator{valid: map[string]bool{"key": true}, block: make(chan struct{})}
	g := gate.New(v)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := g.Check(first, "key")
		firstErr <- err
	}()
	// Let the first caller start the shared call.
	time.Sleep(20 * time.Millisecond)

	second := make(chan gate.Decision, 1)
	go func() {
		d, err := g.Check(context.Background(), "key")
		assert.NoError(t, err)
		second <- d
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(v.block)
	assert.Equal(t, gate.DecisionAllowed, <-second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&v.calls))

	d, err := g.Check(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, gate.DecisionAllowed, d, "outcome of the shared call is cached")
	assert.Equal(t, int32(1), atomic.LoadInt32(&v.calls))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "missing", gate.DecisionMissing.String())
	assert.Equal(t, "allowed", gate.DecisionAllowed.String())
	assert.Equal(t, "denied", gate.DecisionDenied.String())
	assert.Equal(t, "decision(9)", gate.Decision(9).String())
}

func TestClientSatisfiesValidator(t *testing.T) {
	var _ gate.Validator = (*licensechain.Client)(nil)
}
