package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensechain/licensechain-go/pkg/webhook"
)

var _ webhook.ReplayGuard = (*Storage)(nil)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestStorage_Remember(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	s := New(WithClock(clk.now))
	ctx := context.Background()

	fresh, err := s.Remember(ctx, "sig-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = s.Remember(ctx, "sig-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh, "second delivery within ttl is a replay")

	fresh, err = s.Remember(ctx, "sig-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh, "keys are independent")

	clk.t = clk.t.Add(time.Minute)
	fresh, err = s.Remember(ctx, "sig-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh, "key is forgotten once ttl has elapsed")
}

func TestStorage_Forget(t *testing.T) {
	s := New()
	ctx := context.Background()

	fresh, err := s.Remember(ctx, "sig-1", time.Minute)
	require.NoError(t, err)
	require.True(t, fresh)

	require.NoError(t, s.Forget(ctx, "sig-1"))
	assert.Equal(t, 0, s.Len())

	fresh, err = s.Remember(ctx, "sig-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh, "released key is accepted again")

	assert.NoError(t, s.Forget(ctx, "never-seen"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Forget(cancelled, "sig-1"), context.Canceled)
	assert.Equal(t, 1, s.Len())
}

func TestStorage_CleanupSweepsExpiredKeys(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	s := New(WithClock(clk.now), WithCleanupInterval(5))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := s.Remember(ctx, fmt.Sprintf("old-%d", i), time.Second)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, s.Len())

	clk.t = clk.t.Add(time.Hour)
	_, err := s.Remember(ctx, "new", time.Second) // fifth call sweeps first
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestStorage_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Remember(ctx, "sig", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Len())
}

func TestStorage_ConcurrentRememberAdmitsOnce(t *testing.T) {
	s := New()
	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fresh, _ := s.Remember(context.Background(), "same", time.Minute); fresh {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), admitted)
}

func TestStorage_GuardsVerifier(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	calls := 0
	v, err := webhook.NewVerifier("secret",
		webhook.WithClock(func() time.Time { return now }),
		webhook.WithReplayGuard(New()),
		webhook.WithHandler(webhook.EventLicenseCreated, func(context.Context, webhook.Event) error {
			calls++
			return nil
		}),
	)
	require.NoError(t, err)

	event := map[string]any{
		"type":      webhook.EventLicenseCreated,
		"timestamp": now.Format(time.RFC3339),
		"signature": webhook.Sign("{}", "secret"),
	}
	require.NoError(t, v.ProcessEvent(context.Background(), event))
	require.NoError(t, v.ProcessEvent(context.Background(), event))
	assert.Equal(t, 1, calls)
}
