package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()

	errService := errors.New("service error")
	ok := func() error { return nil }
	fail := func() error { return errService }

	t.Run("stays closed under threshold", func(t *testing.T) {
		t.Parallel()
		clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		cb := newCircuitBreaker(10, time.Second, 0.3, 2, clk.now)

		for i := 0; i < 8; i++ {
			require.NoError(t, cb.Call(ok))
		}
		require.ErrorIs(t, cb.Call(fail), errService)
		require.ErrorIs(t, cb.Call(fail), errService)
		require.Equal(t, Closed, cb.State())
	})

	t.Run("opens and rejects", func(t *testing.T) {
		t.Parallel()
		clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		cb := newCircuitBreaker(10, time.Second, 0.3, 2, clk.now)

		for i := 0; i < 3; i++ {
			require.ErrorIs(t, cb.Call(fail), errService)
		}
		require.Equal(t, Open, cb.State())

		called := false
		err := cb.Call(func() error { called = true; return nil })
		require.ErrorIs(t, err, ErrOpenCB)
		require.False(t, called)
	})

	t.Run("half-open recovers", func(t *testing.T) {
		t.Parallel()
		clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		cb := newCircuitBreaker(10, time.Second, 0.3, 2, clk.now)
		for i := 0; i < 3; i++ {
			_ = cb.Call(fail)
		}
		clk.advance(2 * time.Second)

		require.NoError(t, cb.Call(ok))
		require.Equal(t, HalfOpen, cb.State())
		require.NoError(t, cb.Call(ok))
		require.Equal(t, Closed, cb.State())
	})

	t.Run("half-open failure reopens", func(t *testing.T) {
		t.Parallel()
		clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		cb := newCircuitBreaker(10, time.Second, 0.3, 2, clk.now)
		for i := 0; i < 3; i++ {
			_ = cb.Call(fail)
		}
		clk.advance(2 * time.Second)

		require.ErrorIs(t, cb.Call(fail), errService)
		require.Equal(t, Open, cb.State())
		require.ErrorIs(t, cb.Call(ok), ErrOpenCB)
	})
}
