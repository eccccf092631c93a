package countdown_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/countdown"
)

type recorder struct {
	mu      sync.Mutex
	ticks   []int
	gens    []uint64
	expires []uint64
}

func (r *recorder) onTick(gen uint64, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, remaining)
	r.gens = append(r.gens, gen)
}

func (r *recorder) onExpire(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expires = append(r.expires, gen)
}

func (r *recorder) snapshot() (ticks []int, expires []uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.ticks...), append([]uint64(nil), r.expires...)
}

func TestCountsDownAndExpiresOnce(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	timer := countdown.New(clk, rec.onTick, rec.onExpire)

	gen := timer.Start(3)
	require.Equal(t, uint64(1), gen)

	for i := 0; i < 3; i++ {
		clk.BlockUntil(1)
		clk.Advance(time.Second)
		wantTicks := i + 1
		require.Eventually(t, func() bool {
			ticks, _ := rec.snapshot()
			return len(ticks) == wantTicks
		}, time.Second, time.Millisecond)
	}

	require.Eventually(t, func() bool {
		_, expires := rec.snapshot()
		return len(expires) == 1
	}, time.Second, time.Millisecond)

	ticks, expires := rec.snapshot()
	require.Equal(t, []int{2, 1, 0}, ticks)
	require.Equal(t, []uint64{gen}, expires)

	// The run stopped itself at zero; more time must not re-fire it.
	clk.Advance(5 * time.Second)
	ticks, expires = rec.snapshot()
	require.Equal(t, 3, len(ticks))
	require.Equal(t, 1, len(expires))
}

func TestCancelPreventsExpiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	timer := countdown.New(clk, rec.onTick, rec.onExpire)

	timer.Start(2)
	clk.BlockUntil(1)
	timer.Cancel()

	clk.Advance(5 * time.Second)
	time.Sleep(10 * time.Millisecond)
	_, expires := rec.snapshot()
	require.Empty(t, expires)

	// Cancel is safe to repeat while idle.
	timer.Cancel()
}

func TestStartReplacesRunningCountdown(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	timer := countdown.New(clk, rec.onTick, rec.onExpire)

	first := timer.Start(10)
	clk.BlockUntil(1)
	second := timer.Start(1)
	require.Greater(t, second, first)

	// Advance inside the poll: the replacement ticker may still be
	// arming when the old one is torn down.
	require.Eventually(t, func() bool {
		clk.Advance(time.Second)
		_, expires := rec.snapshot()
		return len(expires) == 1
	}, time.Second, 5*time.Millisecond)

	_, expires := rec.snapshot()
	require.Equal(t, []uint64{second}, expires)
}

func TestZeroSecondsExpiresImmediately(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	timer := countdown.New(clk, rec.onTick, rec.onExpire)

	gen := timer.Start(0)
	require.Eventually(t, func() bool {
		_, expires := rec.snapshot()
		return len(expires) == 1 && expires[0] == gen
	}, time.Second, time.Millisecond)

	ticks, _ := rec.snapshot()
	require.Empty(t, ticks)
}
