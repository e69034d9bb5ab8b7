package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	wall bool
	t    float64
}

func observeAll(d *DeadEndDetector, obs []observation) []float64 {
	var fired []float64
	for _, o := range obs {
		if d.Observe(o.wall, o.t) {
			fired = append(fired, o.t)
		}
	}
	return fired
}

func TestDeadEndDetector_Sequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		obs       []observation
		wantFired []float64
	}{
		{
			name:      "single contact never fires",
			obs:       []observation{{true, 0}, {false, 1}, {false, 5}},
			wantFired: nil,
		},
		{
			name:      "two contacts beyond debounce gap fire",
			obs:       []observation{{true, 0}, {false, 1}, {true, 2}},
			wantFired: []float64{2},
		},
		{
			name:      "contact inside debounce gap is not counted",
			obs:       []observation{{true, 0}, {true, 1.0}, {true, 1.7}},
			wantFired: nil,
		},
		{
			name:      "gap of exactly debounce is not enough",
			obs:       []observation{{true, 0}, {true, 1.7}, {true, 1.8}},
			wantFired: []float64{1.8},
		},
		{
			name:      "second contact at exactly the stale window still fires",
			obs:       []observation{{true, 0}, {true, 10.0}},
			wantFired: []float64{10.0},
		},
		{
			name:      "second contact past the stale window opens a new window",
			obs:       []observation{{true, 0}, {true, 10.5}, {true, 12.5}},
			wantFired: []float64{12.5},
		},
		{
			name:      "fire resets so the next contact starts fresh",
			obs:       []observation{{true, 0}, {true, 2}, {true, 2.064}, {true, 4}},
			wantFired: []float64{2, 4},
		},
		{
			name:      "no contact at all",
			obs:       []observation{{false, 0}, {false, 20}, {false, 40}},
			wantFired: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := NewDeadEndDetector(DefaultDebounceGap, DefaultStaleWindow)
			assert.Equal(t, tt.wantFired, observeAll(d, tt.obs))
		})
	}
}

func TestDeadEndDetector_SustainedContactPulses(t *testing.T) {
	t.Parallel()
	d := NewDeadEndDetector(DefaultDebounceGap, DefaultStaleWindow)

	// Wall held in front for 4 seconds at the 64 ms tick rate.
	var fired []int
	for k := 1; k <= 62; k++ {
		if d.Observe(true, float64(k)*0.064) {
			fired = append(fired, k)
		}
	}

	// First counted contact at tick 1 (0.064s); the first tick more than
	// 1.7s later is tick 28 (1.792s). The fire resets the window, so tick
	// 29 (1.856s) counts again and tick 56 (3.584s) fires the second time.
	assert.Equal(t, []int{28, 56}, fired)
}

func TestDeadEndDetector_StaleWindowExpires(t *testing.T) {
	t.Parallel()
	d := NewDeadEndDetector(DefaultDebounceGap, DefaultStaleWindow)

	require.False(t, d.Observe(true, 0))
	require.Equal(t, 1, d.Pending())

	for k := 1; k <= 160; k++ {
		require.False(t, d.Observe(false, float64(k)*0.064))
	}
	assert.Equal(t, 0, d.Pending(), "pending detection should expire after the stale window")

	// A later contact starts a new window rather than completing the old one.
	assert.False(t, d.Observe(true, 10.3))
	assert.Equal(t, 1, d.Pending())
	assert.InDelta(t, 10.3, d.WindowStart(), 1e-12)
}

// A contact on the first tick past the stale window opens a new window
// rather than pairing with the expired one, even though it is well beyond
// the debounce gap.
func TestDeadEndDetector_ContactJustPastStaleWindow(t *testing.T) {
	t.Parallel()
	d := NewDeadEndDetector(DefaultDebounceGap, DefaultStaleWindow)

	require.False(t, d.Observe(true, 0))
	for k := 1; k <= 156; k++ {
		require.False(t, d.Observe(false, float64(k)*0.064))
	}
	require.Equal(t, 1, d.Pending(), "9.984s is still inside the window")

	fired := d.Observe(true, 157*0.064) // 10.048s
	assert.False(t, fired)
	assert.Equal(t, 1, d.Pending())
	assert.InDelta(t, 10.048, d.WindowStart(), 1e-9)
}

func TestDeadEndDetector_Reset(t *testing.T) {
	t.Parallel()
	d := NewDeadEndDetector(DefaultDebounceGap, DefaultStaleWindow)
	d.Observe(true, 3)
	require.Equal(t, 1, d.Pending())

	d.Reset()
	assert.Equal(t, 0, d.Pending())
	assert.False(t, d.Observe(true, 3.1), "first contact after reset only arms the detector")
}

// Checks the firing rule against a direct statement of it: a fire happens
// exactly when a counted detection lands more than the debounce gap after
// the previous counted one and no more than the stale window after it.
func TestDeadEndDetector_MatchesCountingRule(t *testing.T) {
	t.Parallel()

	// Deterministic pseudo-random contact pattern over 60 seconds.
	seed := uint32(12345)
	next := func() uint32 {
		seed = seed*1664525 + 1013904223
		return seed >> 16
	}

	d := NewDeadEndDetector(DefaultDebounceGap, DefaultStaleWindow)
	var (
		armed     bool
		lastCount float64
	)
	for k := 0; k < 940; k++ {
		now := float64(k) * 0.064
		wall := next()%7 == 0

		if armed && now-lastCount > DefaultStaleWindow {
			armed = false
		}
		want := false
		if wall {
			switch {
			case !armed:
				armed, lastCount = true, now
			case now-lastCount > DefaultDebounceGap:
				want, armed = true, false
			}
		}

		got := d.Observe(wall, now)
		require.Equalf(t, want, got, "tick %d (t=%.3f, wall=%t)", k, now, wall)
	}
}
