package robot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lightseeker/internal/explore"
	"github.com/banshee-data/lightseeker/internal/timeutil"
)

func TestLoadReplay(t *testing.T) {
	input := strings.Join([]string{
		"# recorded 2026-03-14",
		sampleLine,
		"",
		`{"t":1.6,"ps":[0,0,0,0,0,0,0,0],"ls":[7],"gps":[1,2,3]}`,
	}, "\n")

	r, err := LoadReplay(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	_, err = r.Sample()
	assert.Error(t, err, "Sample before first Step")

	ctx := context.Background()
	require.NoError(t, r.Step(ctx))
	s, err := r.Sample()
	require.NoError(t, err)
	assert.Equal(t, 612.5, s.Light)

	require.NoError(t, r.Step(ctx))
	s, err = r.Sample()
	require.NoError(t, err)
	assert.Equal(t, 7.0, s.Light)

	assert.ErrorIs(t, r.Step(ctx), explore.ErrStopped)
	assert.Equal(t, 2, r.Position())
}

func TestLoadReplay_ReportsLine(t *testing.T) {
	input := sampleLine + "\n\nnot a frame\n"
	_, err := LoadReplay(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestReplay_RecordsCommands(t *testing.T) {
	r := NewReplay(nil)
	require.NoError(t, r.SetVelocity(1, 2))
	require.NoError(t, r.SetVelocity(0, 0))

	cmds := r.Commands()
	assert.Equal(t, []explore.Speeds{{Left: 1, Right: 2}, {}}, cmds)

	cmds[0].Left = 99
	assert.Equal(t, 1.0, r.Commands()[0].Left, "Commands must return a copy")
}

func TestReplay_StepHonoursContext(t *testing.T) {
	r := NewReplay([]explore.Sample{{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Step(ctx), context.Canceled)
	assert.Equal(t, 0, r.Position())
}

func TestPacer_WaitsForTick(t *testing.T) {
	logs := muteLogs(t)
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	r := NewReplay([]explore.Sample{{Time: 0}, {Time: 0.064}, {Time: 0.128}})
	p := NewPacer(r, clock, 64*time.Millisecond)
	defer p.Stop()

	// No tick yet: Step blocks until the context gives up.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Step(ctx), context.DeadlineExceeded)
	assert.Equal(t, 0, r.Position())

	clock.Advance(64 * time.Millisecond)
	require.NoError(t, p.Step(context.Background()))
	assert.Equal(t, 1, r.Position())
	assert.Equal(t, 0, p.Overruns())

	// The controller took longer than a period before stepping again.
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, p.Step(context.Background()))
	assert.Equal(t, 2, r.Position())
	assert.Equal(t, 1, p.Overruns())
	assert.Len(t, *logs, 1)
}

func TestPacer_RunsController(t *testing.T) {
	muteLogs(t)
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	r := NewReplay([]explore.Sample{{Time: 0}, {Time: 0.064}})
	p := NewPacer(r, clock, 64*time.Millisecond)
	defer p.Stop()

	ctrl, err := explore.NewController(explore.DefaultConfig(), nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(context.Background(), Assemble(p, r, r))
	}()

	// Keep the clock moving until the replay runs dry.
	deadline := time.After(2 * time.Second)
	for finished := false; !finished; {
		select {
		case err := <-done:
			require.NoError(t, err)
			finished = true
		case <-deadline:
			t.Fatal("Run did not finish")
		case <-time.After(2 * time.Millisecond):
			clock.Advance(64 * time.Millisecond)
		}
	}
	assert.Equal(t, 2, ctrl.Ticks())
	assert.Len(t, r.Commands(), 2)
}
