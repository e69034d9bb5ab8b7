package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lightseeker/internal/db"
	"github.com/banshee-data/lightseeker/internal/explore"
	"github.com/banshee-data/lightseeker/internal/monitoring"
	"github.com/banshee-data/lightseeker/internal/testutil"
)

func seedRun(t *testing.T) (*db.DB, string) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })

	store, err := db.OpenDB(testutil.TempDBPath(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rec, err := store.StartRun("")
	require.NoError(t, err)
	lights := []float64{120, 480, 300}
	var recs []explore.Record
	for i, light := range lights {
		r := explore.Record{Index: i + 1, Light: light, Position: r3.Vec{X: float64(i) * 0.3, Y: 0.2 - float64(i)*0.1}}
		rec.DeadEndRecorded(r)
		recs = append(recs, r)
	}
	rec.TargetSelected(recs[1])
	rec.TargetReached(recs[1], r3.Vec{X: 0.31, Y: 0.1})
	return store, rec.ID()
}

func TestLoadRun(t *testing.T) {
	store, id := seedRun(t)

	rp, err := loadRun(store, "")
	require.NoError(t, err)
	assert.Equal(t, id, rp.runID)
	assert.Len(t, rp.deadEnds, 3)
	assert.True(t, rp.hasTarget)
	assert.Equal(t, 2, rp.target.Index)
	assert.True(t, rp.arrived)

	_, err = loadRun(store, "no-such-run")
	assert.Error(t, err)
}

func TestLightRangeAndRadius(t *testing.T) {
	lo, hi := lightRange([]explore.Record{{Light: 120}, {Light: 480}, {Light: 300}})
	assert.Equal(t, 120.0, lo)
	assert.Equal(t, 480.0, hi)

	assert.InDelta(t, 3.0, float64(glyphRadius(lo, lo, hi)), 1e-9)
	assert.InDelta(t, 12.0, float64(glyphRadius(hi, lo, hi)), 1e-9)
	assert.InDelta(t, 6.0, float64(glyphRadius(5, 5, 5)), 1e-9)
}

func TestRenderPNG(t *testing.T) {
	store, _ := seedRun(t)
	rp, err := loadRun(store, "")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "plots", "run.png")
	require.NoError(t, renderPNG(rp, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderHTML(t *testing.T) {
	store, id := seedRun(t)
	rp, err := loadRun(store, id)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderHTML(rp, &buf))
	html := buf.String()
	assert.Contains(t, html, "Dead ends by light intensity")
	assert.Contains(t, html, "target (dead end 2)")
	assert.Contains(t, html, id)
}
