package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lightseeker/internal/db"
	"github.com/banshee-data/lightseeker/internal/explore"
	"github.com/banshee-data/lightseeker/internal/monitoring"
	"github.com/banshee-data/lightseeker/internal/serialmux"
	"github.com/banshee-data/lightseeker/internal/testutil"
)

func TestLoopbackAddr(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: ":6060", want: "localhost:6060"},
		{in: "localhost:6060", want: "localhost:6060"},
		{in: "127.0.0.1:0", want: "127.0.0.1:0"},
		{in: "[::1]:6060", want: "[::1]:6060"},
		{in: "0.0.0.0:6060", wantErr: true},
		{in: "192.168.1.20:6060", wantErr: true},
		{in: "robot.local:6060", wantErr: true},
		{in: "6060", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := loopbackAddr(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// nopPort is a serial port that never produces a line.
type nopPort struct {
	mu      sync.Mutex
	written strings.Builder
}

func (p *nopPort) Read([]byte) (int, error) { return 0, io.EOF }
func (p *nopPort) Close() error             { return nil }

func (p *nopPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

func (p *nopPort) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

func TestDebugServer_ServesAdminRoutes(t *testing.T) {
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	defer func() { monitoring.Logf = original }()

	debug, err := startDebugServer("127.0.0.1:0")
	require.NoError(t, err)
	defer debug.shutdown()

	store, err := db.OpenDB(testutil.TempDBPath(t))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.AttachAdminRoutes(debug.mux))

	port := &nopPort{}
	mux := serialmux.NewSerialMux(port)
	mux.AttachAdminRoutes(debug.mux)

	base := "http://" + debug.addr()

	resp, err := http.Get(base + "/debug/")
	require.NoError(t, err)
	index, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(index), "tailsql/")
	assert.Contains(t, string(index), "send-command")

	resp, err = http.PostForm(base+"/debug/send-command-api", map[string][]string{"command": {"STOP"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "STOP\n", port.String())
}

func TestRun_ReplayWithDebugServer(t *testing.T) {
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	defer func() { monitoring.Logf = original }()

	replay := writeReplay(t, []explore.Sample{{Time: 0}, {Time: 0.064}})
	res, err := run(context.Background(), options{
		replayPath: replay,
		dbPath:     testutil.TempDBPath(t),
		debugAddr:  "127.0.0.1:0",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ticks)
	assert.NotEmpty(t, res.runID)
}
