package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/pagemap-sessions/internal/adapters/repo/memory"
	tomlrepo "github.com/bnema/pagemap-sessions/internal/adapters/repo/toml"
	"github.com/bnema/pagemap-sessions/internal/config"
	"github.com/bnema/pagemap-sessions/internal/idle"
	"github.com/bnema/pagemap-sessions/internal/version"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestStatusJSONOutput(t *testing.T) {
	srv := newIdleStatsServer(t, idle.Stats{
		Tracked:       2,
		OldestIdleFor: 90 * time.Second,
		IdleTimeout:   10 * time.Minute,
		SweepPeriod:   time.Minute,
		Passes:        7,
		Evicted:       3,
	})

	stdout, _, err := executeCLI(t, t.TempDir(), "status", "--addr", srv.URL, "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))

	var stats idle.Stats
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 2, stats.Tracked)
	assert.Equal(t, 7, stats.Passes)
	assert.Equal(t, 90*time.Second, stats.OldestIdleFor)
}

func TestStatusRendersStats(t *testing.T) {
	srv := newIdleStatsServer(t, idle.Stats{
		Tracked:       1,
		OldestIdleFor: 5 * time.Minute,
		IdleTimeout:   10 * time.Minute,
		SweepPeriod:   time.Minute,
		Evicted:       4,
	})

	stdout, _, err := executeCLI(t, t.TempDir(), "status", "--addr", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Idle Page Maps")
	assert.Contains(t, stdout, "tracked: 1")
	assert.Contains(t, stdout, "5m0s of 10m0s")
	assert.Contains(t, stdout, "4 evicted")
}

func TestStatusReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"RATE_LIMITED","message":"rate limit exceeded, please slow down"}}`))
	}))
	t.Cleanup(srv.Close)

	_, _, err := executeCLI(t, t.TempDir(), "status", "--addr", srv.URL, "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429: RATE_LIMITED")
}

func TestStatusReportsUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, _, err := executeCLI(t, t.TempDir(), "status", "--addr", addr, "--json")
	require.Error(t, err)
	assert.ErrorIs(t, err, errServerUnavailable)
}

func TestServeStopsWhenContextEnds(t *testing.T) {
	home := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, stderr, err := executeCLIContext(t, ctx, home, "serve", "--addr", "127.0.0.1:0", "--store", "memory", "--sweep-period", "10ms")
	require.NoError(t, err)
	assert.Contains(t, stderr, "pms starting")
	assert.Contains(t, stderr, "store=memory")
	assert.Contains(t, stderr, "shutting down")
}

func TestServeFailsWhenAddressIsTaken(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = taken.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, stderr, err := executeCLIContext(t, ctx, t.TempDir(), "serve", "--addr", taken.Addr().String(), "--store", "memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on "+taken.Addr().String())
	assert.NotContains(t, stderr, "pms starting")
}

func TestServeRejectsInvalidFlags(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "serve", "--store", "redis")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestServeReadsConfigFileFromHome(t *testing.T) {
	home := t.TempDir()
	configDir := filepath.Join(home, ".pms")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("[idle]\ntimeout = \"-1s\"\n"), 0o600))

	_, _, err := executeCLI(t, home, "serve", "--store", "memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idle.timeout must be positive")
}

func TestWireAppSelectsPageStore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	v := viper.New()
	v.Set(config.KeyStorePath, filepath.Join(home, "pages"))
	cfg, err := config.Load(v)
	require.NoError(t, err)

	app, err := wireApp(v, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &tomlrepo.PageRepository{}, app.pages)

	cfg.Store.Kind = config.StoreKindMemory
	app, err = wireApp(v, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.PageRepository{}, app.pages)

	cfg.Store.Kind = "redis"
	_, err = wireApp(v, cfg, nil)
	assert.Error(t, err)
}

func TestServerURL(t *testing.T) {
	tests := map[string]string{
		"127.0.0.1:8080":         "http://127.0.0.1:8080",
		" localhost:9000/ ":      "http://localhost:9000",
		"https://pms.internal/":  "https://pms.internal",
		"http://127.0.0.1:12345": "http://127.0.0.1:12345",
	}

	for in, want := range tests {
		assert.Equal(t, want, serverURL(in), in)
	}
}

func newIdleStatsServer(t *testing.T, stats idle.Stats) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/idle" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIContext(t, context.Background(), home, args...)
}

func executeCLIContext(t *testing.T, ctx context.Context, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}
