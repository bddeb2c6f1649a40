package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/countme"
	"github.com/ygrebnov/countme/internal/config"
	"github.com/ygrebnov/countme/promcount"
)

func TestMain(m *testing.M) {
	orig := log.Logger
	log.Logger = zerolog.New(io.Discard)
	code := m.Run()
	log.Logger = orig
	os.Exit(code)
}

func installSeams(t *testing.T, cfg *config.Config) {
	t.Helper()
	origLoad := loadConfig
	origSignal := newSignalContext
	t.Cleanup(func() {
		loadConfig = origLoad
		newSignalContext = origSignal
	})
	loadConfig = func() (*config.Config, error) {
		c := *cfg
		return &c, nil
	}
}

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:     "error",
		LogFormat:    "json",
		Workers:      2,
		Iterations:   50,
		ReportFormat: config.ReportTable,
		ReportOnExit: true,
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd_PrintsVersionInfo(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "countme dev")
	if countme.Enabled {
		assert.Contains(t, out, "counting: enabled")
	} else {
		assert.Contains(t, out, "counting: disabled")
	}
}

func TestHelpFlag_PrintsUsage(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage")
	assert.Contains(t, out, "bench")
}

func TestBench_PrintsReport(t *testing.T) {
	installSeams(t, testConfig())

	out, err := execute(t, "bench")
	require.NoError(t, err)
	if !countme.Enabled {
		assert.Equal(t, "counts are disabled\n", out)
		return
	}
	assert.Contains(t, out, "github.com/ygrebnov/countme/internal/workload.Foo")
	assert.Contains(t, out, "github.com/ygrebnov/countme/internal/workload.Bar")
	assert.Contains(t, out, "github.com/ygrebnov/countme/internal/workload/deeply/nested/module.Quux")
	assert.Contains(t, out, "max_live")
}

func TestBenchSingle_ReportOnExitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.ReportOnExit = false
	installSeams(t, cfg)

	out, err := execute(t, "bench-single")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBench_LogReport(t *testing.T) {
	cfg := testConfig()
	cfg.ReportFormat = config.ReportLog
	cfg.LogLevel = "info"
	installSeams(t, cfg)

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"bench-single"})
	require.NoError(t, cmd.Execute())
	t.Cleanup(func() { log.Logger = zerolog.New(io.Discard) })

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `"message":"instance counts"`)
	assert.Contains(t, errOut.String(), `"type":"total"`)
}

func TestConfigError_IsWrapped(t *testing.T) {
	installSeams(t, testConfig())
	loadConfig = func() (*config.Config, error) { return nil, assert.AnError }

	_, err := execute(t, "bench")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestServe_RequiresMetricsAddr(t *testing.T) {
	installSeams(t, testConfig())

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COUNTME_METRICS_ADDR")
}

func TestServe_StopsOnSignalContext(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsAddr = "127.0.0.1:0"
	installSeams(t, cfg)
	newSignalContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(parent, 100*time.Millisecond)
	}

	done := make(chan error, 1)
	go func() {
		_, err := execute(t, "serve")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestMux_Endpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	promcount.RegisterWith(reg, countme.SourceFunc(countme.GetAll))
	srv := httptest.NewServer(newMux(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/counts")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, countme.GetAll().String(), string(body))
}
