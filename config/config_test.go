package config_test

import (
	"testing"
	"time"

	"github.com/karlpauls/ksah/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresPort(t *testing.T) {
	_, err := config.Load(nil)
	require.Error(t, err)
}

func TestLoad_OddArgCountRejected(t *testing.T) {
	_, err := config.Load([]string{"port"})
	require.Error(t, err)
}

func TestLoad_AppliesDefaultsAndOverrides(t *testing.T) {
	cfg, err := config.Load([]string{"port", "8080", "root", "/srv/www", "write", "true"})
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Socket.Port)
	require.Equal(t, "0.0.0.0", cfg.Socket.Address)
	require.Equal(t, "/srv/www", cfg.Static.Root)
	require.True(t, cfg.Static.Write)
	require.True(t, cfg.Static.List)
	require.Equal(t, 2*time.Second, cfg.Timeouts.IO)
}

func TestLoad_BufferSizeIsDistinctFromRcvbuf(t *testing.T) {
	cfg, err := config.Load([]string{"port", "8080", "rcvbuf", "8192", "buffersize", "4096"})
	require.NoError(t, err)

	require.Equal(t, 8192, cfg.Socket.RecvBuffer)
	require.Equal(t, 4096, cfg.Pools.FileBufferSize)
}

func TestLoad_BufferSizeBelowThresholdIgnored(t *testing.T) {
	cfg, err := config.Load([]string{"port", "8080", "buffersize", "512"})
	require.NoError(t, err)

	require.Equal(t, 65536, cfg.Pools.FileBufferSize)
}

func TestLoad_UnknownNameIgnored(t *testing.T) {
	cfg, err := config.Load([]string{"port", "8080", "bogus", "whatever"})
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Socket.Port)
}

func TestLoad_EnvFallback(t *testing.T) {
	t.Setenv("KSAH_ROOT", "/from/env")

	cfg, err := config.Load([]string{"port", "8080"})
	require.NoError(t, err)
	require.Equal(t, "/from/env", cfg.Static.Root)
}

func TestLoad_CLIOverridesEnv(t *testing.T) {
	t.Setenv("KSAH_ROOT", "/from/env")

	cfg, err := config.Load([]string{"port", "8080", "root", "/from/cli"})
	require.NoError(t, err)
	require.Equal(t, "/from/cli", cfg.Static.Root)
}

func TestParseTimeout(t *testing.T) {
	d, err := config.ParseTimeout("5:SECONDS")
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, d)

	d, err = config.ParseTimeout("250:ms")
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, d)

	_, err = config.ParseTimeout("garbage")
	require.Error(t, err)
}

func TestParseCharset(t *testing.T) {
	got, err := config.ParseCharset("UTF-8")
	require.NoError(t, err)
	require.Equal(t, "utf-8", got)

	_, err = config.ParseCharset("klingon")
	require.Error(t, err)
}

func TestLoad_BacklogGuardsNonPositive(t *testing.T) {
	cfg, err := config.Load([]string{"port", "8080", "backlog", "-1"})
	require.NoError(t, err)
	require.Equal(t, 1024, cfg.Socket.Backlog)
}
