package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	return fs
}

func TestLoad_DefaultsWhenNothingSet(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "http://0.0.0.0:9900", cfg.ListenURL)
	assert.Equal(t, "http://0.0.0.0:9920", cfg.P2PURL)
	assert.Equal(t, 2, cfg.WriteConsistencyFactor)
	assert.NotZero(t, cfg.PeerID, "a zero peer id must be replaced with a random one")
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{
		"--listen-url=127.0.0.1:7000",
		"--peer-id=42",
		"--write-consistency-factor=2",
		"--raft-tick-interval=50ms",
	}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.ListenURL)
	assert.EqualValues(t, 42, cfg.PeerID)
	assert.Equal(t, 2, cfg.WriteConsistencyFactor)
	assert.Equal(t, 50*time.Millisecond, cfg.RaftTickInterval)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("SMOLDB_LISTEN_URL", "127.0.0.1:9000")

	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenURL)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SMOLDB_LISTEN_URL", "127.0.0.1:9000")

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--listen-url=127.0.0.1:9100"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.ListenURL)
}

func TestLoad_MissingConfigFileErrors(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--config=" + os.DevNull + "/does-not-exist.yaml"}))

	_, err := Load(fs)
	assert.Error(t, err)
}
