package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapwallet/internal/keys"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), DefaultFile)
}

func TestLoadOrCreateFirstRun(t *testing.T) {
	path := testPath(t)
	require.False(t, Exists(path))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.True(t, Exists(path))

	require.Equal(t, DefaultDataPath, cfg.DataPath)
	require.Equal(t, DefaultRelayURI, cfg.RelayURI)
	require.Equal(t, DefaultNodeURI, cfg.NodeURI)
	require.NotEmpty(t, cfg.RelayPrivateKey, "first run must generate a keypair")

	// The generated key must derive a stable public identity.
	addr, err := keys.AddressFromSecret(cfg.RelayPrivateKey)
	require.NoError(t, err)
	require.NotEmpty(t, addr)
}

func TestLoadOrCreateDoesNotRegenerateKey(t *testing.T) {
	path := testPath(t)
	first, err := LoadOrCreate(path)
	require.NoError(t, err)

	second, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Equal(t, first.RelayPrivateKey, second.RelayPrivateKey)
}

func TestSaveLoadSaveIdempotent(t *testing.T) {
	path := testPath(t)
	_, err := LoadOrCreate(path)
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Save(path))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(testPath(t))
	require.ErrorIs(t, err, ErrNotFound)
}

// configFlags builds the `config` command's option set, matching the
// interpreter's flag definitions.
func configFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.String("data-path", "", "")
	fs.String("uri", "", "")
	fs.String("private-key", "", "")
	fs.String("node-uri", "", "")
	fs.String("node-secret", "", "")
	fs.Bool("generate-keys", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestApplyFlags(t *testing.T) {
	cfg := defaults()
	cfg.RelayPrivateKey = "aa"

	fs := configFlags(t, "--uri", "https://relay.example.com", "--node-secret", "hunter2")
	require.NoError(t, ApplyFlags(cfg, fs))

	require.Equal(t, "https://relay.example.com", cfg.RelayURI)
	require.Equal(t, "hunter2", cfg.NodeSecret)
	require.Equal(t, DefaultDataPath, cfg.DataPath, "absent options must not overwrite")
	require.Equal(t, "aa", cfg.RelayPrivateKey)
}

func TestApplyFlagsNoOptions(t *testing.T) {
	cfg := defaults()
	cfg.RelayPrivateKey = "aa"
	orig := *cfg

	require.NoError(t, ApplyFlags(cfg, configFlags(t)))
	require.Equal(t, orig, *cfg)
}

func TestApplyFlagsGenerateKeys(t *testing.T) {
	cfg := defaults()
	cfg.RelayPrivateKey = "aa"

	require.NoError(t, ApplyFlags(cfg, configFlags(t, "--generate-keys")))
	require.NotEqual(t, "aa", cfg.RelayPrivateKey)

	_, err := keys.AddressFromSecret(cfg.RelayPrivateKey)
	require.NoError(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := testPath(t)
	_, err := LoadOrCreate(path)
	require.NoError(t, err)

	t.Setenv("LEAPWALLET_NODE_URI", "http://10.0.0.1:13413")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.1:13413", cfg.NodeURI)
}

func TestStringRedactsKey(t *testing.T) {
	cfg := defaults()
	cfg.RelayPrivateKey = "deadbeefdeadbeef"
	cfg.NodeSecret = "hunter2"

	s := cfg.String()
	require.Contains(t, s, "deadbeef...")
	require.NotContains(t, s, "deadbeefdeadbeef")
	require.NotContains(t, s, "hunter2")
}
