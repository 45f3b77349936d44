// Package config provides the persisted wallet configuration record.
//
// The record lives in a single YAML file. Loading layers defaults, the
// file, and LEAPWALLET_ environment variables; saving marshals the record
// back so that a load-save round trip with no overrides is a no-op.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapwallet/internal/keys"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "leapwallet.yaml"

// Default values for a fresh record.
const (
	DefaultDataPath = "wallet_data"
	DefaultRelayURI = "https://relay.leapwallet.io"
	DefaultNodeURI  = "http://127.0.0.1:13413"
)

// ErrNotFound indicates an operation required a persisted record that
// does not exist yet.
var ErrNotFound = errors.New("config: no configuration found, run `config` first")

// ErrMissingKeys indicates the relay private key is empty at the point
// of use. Empty keys are legal in storage; only operations that need
// them fail.
var ErrMissingKeys = errors.New("config: relay keys not set, use `config --generate-keys`")

// MissingValueError indicates a required field is empty at the point of use.
type MissingValueError struct {
	Field string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("config: missing value for %s", e.Field)
}

// Config is the persisted settings record.
type Config struct {
	DataPath        string `koanf:"data_path" yaml:"data_path"`
	RelayURI        string `koanf:"relay_uri" yaml:"relay_uri"`
	RelayPrivateKey string `koanf:"relay_private_key" yaml:"relay_private_key"`
	NodeURI         string `koanf:"node_uri" yaml:"node_uri"`
	NodeSecret      string `koanf:"node_secret" yaml:"node_secret,omitempty"`
}

// flagKeys maps the `config` command's flag names onto record fields.
var flagKeys = map[string]string{
	"data-path":   "data_path",
	"uri":         "relay_uri",
	"private-key": "relay_private_key",
	"node-uri":    "node_uri",
	"node-secret": "node_secret",
}

// Exists checks for a persisted record without reading it.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads a persisted record, layering defaults, the file, and
// environment variables (LEAPWALLET_ prefix, highest precedence).
func Load(path string) (*Config, error) {
	if !Exists(path) {
		return nil, ErrNotFound
	}
	return load(path)
}

// LoadOrCreate reads the record if present; otherwise it synthesizes the
// default record with a freshly generated keypair and persists it.
func LoadOrCreate(path string) (*Config, error) {
	if Exists(path) {
		cfg, err := load(path)
		if err != nil {
			return nil, err
		}
		// Write the record straight back. Saving an unmodified record
		// is a no-op in effect, and it keeps the file in the current
		// encoding after upgrades.
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg := defaults()
	secret, _, err := keys.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	cfg.RelayPrivateKey = secret
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_path": DefaultDataPath,
		"relay_uri": DefaultRelayURI,
		"node_uri":  DefaultNodeURI,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	// LEAPWALLET_NODE_URI -> node_uri
	if err := k.Load(env.Provider("LEAPWALLET_", ".", func(s string) string {
		return lowerSnake(s[len("LEAPWALLET_"):])
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Save persists the record as YAML, creating the parent directory if
// needed. The file holds a private key, so it is written 0600.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyFlags layers the explicitly set flags over the record: a flag
// that was not given leaves its field untouched. If --generate-keys was
// given, a new keypair replaces the relay private key. The caller is
// expected to re-persist the record afterwards.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_path":         cfg.DataPath,
		"relay_uri":         cfg.RelayURI,
		"relay_private_key": cfg.RelayPrivateKey,
		"node_uri":          cfg.NodeURI,
		"node_secret":       cfg.NodeSecret,
	}, "."), nil); err != nil {
		return fmt.Errorf("failed to load current record: %w", err)
	}

	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		// Only flags that were explicitly set override the record.
		if !f.Changed {
			return "", nil
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}), nil); err != nil {
		return fmt.Errorf("failed to load flag overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}

	if generate, err := fs.GetBool("generate-keys"); err == nil && generate {
		secret, _, err := keys.GenerateKeypair()
		if err != nil {
			return err
		}
		cfg.RelayPrivateKey = secret
	}
	return nil
}

// String renders the record for the `config` command. The private key is
// redacted to its first eight hex characters.
func (c *Config) String() string {
	key := "(unset)"
	if c.RelayPrivateKey != "" {
		if len(c.RelayPrivateKey) > 8 {
			key = c.RelayPrivateKey[:8] + "..."
		} else {
			key = c.RelayPrivateKey
		}
	}
	secret := "(unset)"
	if c.NodeSecret != "" {
		secret = "(set)"
	}
	return fmt.Sprintf(
		"data path:         %s\nrelay uri:         %s\nrelay private key: %s\nnode uri:          %s\nnode secret:       %s",
		c.DataPath, c.RelayURI, key, c.NodeURI, secret,
	)
}

func defaults() *Config {
	return &Config{
		DataPath: DefaultDataPath,
		RelayURI: DefaultRelayURI,
		NodeURI:  DefaultNodeURI,
	}
}

func lowerSnake(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
