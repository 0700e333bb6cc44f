// Package config loads the zkflow configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/schema"
	"go.vocdoni.io/dvote/db"
	"gopkg.in/yaml.v3"
)

// EnvConfig names the configuration file when no path is given.
const EnvConfig = "ZKFLOW_CONFIG"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Log       LogConfig                  `yaml:"log"`
	API       APIConfig                  `yaml:"api"`
	Storage   StorageConfig              `yaml:"storage"`
	Witness   WitnessConfig              `yaml:"witness"`
	Layouts   string                     `yaml:"layouts"`
	Artifacts map[string]ArtifactsConfig `yaml:"artifacts"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
}

type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Datadir string `yaml:"datadir"`
	Backend string `yaml:"backend"`
}

// WitnessConfig sets the default unit mode of layouts that do not name one
// and the digest hashing new witnesses.
type WitnessConfig struct {
	Mode   string `yaml:"mode"`
	Digest string `yaml:"digest"`
}

// Default returns the configuration used for every value the file omits.
func Default() *Config {
	datadir := ".zkflow"
	if home, err := os.UserHomeDir(); err == nil {
		datadir = filepath.Join(home, ".zkflow")
	}
	return &Config{
		Log:     LogConfig{Level: log.LogLevelInfo, Output: "stderr"},
		API:     APIConfig{Host: "0.0.0.0", Port: 9090},
		Storage: StorageConfig{Datadir: datadir, Backend: db.TypePebble},
		Witness: WitnessConfig{Mode: schema.ByteMode.String(), Digest: digest.NameBlake2b256},
	}
}

// Load reads the YAML file at path over the defaults. An empty path falls
// back to the ZKFLOW_CONFIG environment variable, and to the defaults alone
// when that is unset too. Relative layout paths are resolved against the
// directory of the file.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return conf, conf.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if conf.Layouts != "" && !filepath.IsAbs(conf.Layouts) {
		conf.Layouts = filepath.Join(filepath.Dir(path), conf.Layouts)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks the values the services cannot start without.
func (c *Config) Validate() error {
	if _, err := digest.ByName(c.Witness.Digest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := schema.ParseMode(c.Witness.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("%w: api port %d out of range", ErrInvalidConfig, c.API.Port)
	}
	if !slices.Contains([]string{db.TypePebble, db.TypeLevelDB}, c.Storage.Backend) {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if !slices.Contains([]string{log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError}, c.Log.Level) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	for layout, a := range c.Artifacts {
		if err := a.validate(); err != nil {
			return fmt.Errorf("%w: artifacts of %s: %v", ErrInvalidConfig, layout, err)
		}
	}
	return nil
}

// Mode returns the parsed default unit mode.
func (c *Config) Mode() schema.Mode {
	m, err := schema.ParseMode(c.Witness.Mode)
	if err != nil {
		return schema.ByteMode
	}
	return m
}

// Digest returns the digest named by the witness section.
func (c *Config) Digest() (digest.Digest, error) {
	return digest.ByName(c.Witness.Digest)
}
