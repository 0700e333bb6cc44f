package config

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/schema"
)

const testConfig = `
log:
  level: debug
api:
  port: 8080
witness:
  mode: bit
  digest: mimc
layouts: layouts.yaml
artifacts:
  move:
    circuit:
      hash: 0a0b
    provingKey:
      url: https://example.org/move.pk
      hash: 0c0d
    verifyingKey:
      hash: 0e0f
`

func writeConfig(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "zkflow.yaml")
	c.Assert(os.WriteFile(path, []byte(content), 0o600), qt.IsNil)
	return path
}

func TestDefault(t *testing.T) {
	c := qt.New(t)
	c.Setenv(EnvConfig, "")
	conf, err := Load("")
	c.Assert(err, qt.IsNil)
	c.Assert(conf.API.Port, qt.Equals, 9090)
	c.Assert(conf.Mode(), qt.Equals, schema.ByteMode)
	d, err := conf.Digest()
	c.Assert(err, qt.IsNil)
	c.Assert(d.Name(), qt.Equals, digest.NameBlake2b256)
}

func TestLoad(t *testing.T) {
	c := qt.New(t)
	path := writeConfig(c, testConfig)
	conf, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(conf.Log.Level, qt.Equals, "debug")
	c.Assert(conf.Log.Output, qt.Equals, "stderr")
	c.Assert(conf.API.Host, qt.Equals, "0.0.0.0")
	c.Assert(conf.API.Port, qt.Equals, 8080)
	c.Assert(conf.Mode(), qt.Equals, schema.BitMode)
	c.Assert(conf.Layouts, qt.Equals, filepath.Join(filepath.Dir(path), "layouts.yaml"))

	ca, err := conf.Artifacts["move"].CircuitArtifacts()
	c.Assert(err, qt.IsNil)
	c.Assert(ca.ProvingKey(), qt.IsNil)

	c.Setenv(EnvConfig, path)
	fromEnv, err := Load("")
	c.Assert(err, qt.IsNil)
	c.Assert(fromEnv, qt.DeepEquals, conf)
}

func TestValidate(t *testing.T) {
	c := qt.New(t)
	for name, mutate := range map[string]func(*Config){
		"digest":   func(conf *Config) { conf.Witness.Digest = "md5" },
		"mode":     func(conf *Config) { conf.Witness.Mode = "nibble" },
		"port":     func(conf *Config) { conf.API.Port = 70000 },
		"backend":  func(conf *Config) { conf.Storage.Backend = "bolt" },
		"level":    func(conf *Config) { conf.Log.Level = "trace" },
		"artifact": func(conf *Config) { conf.Artifacts = map[string]ArtifactsConfig{"move": {}} },
	} {
		conf := Default()
		mutate(conf)
		c.Assert(conf.Validate(), qt.ErrorIs, ErrInvalidConfig, qt.Commentf(name))
	}
	c.Assert(Default().Validate(), qt.IsNil)

	_, err := Load(writeConfig(c, "witness: {digest: md5}\n"))
	c.Assert(err, qt.ErrorIs, ErrInvalidConfig)
	_, err = Load(writeConfig(c, "api: [\n"))
	c.Assert(err, qt.ErrorMatches, "could not parse config.*")
}
