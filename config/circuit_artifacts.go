package config

import (
	"encoding/hex"
	"fmt"

	"github.com/ing-bank/zkflow-sub006/circuits"
	"github.com/ing-bank/zkflow-sub006/util"
)

// ArtifactConfig points to one circuit artifact. The URL is optional when
// the artifact is already in the local cache.
type ArtifactConfig struct {
	URL  string `yaml:"url"`
	Hash string `yaml:"hash"`
}

// ArtifactsConfig lists the artifacts of a layout circuit, as printed by the
// setup command.
type ArtifactsConfig struct {
	Circuit      ArtifactConfig `yaml:"circuit"`
	ProvingKey   ArtifactConfig `yaml:"provingKey"`
	VerifyingKey ArtifactConfig `yaml:"verifyingKey"`
}

func (a ArtifactConfig) artifact() (*circuits.Artifact, error) {
	hash, err := hex.DecodeString(util.TrimHex(a.Hash))
	if err != nil {
		return nil, fmt.Errorf("invalid hash %q: %w", a.Hash, err)
	}
	if len(hash) == 0 {
		return nil, fmt.Errorf("missing hash")
	}
	return &circuits.Artifact{RemoteURL: a.URL, Hash: hash}, nil
}

func (a ArtifactsConfig) validate() error {
	_, err := a.CircuitArtifacts()
	return err
}

// CircuitArtifacts returns the artifacts ready to be loaded.
func (a ArtifactsConfig) CircuitArtifacts() (*circuits.CircuitArtifacts, error) {
	circuit, err := a.Circuit.artifact()
	if err != nil {
		return nil, fmt.Errorf("circuit: %w", err)
	}
	pk, err := a.ProvingKey.artifact()
	if err != nil {
		return nil, fmt.Errorf("proving key: %w", err)
	}
	vk, err := a.VerifyingKey.artifact()
	if err != nil {
		return nil, fmt.Errorf("verifying key: %w", err)
	}
	return circuits.NewCircuitArtifacts(circuit, pk, vk), nil
}
