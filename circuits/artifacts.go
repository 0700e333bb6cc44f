package circuits

import (
	"context"
	"fmt"

	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/types"
	"github.com/minio/sha256-simd"
)

// Artifact is a cached file addressed by the sha256 hash of its content,
// optionally downloadable from RemoteURL.
type Artifact struct {
	RemoteURL string
	Hash      []byte
	Content   []byte
}

// Load fills the artifact content from the local cache, downloading it
// first when it is not cached and a remote URL is set. Loaded artifacts are
// left untouched.
func (k *Artifact) Load(ctx context.Context) error {
	if len(k.Content) != 0 {
		return nil
	}
	if len(k.Hash) == 0 {
		return fmt.Errorf("artifact hash not provided")
	}
	content, err := fetch(ctx, k.Hash, k.RemoteURL)
	if err != nil {
		return err
	}
	k.Content = content
	return nil
}

// Download stores the remote content of the artifact in the local cache
// after checking its hash.
func (k *Artifact) Download(ctx context.Context) error {
	if k.RemoteURL == "" {
		return fmt.Errorf("artifact %x has no remote url", k.Hash)
	}
	return download(ctx, k.Hash, k.RemoteURL)
}

// StoreArtifact writes content to the local cache under its sha256 hash and
// returns the loaded artifact.
func StoreArtifact(content []byte) (*Artifact, error) {
	hash := sha256.Sum256(content)
	if err := writeCached(hash[:], content); err != nil {
		return nil, err
	}
	log.Debugw("artifact stored", "hash", fmt.Sprintf("%x", hash), "size", len(content))
	return &Artifact{Hash: hash[:], Content: content}, nil
}

// CircuitArtifacts holds the artifacts of the transaction circuit of a layout
// (constraint system, proving and verification key).
type CircuitArtifacts struct {
	circuitDefinition *Artifact
	provingKey        *Artifact
	verifyingKey      *Artifact
}

// NewCircuitArtifacts groups the artifacts of a circuit. Any of them may be
// nil, a verifier only needs the verifying key.
func NewCircuitArtifacts(circuit, provingKey, verifyingKey *Artifact) *CircuitArtifacts {
	return &CircuitArtifacts{
		circuitDefinition: circuit,
		provingKey:        provingKey,
		verifyingKey:      verifyingKey,
	}
}

func (ca *CircuitArtifacts) named() []struct {
	name string
	a    *Artifact
} {
	return []struct {
		name string
		a    *Artifact
	}{
		{"circuit definition", ca.circuitDefinition},
		{"proving key", ca.provingKey},
		{"verifying key", ca.verifyingKey},
	}
}

// LoadAll loads the set artifacts into memory, downloading the ones missing
// from the local cache.
func (ca *CircuitArtifacts) LoadAll(ctx context.Context) error {
	for _, n := range ca.named() {
		if n.a == nil {
			continue
		}
		if err := n.a.Load(ctx); err != nil {
			return fmt.Errorf("error loading %s: %w", n.name, err)
		}
	}
	return nil
}

// DownloadAll refreshes the local cache of the set artifacts from their
// remote URLs.
func (ca *CircuitArtifacts) DownloadAll(ctx context.Context) error {
	for _, n := range ca.named() {
		if n.a == nil {
			continue
		}
		if err := n.a.Download(ctx); err != nil {
			return fmt.Errorf("error downloading %s: %w", n.name, err)
		}
	}
	return nil
}

func content(a *Artifact) types.HexBytes {
	if a == nil {
		return nil
	}
	return a.Content
}

// CircuitDefinition returns the loaded constraint system, or nil.
func (ca *CircuitArtifacts) CircuitDefinition() types.HexBytes { return content(ca.circuitDefinition) }

// ProvingKey returns the loaded proving key, or nil.
func (ca *CircuitArtifacts) ProvingKey() types.HexBytes { return content(ca.provingKey) }

// VerifyingKey returns the loaded verifying key, or nil.
func (ca *CircuitArtifacts) VerifyingKey() types.HexBytes { return content(ca.verifyingKey) }

// Hashes returns the hashes of the circuit definition, the proving key and
// the verifying key, in that order.
func (ca *CircuitArtifacts) Hashes() []types.HexBytes {
	hashes := make([]types.HexBytes, 0, 3)
	for _, n := range ca.named() {
		if n.a == nil {
			hashes = append(hashes, nil)
			continue
		}
		hashes = append(hashes, n.a.Hash)
	}
	return hashes
}
