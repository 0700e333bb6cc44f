package txwitness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/ing-bank/zkflow-sub006/circuits"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// Keys bundles the constraint system of a layout with its groth16 keys.
type Keys struct {
	CS constraint.ConstraintSystem
	PK groth16.ProvingKey
	VK groth16.VerifyingKey
}

// Setup compiles the circuit of layout l and runs the groth16 setup on it.
func Setup(l *witness.Layout) (*Keys, error) {
	cs, err := Compile(l)
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("setup error: %w", err)
	}
	log.Infow("circuit setup done", "layout", l.Name, "constraints", cs.GetNbConstraints())
	return &Keys{CS: cs, PK: pk, VK: vk}, nil
}

func serialize(w io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Store writes the keys to the local artifact cache. The returned artifacts
// carry the hashes to load them back with LoadKeys.
func (k *Keys) Store() (*circuits.CircuitArtifacts, error) {
	var stored [3]*circuits.Artifact
	for i, w := range []io.WriterTo{k.CS, k.PK, k.VK} {
		content, err := serialize(w)
		if err != nil {
			return nil, fmt.Errorf("error serializing artifact %d: %w", i, err)
		}
		if stored[i], err = circuits.StoreArtifact(content); err != nil {
			return nil, err
		}
	}
	return circuits.NewCircuitArtifacts(stored[0], stored[1], stored[2]), nil
}

// LoadKeys loads and decodes the circuit artifacts.
func LoadKeys(ctx context.Context, ca *circuits.CircuitArtifacts) (*Keys, error) {
	if err := ca.LoadAll(ctx); err != nil {
		return nil, err
	}
	k := &Keys{
		CS: groth16.NewCS(ecc.BN254),
		PK: groth16.NewProvingKey(ecc.BN254),
		VK: groth16.NewVerifyingKey(ecc.BN254),
	}
	if _, err := k.CS.ReadFrom(bytes.NewReader(ca.CircuitDefinition())); err != nil {
		return nil, fmt.Errorf("error reading constraint system: %w", err)
	}
	if _, err := k.PK.ReadFrom(bytes.NewReader(ca.ProvingKey())); err != nil {
		return nil, fmt.Errorf("error reading proving key: %w", err)
	}
	if _, err := k.VK.ReadFrom(bytes.NewReader(ca.VerifyingKey())); err != nil {
		return nil, fmt.Errorf("error reading verifying key: %w", err)
	}
	return k, nil
}

// ErrUnsupportedDigest is returned when a witness hashed with a digest the
// circuit does not implement is given to the prover.
var ErrUnsupportedDigest = errors.New("unsupported circuit digest")

// Digest returns the digest the circuit recomputes nonces, leaf hashes and
// roots with.
func Digest() digest.Digest { return digest.MiMC() }

// CheckDigest fails unless public inputs computed with the digest named name
// can be proven.
func CheckDigest(name string) error {
	if name != Digest().Name() {
		return fmt.Errorf("%w: %s, circuits hash with %s", ErrUnsupportedDigest, name, Digest().Name())
	}
	return nil
}

// Prove generates the proof that w hashes with d to the transaction id and
// UTXO hashes of its public input, which is returned with the proof.
func (k *Keys) Prove(d digest.Digest, w *witness.Witness) (groth16.Proof, *merkle.PublicInput, error) {
	if err := CheckDigest(d.Name()); err != nil {
		return nil, nil, err
	}
	pub, err := merkle.NewPublicInput(d, w)
	if err != nil {
		return nil, nil, err
	}
	assignment, err := Assign(w, pub)
	if err != nil {
		return nil, nil, err
	}
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("full witness error: %w", err)
	}
	proof, err := groth16.Prove(k.CS, k.PK, fullWitness)
	if err != nil {
		return nil, nil, fmt.Errorf("proof error: %w", err)
	}
	return proof, pub, nil
}

// VerifyProof checks proof against the public input only.
func VerifyProof(vk groth16.VerifyingKey, proof groth16.Proof, pub *merkle.PublicInput) error {
	assignment := &Circuit{
		TransactionID:   bigInt(pub.TransactionID),
		InputHashes:     assignHashes(bytesList(pub.InputHashes)),
		ReferenceHashes: assignHashes(bytesList(pub.ReferenceHashes)),
	}
	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness error: %w", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return fmt.Errorf("verify error: %w", err)
	}
	return nil
}
