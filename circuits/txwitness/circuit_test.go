package txwitness

import (
	"context"
	"math/big"
	"os"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/ing-bank/zkflow-sub006/circuits"
	"github.com/ing-bank/zkflow-sub006/circuits/testutil"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/ing-bank/zkflow-sub006/witness"
)

func moveAssignment(c *qt.C) (*Circuit, *Circuit) {
	w, err := testutil.Witness("move", testutil.MoveTransaction(10))
	c.Assert(err, qt.IsNil)
	pub, err := merkle.NewPublicInput(digest.MiMC(), w)
	c.Assert(err, qt.IsNil)
	assignment, err := Assign(w, pub)
	c.Assert(err, qt.IsNil)
	return NewPlaceholder(w.Layout()), assignment
}

func TestCircuitSolved(t *testing.T) {
	c := qt.New(t)
	placeholder, assignment := moveAssignment(c)
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNil)
}

func TestCircuitTamperedTransactionID(t *testing.T) {
	c := qt.New(t)
	placeholder, assignment := moveAssignment(c)
	assignment.TransactionID = big.NewInt(1)
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

func TestCircuitTamperedComponent(t *testing.T) {
	c := qt.New(t)
	placeholder, assignment := moveAssignment(c)
	assignment.Groups[witness.Commands][0][3] = 2
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

func TestCircuitTamperedUTXO(t *testing.T) {
	c := qt.New(t)
	placeholder, assignment := moveAssignment(c)
	assignment.ReferenceUTXOs[0][4] = 6
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

func TestPlaceholderShape(t *testing.T) {
	c := qt.New(t)
	w, err := testutil.Witness("move", testutil.MoveTransaction(10))
	c.Assert(err, qt.IsNil)
	fromLayout := NewPlaceholder(w.Layout())
	fromWitness := Placeholder(w)
	for g := range fromLayout.Groups {
		c.Assert(fromWitness.Groups[g], qt.HasLen, len(fromLayout.Groups[g]))
		for i := range fromLayout.Groups[g] {
			c.Assert(fromWitness.Groups[g][i], qt.HasLen, len(fromLayout.Groups[g][i]))
		}
	}
	c.Assert(fromWitness.InputUTXOs, qt.HasLen, 1)
	c.Assert(fromWitness.ReferenceNonces[0], qt.HasLen, digest.Size)
	c.Assert(fromLayout.Groups[witness.Attachments], qt.HasLen, 0)

	_, err = Assign(w, &merkle.PublicInput{})
	c.Assert(err, qt.IsNotNil)
}

func TestProveAndVerify(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" || os.Getenv("RUN_CIRCUIT_TESTS") == "false" {
		t.Skip("skipping circuit tests...")
	}
	c := qt.New(t)
	circuits.BaseDir = t.TempDir()
	w, err := testutil.Witness("issue", testutil.IssueTransaction(5))
	c.Assert(err, qt.IsNil)

	keys, err := Setup(w.Layout())
	c.Assert(err, qt.IsNil)
	stored, err := keys.Store()
	c.Assert(err, qt.IsNil)
	loaded, err := LoadKeys(context.Background(), stored)
	c.Assert(err, qt.IsNil)

	proof, pub, err := loaded.Prove(digest.MiMC(), w)
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyProof(loaded.VK, proof, pub), qt.IsNil)

	other, err := testutil.Witness("issue", testutil.IssueTransaction(6))
	c.Assert(err, qt.IsNil)
	otherPub, err := merkle.NewPublicInput(digest.MiMC(), other)
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyProof(loaded.VK, proof, otherPub), qt.IsNotNil)
}

func TestProveRejectsDigest(t *testing.T) {
	c := qt.New(t)
	w, err := testutil.Witness("issue", testutil.IssueTransaction(5))
	c.Assert(err, qt.IsNil)

	c.Assert(CheckDigest(digest.NameMiMC), qt.IsNil)
	keys := &Keys{}
	for _, name := range []string{digest.NamePoseidon, digest.NameSHA256, digest.NameBlake2b256} {
		c.Assert(CheckDigest(name), qt.ErrorIs, ErrUnsupportedDigest)
		d, err := digest.ByName(name)
		c.Assert(err, qt.IsNil)
		_, _, err = keys.Prove(d, w)
		c.Assert(err, qt.ErrorMatches, "unsupported circuit digest: "+name+", circuits hash with mimc")
	}
}
