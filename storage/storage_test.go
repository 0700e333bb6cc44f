package storage

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/ing-bank/zkflow-sub006/circuits/testutil"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/ing-bank/zkflow-sub006/witness"
	"go.vocdoni.io/dvote/db/metadb"
)

func newTestStorage(c *qt.C) *Storage {
	stg, err := New(metadb.NewTest(c))
	c.Assert(err, qt.IsNil)
	return stg
}

func TestWitness(t *testing.T) {
	c := qt.New(t)
	stg := newTestStorage(c)

	w, err := testutil.Witness("move", testutil.MoveTransaction(10))
	c.Assert(err, qt.IsNil)
	d := digest.SHA256()
	txID, err := merkle.TransactionID(d, w)
	c.Assert(err, qt.IsNil)

	_, err = stg.Witness(txID)
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	c.Assert(stg.SetWitness(txID, "move", d.Name(), w), qt.IsNil)
	record, err := stg.Witness(txID)
	c.Assert(err, qt.IsNil)
	c.Assert(record.Layout, qt.Equals, "move")
	c.Assert(record.Digest, qt.Equals, digest.NameSHA256)
	stored, err := record.Witness()
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Components(witness.Inputs), qt.DeepEquals, w.Components(witness.Inputs))
	c.Assert(stored.InputUTXOs(), qt.DeepEquals, w.InputUTXOs())

	// the stored witness hashes to the same transaction id
	storedID, err := merkle.TransactionID(d, stored)
	c.Assert(err, qt.IsNil)
	c.Assert(storedID, qt.DeepEquals, txID)

	ids, err := stg.ListWitnesses()
	c.Assert(err, qt.IsNil)
	c.Assert(ids, qt.HasLen, 1)
	c.Assert([]byte(ids[0]), qt.DeepEquals, txID)
}

func TestPublicInput(t *testing.T) {
	c := qt.New(t)
	stg := newTestStorage(c)

	w, err := testutil.Witness("move", testutil.MoveTransaction(10))
	c.Assert(err, qt.IsNil)
	pub, err := merkle.NewPublicInput(digest.SHA256(), w)
	c.Assert(err, qt.IsNil)

	_, err = stg.PublicInput(pub.TransactionID)
	c.Assert(err, qt.ErrorIs, ErrNotFound)
	c.Assert(stg.SetPublicInput(pub.TransactionID, pub), qt.IsNil)
	stored, err := stg.PublicInput(pub.TransactionID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.DeepEquals, pub)
}

func TestSource(t *testing.T) {
	c := qt.New(t)
	stg := newTestStorage(c)

	_, err := stg.Source("move")
	c.Assert(err, qt.ErrorIs, ErrNotFound)
	src := []byte("package cash\n")
	c.Assert(stg.SetSource("move", src), qt.IsNil)
	stored, err := stg.Source("move")
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.DeepEquals, src)
}

func TestCommitOutputs(t *testing.T) {
	c := qt.New(t)
	stg := newTestStorage(c)

	emptyRoot, err := stg.OutputsRoot()
	c.Assert(err, qt.IsNil)

	txID := bytes.Repeat([]byte{1}, 32)
	leaves := [][]byte{bytes.Repeat([]byte{2}, 32), bytes.Repeat([]byte{3}, 32)}
	c.Assert(stg.CommitOutputs(txID, leaves), qt.IsNil)

	h, err := stg.CommittedOutput(txID, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(h, qt.DeepEquals, leaves[1])
	_, err = stg.CommittedOutput(txID, 2)
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	root, err := stg.OutputsRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(root, qt.Not(qt.DeepEquals), emptyRoot)

	c.Assert(stg.CommitOutputs(txID, leaves[:1]), qt.ErrorIs, ErrAlreadyCommitted)
}
