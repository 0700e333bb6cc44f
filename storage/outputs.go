package storage

import (
	"errors"
	"fmt"

	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/types"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
)

const (
	outputsMaxLevels = 160
	outputsKeyLen    = (outputsMaxLevels + 7) / 8
)

// ErrAlreadyCommitted is returned when an output of a transaction is
// committed twice.
var ErrAlreadyCommitted = errors.New("output already committed")

// outputsTree is a sparse Merkle tree mapping (transaction id, output index)
// to the leaf hash of the output. A later transaction consuming or
// referencing the output proves its UTXO hash against it.
type outputsTree struct {
	tree *arbo.Tree
}

func newOutputsTree(database db.Database) (*outputsTree, error) {
	tree, err := arbo.NewTree(arbo.Config{
		Database:     database,
		MaxLevels:    outputsMaxLevels,
		HashFunction: arbo.HashFunctionSha256,
	})
	if err != nil {
		return nil, err
	}
	return &outputsTree{tree: tree}, nil
}

// CommitOutputs records the leaf hashes of the outputs of transaction txID.
func (s *Storage) CommitOutputs(txID []byte, leafHashes [][]byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	for i, h := range leafHashes {
		if err := s.outputs.tree.Add(outputKey(txID, i), h); err != nil {
			if errors.Is(err, arbo.ErrKeyAlreadyExists) {
				return fmt.Errorf("%w: %x[%d]", ErrAlreadyCommitted, txID, i)
			}
			return fmt.Errorf("could not commit output %d: %w", i, err)
		}
	}
	log.Debugw("outputs committed", "txid", types.HexBytes(txID).String(), "count", len(leafHashes))
	return nil
}

// CommittedOutput returns the leaf hash committed for output index of
// transaction txID or ErrNotFound.
func (s *Storage) CommittedOutput(txID []byte, index int) ([]byte, error) {
	_, value, err := s.outputs.tree.Get(outputKey(txID, index))
	if err != nil {
		if errors.Is(err, arbo.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// OutputsRoot returns the root of the committed outputs tree.
func (s *Storage) OutputsRoot() ([]byte, error) {
	return s.outputs.tree.Root()
}
