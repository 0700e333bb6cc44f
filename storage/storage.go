// storage package persists the artifacts produced for transaction witnesses
// in a prefixed key-value store. The following prefixes are used:
//   - 'w/' for witnesses, keyed by transaction id
//   - 'p/' for public inputs, keyed by transaction id
//   - 's/' for generated circuit sources, keyed by layout name
//   - 'o/' for the committed outputs tree
package storage

import (
	"errors"
	"fmt"
	"sync"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// Prefixes for the keys in the database.
	witnessPrefix = []byte("w/")
	publicPrefix  = []byte("p/")
	sourcePrefix  = []byte("s/")
	outputsPrefix = []byte("o/")
)

// ErrNotFound is returned when the requested artifact is not stored.
var ErrNotFound = errors.New("not found")

// Storage wraps the database holding witnesses, public inputs, generated
// sources and the committed outputs tree.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
	outputs    *outputsTree
}

// New creates a new Storage instance.
func New(db db.Database) (*Storage, error) {
	outputs, err := newOutputsTree(prefixeddb.NewPrefixedDatabase(db, outputsPrefix))
	if err != nil {
		return nil, fmt.Errorf("could not open outputs tree: %w", err)
	}
	return &Storage{db: db, outputs: outputs}, nil
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}

func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, data); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// getArtifact decodes the artifact stored under key into out. It returns
// ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rd.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return decodeArtifact(data, out)
}

func (s *Storage) listArtifacts(prefix []byte) ([][]byte, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	var keys [][]byte
	if err := rd.Iterate(nil, func(k, _ []byte) bool {
		keys = append(keys, append([]byte(nil), k...))
		return true
	}); err != nil {
		return nil, err
	}
	return keys, nil
}
