package circuits

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

type rawObject []byte

func (o rawObject) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(o)
	return int64(n), err
}

func TestWriteFile(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "keys", "move.vk")
	obj := rawObject(bytes.Repeat([]byte{7}, 64))
	c.Assert(WriteFile(path, obj), qt.IsNil)
	got, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []byte(obj))
}
