package circuits

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/frontend"
	"github.com/ing-bank/zkflow-sub006/log"
)

// FrontendError function is an in-circuit function to print an error message
// and an error trace, making the circuit fail.
func FrontendError(api frontend.API, msg string, trace error) {
	err := fmt.Errorf("%s", msg)
	if trace != nil {
		err = fmt.Errorf("%w: %v", err, trace)
	}
	api.Println(err.Error())
	api.AssertIsEqual(1, 0)
}

// WriteFile writes obj, a constraint system, key or proof, to path.
func WriteFile(path string, obj io.WriterTo) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := obj.WriteTo(fd)
	if err != nil {
		fd.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := fd.Close(); err != nil {
		return err
	}
	log.Infow("circuit object written", "path", path, "size", n)
	return nil
}
