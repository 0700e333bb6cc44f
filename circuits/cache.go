package circuits

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/minio/sha256-simd"
	"golang.org/x/sync/singleflight"
)

// CheckHashes is a flag that determines if the hashes of the artifacts should
// be checked when they are loaded or downloaded. It can be set to false by
// setting the ZKFLOW_CHECK_HASHES environment variable to false or 0.
var CheckHashes = true

// BaseDir is the path where the artifact cache is expected to be found. If the
// artifacts are not found there, they will be downloaded and stored. It can be
// set to a different path if needed from other packages. Defaults to the
// env var ZKFLOW_ARTIFACTS_DIR or the user cache directory.
var BaseDir string

// progressInterval is the period of the download progress logs.
var progressInterval = 10 * time.Second

// fetches deduplicates concurrent loads of the same artifact.
var fetches singleflight.Group

func init() {
	if checkHashes := os.Getenv("ZKFLOW_CHECK_HASHES"); checkHashes != "" {
		if strings.ToLower(checkHashes) == "false" || checkHashes == "0" {
			CheckHashes = false
		}
	}
	if dir := os.Getenv("ZKFLOW_ARTIFACTS_DIR"); dir != "" {
		BaseDir = dir
		return
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		log.Warnf("unable to access user home directory, using temporary directory: %v", err)
		BaseDir = filepath.Join(os.TempDir(), "zkflow-artifacts")
		return
	}
	BaseDir = filepath.Join(home, ".cache", "zkflow-artifacts")
}

func cachePath(hash []byte) string {
	return filepath.Join(BaseDir, hex.EncodeToString(hash))
}

func checkHash(expected, content []byte) error {
	if !CheckHashes {
		return nil
	}
	if got := sha256.Sum256(content); !bytes.Equal(got[:], expected) {
		return fmt.Errorf("hash mismatch: expected %x, got %x", expected, got)
	}
	return nil
}

// readCached returns the cached content of hash, or nil when it is not
// cached.
func readCached(hash []byte) ([]byte, error) {
	path := cachePath(hash)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	if err := checkHash(hash, content); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return content, nil
}

// writeCached stores content under hash. The file is written aside and
// renamed so readers never see it partially written.
func writeCached(hash, content []byte) error {
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		return fmt.Errorf("error creating the base directory: %w", err)
	}
	tmp, err := os.CreateTemp(BaseDir, ".store-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), cachePath(hash))
}

// fetch returns the content of hash from the cache, downloading it from
// remoteURL when it is missing.
func fetch(ctx context.Context, hash []byte, remoteURL string) ([]byte, error) {
	v, err, _ := fetches.Do(hex.EncodeToString(hash), func() (any, error) {
		content, err := readCached(hash)
		if err != nil || content != nil {
			return content, err
		}
		if remoteURL == "" {
			return nil, fmt.Errorf("artifact %x not cached and remote url not provided", hash)
		}
		if err := download(ctx, hash, remoteURL); err != nil {
			return nil, err
		}
		if content, err = readCached(hash); err != nil {
			return nil, err
		}
		if content == nil {
			return nil, fmt.Errorf("no content found for artifact %x", hash)
		}
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// progressReader counts the bytes read through it.
type progressReader struct {
	reader io.Reader
	total  atomic.Int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.total.Add(int64(n))
	return n, err
}

// download fetches fileURL into the cache under expectedHash. An earlier
// partial download is resumed when the server honours the range request.
func download(ctx context.Context, expectedHash []byte, fileURL string) error {
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		return fmt.Errorf("error creating the base directory: %w", err)
	}
	path := cachePath(expectedHash)
	partialPath := path + ".partial"
	var startByte int64
	if info, err := os.Stat(partialPath); err == nil {
		startByte = info.Size()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("error creating the file request: %w", err)
	}
	if startByte > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", startByte))
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error performing the request: %w", err)
	}
	defer res.Body.Close()

	hasher := sha256.New()
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	switch res.StatusCode {
	case http.StatusPartialContent:
		if startByte == 0 {
			return fmt.Errorf("error downloading file %s: unexpected partial content", fileURL)
		}
		existing, err := os.Open(partialPath)
		if err != nil {
			return err
		}
		_, err = io.Copy(hasher, existing)
		existing.Close()
		if err != nil {
			return err
		}
		flags = os.O_APPEND | os.O_WRONLY
	case http.StatusOK:
		startByte = 0
	default:
		return fmt.Errorf("error downloading file %s: http status: %d", fileURL, res.StatusCode)
	}
	fd, err := os.OpenFile(partialPath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("error opening artifact file: %w", err)
	}
	defer fd.Close()

	pr := &progressReader{reader: res.Body}
	size := res.ContentLength + startByte
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.MultiWriter(fd, hasher), pr)
		done <- err
	}()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for copying := true; copying; {
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("error copying data to file: %w", err)
			}
			copying = false
		case <-ticker.C:
			total := startByte + pr.total.Load()
			var percentage float64
			if size > 0 {
				percentage = float64(total) / float64(size) * 100
			}
			log.Debugw("download artifacts", "url", fileURL,
				"downloaded", fmt.Sprintf("%.2fMiB", float64(total)/(1024*1024)),
				"progress", fmt.Sprintf("%.2f%%", percentage))
		}
	}
	if err := fd.Close(); err != nil {
		return err
	}
	if got := hasher.Sum(nil); CheckHashes && !bytes.Equal(got, expectedHash) {
		os.Remove(partialPath)
		return fmt.Errorf("hash mismatch: expected %x, got %x", expectedHash, got)
	}
	if err := os.Rename(partialPath, path); err != nil {
		return fmt.Errorf("error renaming file: %w", err)
	}
	log.Infow("artifact downloaded", "url", fileURL, "hash", hex.EncodeToString(expectedHash))
	return nil
}
