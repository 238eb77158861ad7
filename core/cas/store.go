// Package cas provides content-addressed storage for source files.
// Blobs are stored by their BLAKE3 digest, so an input ingested twice is
// kept once and its bytes can be checked against the digest a document
// records.
package cas

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// tempFileWrite is a function variable for writing to temp files (for testing).
var tempFileWrite = func(f *os.File, data []byte) (int, error) {
	return f.Write(data)
}

// tempFileClose is a function variable for closing temp files (for testing).
var tempFileClose = func(f io.Closer) error {
	return f.Close()
}

// ErrBlobNotFound is returned when a blob with the given digest does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidDigest is returned when a digest string is not a valid BLAKE3 hex string.
var ErrInvalidDigest = errors.New("invalid digest format")

// digestPattern matches a lowercase 256-bit hex digest.
var digestPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Store keeps blobs under <root>/blobs/blake3/<first2>/<digest>.
type Store struct {
	root string
}

// NewStore creates a store at root, creating its directories if needed.
func NewStore(root string) (*Store, error) {
	blobDir := filepath.Join(root, "blobs", "blake3")
	if err := os.MkdirAll(blobDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Put stores data and returns its digest. Storing existing content is a
// no-op.
func (s *Store) Put(data []byte) (string, error) {
	digest := Digest(data)

	blobPath := s.pathForDigest(digest)
	if _, err := os.Stat(blobPath); err == nil {
		return digest, nil
	}

	prefixDir := filepath.Dir(blobPath)
	if err := os.MkdirAll(prefixDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create prefix directory: %w", err)
	}

	// Write atomically
	tempFile, err := os.CreateTemp(prefixDir, ".blob-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFileWrite(tempFile, data); err != nil {
		tempFileClose(tempFile)
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	if err := tempFileClose(tempFile); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := osRename(tempPath, blobPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename blob: %w", err)
	}

	return digest, nil
}

// Get returns the blob with the given digest. The content is verified
// against the digest before it is returned.
func (s *Store) Get(digest string) ([]byte, error) {
	if !isValidDigest(digest) {
		return nil, ErrInvalidDigest
	}

	data, err := os.ReadFile(s.pathForDigest(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if !Verify(data, digest) {
		return nil, fmt.Errorf("blob %s is corrupt: content digest is %s", digest, Digest(data))
	}
	return data, nil
}

// Exists checks if a blob with the given digest exists in the store.
func (s *Store) Exists(digest string) bool {
	if !isValidDigest(digest) {
		return false
	}
	_, err := os.Stat(s.pathForDigest(digest))
	return err == nil
}

// Root returns the root directory of the store.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) pathForDigest(digest string) string {
	return filepath.Join(s.root, "blobs", "blake3", digest[:2], digest)
}

func isValidDigest(digest string) bool {
	return digestPattern.MatchString(digest)
}
