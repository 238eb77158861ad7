package cas

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestDigest(t *testing.T) {
	data := []byte("<DOC><TEXT>fish &amp; chips</TEXT></DOC>")
	h := blake3.Sum256(data)
	want := hex.EncodeToString(h[:])
	if got := Digest(data); got != want {
		t.Errorf("Digest() = %s, want %s", got, want)
	}
	if DigestString(string(data)) != want {
		t.Error("DigestString() differs from Digest()")
	}
	got, err := DigestReader(bytes.NewReader(data))
	if err != nil || got != want {
		t.Errorf("DigestReader() = %s, %v", got, err)
	}
	if !Verify(data, want) || Verify(data[1:], want) {
		t.Error("Verify() gave the wrong answer")
	}
}

func TestPutAndGet(t *testing.T) {
	store := newTestStore(t)
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("six miles")},
		{"empty", []byte{}},
		{"large", bytes.Repeat([]byte("abcdefgh"), 1<<16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := store.Put(tt.data)
			if err != nil {
				t.Fatalf("Put() error: %v", err)
			}
			if digest != Digest(tt.data) {
				t.Errorf("Put() digest = %s", digest)
			}
			if !store.Exists(digest) {
				t.Error("Exists() = false after Put")
			}
			got, err := store.Get(digest)
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Error("Get() returned different bytes")
			}
		})
	}
}

func TestPutDuplicate(t *testing.T) {
	store := newTestStore(t)
	a, err := store.Put([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Put([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("digests differ: %s, %s", a, b)
	}
	entries, err := os.ReadDir(filepath.Dir(store.pathForDigest(a)))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("%d files in prefix directory, want 1", len(entries))
	}
}

func TestGetErrors(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get("not-a-digest"); !errors.Is(err, ErrInvalidDigest) {
		t.Errorf("invalid digest error = %v", err)
	}
	if store.Exists("ABC") {
		t.Error("Exists() accepted an invalid digest")
	}
	if _, err := store.Get(Digest([]byte("missing"))); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("missing blob error = %v", err)
	}

	digest, err := store.Put([]byte("original"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.pathForDigest(digest), []byte("tampered"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(digest); err == nil || !strings.Contains(err.Error(), "corrupt") {
		t.Errorf("tampered blob error = %v", err)
	}
}

func TestNewStoreMkdirError(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "blobs"), []byte("blocking"), 0644); err != nil {
		t.Fatalf("failed to create blocking file: %v", err)
	}
	if _, err := NewStore(tempDir); err == nil {
		t.Error("expected error when mkdir fails")
	}
}

func TestPutWriteErrors(t *testing.T) {
	fail := errors.New("injected")
	tests := []struct {
		name    string
		install func() func()
	}{
		{"write", func() func() {
			orig := tempFileWrite
			tempFileWrite = func(*os.File, []byte) (int, error) { return 0, fail }
			return func() { tempFileWrite = orig }
		}},
		{"rename", func() func() {
			orig := osRename
			osRename = func(string, string) error { return fail }
			return func() { osRename = orig }
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := tt.install()
			defer restore()
			store := newTestStore(t)
			if _, err := store.Put([]byte(tt.name)); !errors.Is(err, fail) {
				t.Errorf("Put() error = %v", err)
			}
			entries, _ := os.ReadDir(filepath.Dir(store.pathForDigest(Digest([]byte(tt.name)))))
			if len(entries) != 0 {
				t.Errorf("temp file left behind: %v", entries)
			}
		})
	}
}
