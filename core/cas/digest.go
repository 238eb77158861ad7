package cas

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// Digest computes the BLAKE3 digest of data as lowercase hex.
func Digest(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// DigestString computes the digest of the UTF-8 bytes of s.
func DigestString(s string) string {
	return Digest([]byte(s))
}

// DigestReader computes the digest of everything read from r.
func DigestReader(r io.Reader) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether data has the given digest.
func Verify(data []byte, digest string) bool {
	return Digest(data) == digest
}
