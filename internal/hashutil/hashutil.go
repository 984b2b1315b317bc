// Package hashutil computes the content digest used to identify file bytes
// across generations. SHA-256 is the only supported digest; changing it
// requires a new manifest version (Section 4.2).
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Size is the digest length in bytes.
const Size = sha256.Size

// chunkSize is the read buffer size used while streaming a file through the
// digest. It mirrors the teacher's scanner copy buffer size.
const chunkSize = 32 * 1024

// Digest is a 32-byte SHA-256 content digest.
type Digest [Size]byte

// String returns the uppercase hex encoding used in manifest records.
func (d Digest) String() string {
	return strings.ToUpper(hex.EncodeToString(d[:]))
}

// ParseDigest decodes an uppercase (or lowercase) hex-encoded digest, as read
// from a manifest record's sha field.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if s == "00" || s == "" {
		return d, nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return d, errors.Wrap(err, "unable to decode digest hex")
	}
	if len(decoded) != Size {
		return d, errors.Errorf("digest has invalid length %d", len(decoded))
	}
	copy(d[:], decoded)
	return d, nil
}

// HashFile streams the file at path through SHA-256 and returns its digest.
func HashFile(path string) (Digest, error) {
	var d Digest

	file, err := os.Open(path)
	if err != nil {
		return d, err
	}
	defer file.Close()

	hasher := sha256.New()
	buffer := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(hasher, file, buffer); err != nil {
		return d, errors.Wrap(err, "unable to read file contents")
	}

	copy(d[:], hasher.Sum(nil))
	return d, nil
}
