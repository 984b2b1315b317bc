package hashutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDigestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	digest, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	parsed, err := ParseDigest(digest.String())
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if parsed != digest {
		t.Fatalf("round trip mismatch: got %v, want %v", parsed, digest)
	}
}

func TestParseDigestSentinel(t *testing.T) {
	var zero Digest
	for _, s := range []string{"00", ""} {
		digest, err := ParseDigest(s)
		if err != nil {
			t.Fatalf("ParseDigest(%q) failed: %v", s, err)
		}
		if digest != zero {
			t.Fatalf("ParseDigest(%q) should be the zero digest", s)
		}
	}
}

func TestParseDigestInvalid(t *testing.T) {
	cases := []string{"not-hex", "AB", "0123456789"}
	for _, s := range cases {
		if _, err := ParseDigest(s); err == nil {
			t.Fatalf("ParseDigest(%q) should have failed", s)
		}
	}
}

func TestParseDigestCaseInsensitive(t *testing.T) {
	upper := "AB"
	for i := 0; i < 31; i++ {
		upper += "CD"
	}
	upper = upper[:64]
	lower, err := ParseDigest(strings.ToLower(upper))
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if lower.String() != upper {
		t.Fatalf("String() = %q, want %q", lower.String(), upper)
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error hashing missing file")
	}
}
