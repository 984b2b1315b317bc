package diffengine

import (
	"testing"
	"time"

	"github.com/mutagen-io/incbackup/internal/hashutil"
	"github.com/mutagen-io/incbackup/internal/state"
)

func digestOf(b byte) hashutil.Digest {
	var d hashutil.Digest
	d[0] = b
	return d
}

func fakeHasher(digests map[string]hashutil.Digest) func(string) (hashutil.Digest, error) {
	return func(path string) (hashutil.Digest, error) {
		return digests[path], nil
	}
}

func TestDiffAddedUpdatedDeleted(t *testing.T) {
	now := time.Now()
	prior := state.State{
		"kept.txt":    {MTime: now, SHA: digestOf(1)},
		"changed.txt": {MTime: now, SHA: digestOf(2)},
		"gone.txt":    {MTime: now, SHA: digestOf(3)},
	}
	fresh := map[string]time.Time{
		"kept.txt":    now,
		"changed.txt": now.Add(10 * time.Second),
		"new.txt":     now,
	}
	digests := map[string]hashutil.Digest{
		"new.txt": digestOf(9),
	}

	result := Diff(prior, fresh, fakeHasher(digests), nil)

	if len(result.Added) != 1 || result.Added["new.txt"] != digestOf(9) {
		t.Errorf("unexpected added set: %+v", result.Added)
	}
	if len(result.Updated) != 1 || result.Updated[0] != "changed.txt" {
		t.Errorf("unexpected updated set: %+v", result.Updated)
	}
	if len(result.Deleted) != 1 || result.Deleted[0] != "gone.txt" {
		t.Errorf("unexpected deleted set: %+v", result.Deleted)
	}
	if len(result.Moved) != 0 {
		t.Errorf("unexpected moves: %+v", result.Moved)
	}
}

func TestDiffDetectsMoveByDigest(t *testing.T) {
	now := time.Now()
	prior := state.State{
		"old/path.txt": {MTime: now, SHA: digestOf(7)},
	}
	fresh := map[string]time.Time{
		"new/path.txt": now,
	}
	digests := map[string]hashutil.Digest{
		"new/path.txt": digestOf(7),
	}

	result := Diff(prior, fresh, fakeHasher(digests), nil)

	if len(result.Added) != 0 {
		t.Errorf("expected move to consume the added candidate, got %+v", result.Added)
	}
	if len(result.Deleted) != 0 {
		t.Errorf("expected move to consume the deleted candidate, got %+v", result.Deleted)
	}
	if len(result.Moved) != 1 || result.Moved[0].Src != "old/path.txt" || result.Moved[0].Dst != "new/path.txt" {
		t.Fatalf("unexpected moves: %+v", result.Moved)
	}
}

func TestDiffUpdateToleranceIsAsymmetric(t *testing.T) {
	now := time.Now()
	prior := state.State{
		"a.txt": {MTime: now},
	}

	// Slightly newer than tolerance allows: still an update.
	fresh := map[string]time.Time{"a.txt": now.Add(updateToleranceNewer + time.Millisecond)}
	result := Diff(prior, fresh, fakeHasher(nil), nil)
	if len(result.Updated) != 1 {
		t.Errorf("expected update when fresh mtime is newer than tolerance, got %+v", result.Updated)
	}

	// Within tolerance on both sides: not an update.
	fresh = map[string]time.Time{"a.txt": now.Add(-500 * time.Millisecond)}
	result = Diff(prior, fresh, fakeHasher(nil), nil)
	if len(result.Updated) != 0 {
		t.Errorf("expected no update within tolerance, got %+v", result.Updated)
	}

	fresh = map[string]time.Time{"a.txt": now.Add(-1500 * time.Millisecond)}
	result = Diff(prior, fresh, fakeHasher(nil), nil)
	if len(result.Updated) != 0 {
		t.Errorf("expected no update within older tolerance, got %+v", result.Updated)
	}
}

func TestDiffNoChanges(t *testing.T) {
	now := time.Now()
	prior := state.State{"a.txt": {MTime: now}}
	fresh := map[string]time.Time{"a.txt": now}

	result := Diff(prior, fresh, fakeHasher(nil), nil)
	if len(result.Added) != 0 || len(result.Updated) != 0 || len(result.Deleted) != 0 || len(result.Moved) != 0 {
		t.Errorf("expected no changes, got %+v", result)
	}
}
