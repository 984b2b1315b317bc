package manifest

import (
	"testing"
	"time"

	"github.com/mutagen-io/incbackup/internal/hashutil"
)

func TestRecordKind(t *testing.T) {
	sha := hashutil.Digest{1, 2, 3}
	now := time.Now()

	tests := []struct {
		name   string
		record Record
		want   Kind
	}{
		{"add", NewAdd("a", now, true, sha), KindAdd},
		{"update", NewUpdate("a", now, true, sha), KindUpdate},
		{"delete", NewDelete("a", true), KindDelete},
		{"move", NewMove("a", "b", now, true, sha), KindMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}
