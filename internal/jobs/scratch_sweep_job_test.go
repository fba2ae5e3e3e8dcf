package job

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/sources"
)

func TestScratchSweep(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	write := func(name string, age time.Duration) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		mod := now.Add(-age)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
		return path
	}

	staleVideo := write(sources.ScratchPrefix+"video-old", 2*time.Hour)
	stalePDF := write(sources.ScratchPrefix+"pdf-old.pdf", 3*time.Hour)
	fresh := write(sources.ScratchPrefix+"video-new", time.Minute)
	other := write("unrelated.txt", 48*time.Hour)

	job := NewScratchSweepJob(dir, time.Hour)
	job.now = func() time.Time { return now }

	if got := job.Sweep(); got != 2 {
		t.Fatalf("removed %d files, want 2", got)
	}
	for _, gone := range []string{staleVideo, stalePDF} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("stale scratch file %s still present", gone)
		}
	}
	for _, keep := range []string{fresh, other} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s was removed: %v", keep, err)
		}
	}
}

func TestScratchSweepMissingDir(t *testing.T) {
	job := NewScratchSweepJob(filepath.Join(t.TempDir(), "gone"), time.Hour)
	if got := job.Sweep(); got != 0 {
		t.Errorf("removed %d files from a missing dir", got)
	}
}
