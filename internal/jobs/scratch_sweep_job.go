package job

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/sources"
	"github.com/rs/zerolog/log"
)

// ScratchSweepJob removes downloaded media left behind by crashed or
// interrupted video uploads.
type ScratchSweepJob struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

func NewScratchSweepJob(dir string, maxAge time.Duration) *ScratchSweepJob {
	if dir == "" {
		dir = os.TempDir()
	}
	return &ScratchSweepJob{dir: dir, maxAge: maxAge, now: time.Now}
}

// Sweep deletes scratch files older than the configured age and returns how
// many were removed.
func (j *ScratchSweepJob) Sweep() int {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		log.Error().Err(err).Str("dir", j.dir).Msg("unable to read scratch directory")
		return 0
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), sources.ScratchPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("unable to remove scratch file")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("scratch sweep finished")
	}
	return removed
}

// Run is the cron entry point.
func (j *ScratchSweepJob) Run() {
	j.Sweep()
}
