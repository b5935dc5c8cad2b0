package orchestrator

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// CleanupTemps removes leftover "*.pdf.tmp" files in dir older than
// maxAge. Fresh temp files are left alone in case another run owns
// them.
func CleanupTemps(dir string, maxAge time.Duration) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf.tmp"))
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(m); err != nil {
			log.Warn().Err(err).Str("file", m).Msg("failed to remove stale temp file")
		} else {
			log.Debug().Str("file", m).Msg("removed stale temp file")
		}
	}
}
