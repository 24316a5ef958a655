package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// intervalRotatingWriter rotates the log file on a fixed interval.
// Files are named <base>.log.YYYYMMDD for daily-or-longer intervals
// and <base>.log.YYYYMMDDHHMMSS for shorter ones.
type intervalRotatingWriter struct {
	mu   sync.Mutex
	dir  string
	base string
	cfg  *RotateConfig

	file     *os.File
	openedAt time.Time
}

var rotatedNamePattern = regexp.MustCompile(`^.+\.log\.([0-9]{8}|[0-9]{14})$`)

func newIntervalRotatingWriter(dir, base string, rc *RotateConfig) (*intervalRotatingWriter, error) {
	if rc == nil || rc.RotateInterval <= 0 {
		return nil, fmt.Errorf("invalid rotate interval: %v", rc)
	}
	w := &intervalRotatingWriter{dir: dir, base: base, cfg: rc}
	if err := w.rotateLocked(time.Now()); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *intervalRotatingWriter) stamp(t time.Time) string {
	if w.cfg.RotateInterval >= 24*time.Hour {
		return t.Format("20060102")
	}
	return t.Format("20060102150405")
}

func (w *intervalRotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotateLocked(time.Now()); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}

func (w *intervalRotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

// rotateLocked opens a fresh file when the interval has elapsed, then
// prunes expired rotated files.
func (w *intervalRotatingWriter) rotateLocked(now time.Time) error {
	if w.file != nil {
		if now.Sub(w.openedAt) < w.cfg.RotateInterval {
			return nil
		}
		_ = w.file.Sync()
		_ = w.file.Close()
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s.log.%s", w.base, w.stamp(now)))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open rotated log file: %w", err)
	}
	w.file = f
	w.openedAt = now

	if w.cfg.CleanupEnabled && w.cfg.MaxAge > 0 {
		w.pruneLocked(now)
	}
	return nil
}

func (w *intervalRotatingWriter) pruneLocked(now time.Time) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	cutoff := now.Add(-w.cfg.MaxAge)
	prefix := w.base + ".log."
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !rotatedNamePattern.MatchString(name) {
			continue
		}
		stamp := strings.TrimPrefix(name, prefix)
		layout := "20060102"
		if len(stamp) == 14 {
			layout = "20060102150405"
		}
		parsed, err := time.Parse(layout, stamp)
		if err != nil {
			continue
		}
		if parsed.Before(cutoff) {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
	}
}
