// Package logging provides the global slog setup for the triage API:
// a console handler, an optional weekly-rotating file handler, and an
// HTTP request-logging middleware.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RotatingWriter appends to one log file per ISO week and removes
// files older than the retention window.
type RotatingWriter struct {
	logDir      string
	retention   time.Duration
	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
	lastCleanup time.Time
}

// NewRotatingWriter creates a writer rooted at logDir keeping
// retentionWeeks weeks of files.
func NewRotatingWriter(logDir string, retentionWeeks int) *RotatingWriter {
	return &RotatingWriter{
		logDir:    logDir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
	}
}

// weekKey returns the week key in YYYY-Www format (ISO week)
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	week := weekKey(time.Now())
	if w.currentFile == nil || week != w.currentWeek {
		if err := w.rotate(week); err != nil {
			return 0, err
		}
	}

	return w.currentFile.Write(p)
}

// rotate opens the file for targetWeek (caller must hold the lock).
func (w *RotatingWriter) rotate(targetWeek string) error {
	if w.currentFile != nil {
		if err := w.currentFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
	}

	if err := os.MkdirAll(w.logDir, 0o750); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", w.logDir, err)
	}

	logPath := filepath.Join(w.logDir, fmt.Sprintf("app-%s.log", targetWeek))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	w.currentFile = file
	w.currentWeek = targetWeek

	// Cleanup at most once a day
	if time.Since(w.lastCleanup) > 24*time.Hour {
		w.cleanup()
		w.lastCleanup = time.Now()
	}

	return nil
}

// cleanup removes log files older than the retention window.
func (w *RotatingWriter) cleanup() {
	entries, err := os.ReadDir(w.logDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-w.retention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "app-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.logDir, entry.Name())); err != nil {
				fmt.Fprintf(os.Stderr, "failed to remove old log file %s: %v\n", entry.Name(), err)
			}
		}
	}
}

// Close closes the current log file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile == nil {
		return nil
	}
	err := w.currentFile.Close()
	w.currentFile = nil
	return err
}

// SetupLogger builds the application logger. With a log directory, log
// records go as JSON to both stdout and the weekly rotating file;
// without one, text records go to stdout only.
func SetupLogger(logDir string, level string) *slog.Logger {
	logLevel := parseLevel(level)

	if logDir == "" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}))
	}

	rotating := NewRotatingWriter(logDir, retentionWeeksFromEnv())
	return slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotating), &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func retentionWeeksFromEnv() int {
	weeks := 4
	if raw := os.Getenv("LOG_RETENTION_WEEKS"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &weeks); err != nil || weeks <= 0 {
			weeks = 4
		}
	}
	return weeks
}
