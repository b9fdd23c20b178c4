// Package sink names and writes fetched images on the local filesystem.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	bytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placeholder_bytes_written_total",
		Help: "Total bytes of image data written to disk",
	})

	writeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placeholder_write_errors_total",
		Help: "Total failed image writes",
	})
)

// DefaultFileMode is the permission of written images.
const DefaultFileMode os.FileMode = 0o644

// PathFunc maps a work item to its destination path. It must be deterministic.
type PathFunc func(item string) string

// ExtensionPath returns a PathFunc producing <dir>/<item><ext>.
// Path separators inside item are replaced with "_" so every destination
// stays directly inside dir.
func ExtensionPath(dir, ext string) PathFunc {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return func(item string) string {
		return filepath.Join(dir, sanitize(item)+ext)
	}
}

func sanitize(item string) string {
	item = strings.ReplaceAll(item, "/", "_")
	if os.PathSeparator != '/' {
		item = strings.ReplaceAll(item, string(os.PathSeparator), "_")
	}
	switch item {
	case "", ".", "..":
		return "_" + item
	}
	return item
}

// FileSink writes images atomically: data goes to a temp file next to the
// destination and is renamed into place only after a successful write and
// close, so a failed write never leaves a truncated image at the destination.
// The destination directory must already exist.
type FileSink struct {
	mode   os.FileMode
	logger zerolog.Logger
}

// NewFileSink creates a file sink writing with DefaultFileMode.
func NewFileSink() *FileSink {
	return &FileSink{
		mode:   DefaultFileMode,
		logger: log.With().Str("component", "file-sink").Logger(),
	}
}

// WithMode returns a copy of the sink writing files with mode.
func (s *FileSink) WithMode(mode os.FileMode) *FileSink {
	cp := *s
	cp.mode = mode
	return &cp
}

// Write stores data at path, replacing any existing file. It returns the
// number of bytes written.
func (s *FileSink) Write(ctx context.Context, path string, data []byte) (n int64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	defer func() {
		if err != nil {
			writeErrors.Inc()
		}
	}()

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	// Release the handle and drop the temp file on every failure path.
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			if rmErr := os.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
				s.logger.Debug().Err(rmErr).Str("temp", tmpName).Msg("Failed to remove temp file")
			}
		}
	}()

	written, err := tmp.Write(data)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Chmod(s.mode); err != nil {
		return 0, fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("rename into %s: %w", path, err)
	}
	committed = true

	bytesWritten.Add(float64(written))

	s.logger.Debug().
		Str("path", path).
		Int("bytes", written).
		Msg("Image written")

	return int64(written), nil
}
