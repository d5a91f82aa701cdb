// Package archive expands downloaded artifact archives.
//
// Artifacts arrive as zip containers. Extract writes every entry under the
// destination directory, replacing files that already exist, so a retried
// download can be expanded over a partially populated directory.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrUnsafePath indicates an archive entry would be written outside the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Options configures extraction.
type Options struct {
	// Logger receives one debug line per entry. Nil keeps extraction quiet.
	Logger *slog.Logger
}

// Stats summarizes an extraction.
type Stats struct {
	Files   int   `json:"files"`
	Dirs    int   `json:"dirs"`
	Skipped int   `json:"skipped"`
	Bytes   int64 `json:"bytes"`
}

// Extract expands the zip archive at src into dest, creating dest if needed.
func Extract(src, dest string, opts Options) (Stats, error) {
	var stats Stats

	r, err := zip.OpenReader(src)
	if err != nil {
		return stats, fmt.Errorf("open archive %s: %w", src, err)
	}
	defer r.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return stats, fmt.Errorf("resolve %s: %w", dest, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return stats, fmt.Errorf("create %s: %w", dest, err)
	}

	for _, f := range r.File {
		target, err := entryPath(root, f.Name)
		if err != nil {
			return stats, err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return stats, fmt.Errorf("create directory %s: %w", f.Name, err)
			}
			stats.Dirs++
		case mode&fs.ModeSymlink != 0:
			// Links could point anywhere on disk.
			if opts.Logger != nil {
				opts.Logger.Warn("skipping symlink in archive", "entry", f.Name)
			}
			stats.Skipped++
		default:
			n, err := extractFile(f, target)
			if err != nil {
				return stats, err
			}
			stats.Files++
			stats.Bytes += n
		}

		if opts.Logger != nil {
			opts.Logger.Debug("extracted", "entry", f.Name)
		}
	}

	return stats, nil
}

func extractFile(f *zip.File, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", f.Name, err)
	}

	n, err := io.Copy(out, rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", f.Name, err)
	}
	return n, nil
}

// entryPath resolves name under root, rejecting absolute paths and
// parent-directory traversal.
func entryPath(root, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return target, nil
}
