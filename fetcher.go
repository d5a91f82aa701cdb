package fetchartifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/randalmurphal/fetchartifact/archive"
	"github.com/randalmurphal/fetchartifact/http"
)

// Transport transfers a URL to a local file. *http.Client satisfies it.
type Transport interface {
	Download(ctx context.Context, url, dest string) (int64, error)
}

var _ Transport = (*http.Client)(nil)

// ArtifactFetcher retrieves one artifact into a directory.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, req FetchRequest) error
}

// FetchRequest identifies the artifact to retrieve and where to put it.
type FetchRequest struct {
	Owner        string
	Repo         string
	ArtifactID   int64
	ArtifactName string
	DownloadPath string
}

// archivePath is where the zip lands before expansion.
func (r FetchRequest) archivePath() string {
	return filepath.Join(r.DownloadPath, r.ArtifactName+".zip")
}

// Fetcher downloads artifact archives through signed URLs and expands them.
type Fetcher struct {
	api       ActionsAPI
	transport Transport
	logger    *slog.Logger
}

// NewFetcher creates a fetcher. A nil transport uses an http.Client with
// unlimited transport retries; a nil logger uses slog.Default().
func NewFetcher(api ActionsAPI, transport Transport, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if transport == nil {
		transport = http.NewClient(http.ClientConfig{
			MaxRetries: http.UnlimitedRetries,
			Logger:     logger,
		})
	}
	return &Fetcher{api: api, transport: transport, logger: logger}
}

// Fetch requests a fresh signed URL, downloads the archive to
// {DownloadPath}/{ArtifactName}.zip and expands it into DownloadPath,
// overwriting existing files. A failed expansion leaves whatever was
// already written in place.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) error {
	signed, _, err := f.api.DownloadArtifact(ctx, req.Owner, req.Repo, req.ArtifactID, 0)
	if err != nil {
		return fmt.Errorf("get download URL for artifact %d: %w", req.ArtifactID, err)
	}
	f.logger.Debug("resolved signed URL", "artifact", req.ArtifactID, "host", signed.Host)

	if err := ensureDir(req.DownloadPath); err != nil {
		return err
	}

	dest := req.archivePath()
	n, err := f.transport.Download(ctx, signed.String(), dest)
	if err != nil {
		return fmt.Errorf("download artifact %q: %w", req.ArtifactName, err)
	}
	f.logger.Info("downloaded artifact", "artifact", req.ArtifactName, "path", dest, "bytes", n)

	stats, err := archive.Extract(dest, req.DownloadPath, archive.Options{})
	if err != nil {
		return fmt.Errorf("extract artifact %q: %w", req.ArtifactName, err)
	}
	f.logger.Info("extracted artifact",
		"artifact", req.ArtifactName, "path", req.DownloadPath, "files", stats.Files, "bytes", stats.Bytes)

	return nil
}

// ensureDir creates path and its parents. An existing directory is fine.
func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create download directory %s: %w", path, err)
	}
	return nil
}
