package fetchartifact

import (
	"context"
	"log/slog"
	"time"

	"github.com/randalmurphal/fetchartifact/progress"
)

// Downloader resolves an artifact and fetches it, retrying the fetch stage.
type Downloader struct {
	api       ActionsAPI
	logger    *slog.Logger
	reporter  progress.Reporter
	policy    RetryPolicy
	onRetry   RetryFunc
	fetcher   ArtifactFetcher
	transport Transport
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithLogger sets the logger for fetch and retry messages.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithReporter sets where search progress goes.
func WithReporter(r progress.Reporter) Option {
	return func(d *Downloader) {
		d.reporter = r
	}
}

// WithRetryPolicy replaces DefaultRetryPolicy. Zero intervals and
// multiplier fall back to the defaults.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(d *Downloader) {
		def := DefaultRetryPolicy()
		if p.InitialInterval <= 0 {
			p.InitialInterval = def.InitialInterval
		}
		if p.Multiplier < 1 {
			p.Multiplier = def.Multiplier
		}
		if p.MaxInterval <= 0 {
			p.MaxInterval = def.MaxInterval
		}
		d.policy = p
	}
}

// WithOnRetry registers a callback for each failed fetch attempt that
// will be retried.
func WithOnRetry(fn RetryFunc) Option {
	return func(d *Downloader) {
		d.onRetry = fn
	}
}

// WithFetcher replaces the fetch stage.
func WithFetcher(f ArtifactFetcher) Option {
	return func(d *Downloader) {
		d.fetcher = f
	}
}

// WithTransport sets the transport the default Fetcher downloads with.
// Ignored when WithFetcher is used.
func WithTransport(t Transport) Option {
	return func(d *Downloader) {
		d.transport = t
	}
}

// NewDownloader creates a Downloader for the given API handle.
func NewDownloader(api ActionsAPI, opts ...Option) *Downloader {
	d := &Downloader{
		api:    api,
		policy: DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.reporter == nil {
		d.reporter = progress.NewLogReporter(d.logger)
	}
	if d.fetcher == nil {
		d.fetcher = NewFetcher(api, d.transport, d.logger)
	}

	return d
}

// Download finds the artifact described by req and extracts it into
// req.DownloadPath. An empty search returns a *NoArtifactsError (matching
// ErrNoArtifacts) without retrying. Fetch failures are retried per the
// retry policy; once it is spent the last error is returned.
func (d *Downloader) Download(ctx context.Context, req DownloadRequest) (*SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	outcome, err := NewResolver(d.api, d.reporter).Resolve(ctx, req.SearchRequest)
	if err != nil {
		return nil, err
	}
	if !outcome.Found() {
		d.logger.Debug("search came up empty",
			"outcome", outcome.Kind.String(), "workflow_id", outcome.WorkflowID, "pages_scanned", outcome.PagesScanned)
		return nil, &NoArtifactsError{
			Kind:     outcome.Kind,
			Workflow: req.WorkflowName,
			Branch:   req.Branch,
			Artifact: req.ArtifactName,
			Commit:   req.Commit,
		}
	}

	result := outcome.Result
	fetchReq := FetchRequest{
		Owner:        req.Owner,
		Repo:         req.Repo,
		ArtifactID:   result.Artifact.ID,
		ArtifactName: req.ArtifactName,
		DownloadPath: req.DownloadPath,
	}

	err = d.policy.run(ctx, func(ctx context.Context) error {
		return d.fetcher.Fetch(ctx, fetchReq)
	}, func(attempt int, err error, wait time.Duration) {
		d.logger.Warn("artifact fetch failed, retrying",
			"attempt", attempt, "error", err, "wait", wait, "artifact", req.ArtifactName)
		if d.onRetry != nil {
			d.onRetry(attempt, err, wait)
		}
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Download is shorthand for NewDownloader(api, opts...).Download(ctx, req).
func Download(ctx context.Context, api ActionsAPI, req DownloadRequest, opts ...Option) (*SearchResult, error) {
	return NewDownloader(api, opts...).Download(ctx, req)
}
