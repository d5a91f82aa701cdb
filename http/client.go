package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultConnectTimeout bounds how long dialing the archive host may take.
const DefaultConnectTimeout = 15 * time.Second

// DefaultReadTimeout bounds how long the transfer may go without receiving data.
const DefaultReadTimeout = 20 * time.Second

// DefaultRetryWait is the fixed wait between transport-level retries.
const DefaultRetryWait = 1 * time.Second

// UnlimitedRetries keeps retrying transient failures until the context ends.
const UnlimitedRetries = -1

// Client transfers archives from signed URLs to local files. Connection
// failures (including refused connections), 429 and 5xx responses are
// retried at a fixed interval.
type Client struct {
	client      *retryablehttp.Client
	serviceName string
	readTimeout time.Duration
	logger      *slog.Logger
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	// HTTPClient overrides the underlying client. When nil, a pooled
	// client with the connect and read timeouts below is built.
	HTTPClient *http.Client

	ServiceName string

	// MaxRetries is the number of retries after the first attempt.
	// Zero or UnlimitedRetries means retry until the context is done.
	MaxRetries int

	RetryWait      time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Logger         *slog.Logger
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "artifact"
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = DefaultRetryWait
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := cleanhttp.DefaultPooledTransport()
		transport.DialContext = (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		transport.ResponseHeaderTimeout = cfg.ReadTimeout
		httpClient = &http.Client{Transport: transport}
	}

	retryMax := cfg.MaxRetries
	if retryMax <= 0 {
		retryMax = math.MaxInt
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = retryMax
	rc.RetryWaitMin = cfg.RetryWait
	rc.RetryWaitMax = cfg.RetryWait
	rc.Logger = cfg.Logger

	return &Client{
		client:      rc,
		serviceName: cfg.ServiceName,
		readTimeout: cfg.ReadTimeout,
		logger:      cfg.Logger,
	}
}

// Download fetches url and writes the body to dest, truncating any
// existing file. It returns the number of bytes written.
func (c *Client) Download(ctx context.Context, url, dest string) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s download failed: %w", c.serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, c.parseError(resp, req.URL.Path)
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}

	body := newIdleTimeoutReader(resp.Body, c.readTimeout, cancel)
	defer body.stop()

	n, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		if body.timedOut() {
			copyErr = ErrReadTimeout
		}
		return n, fmt.Errorf("%s download interrupted after %d bytes: %w", c.serviceName, n, copyErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("close %s: %w", dest, closeErr)
	}

	c.logger.Debug("download complete", "dest", dest, "bytes", n)
	return n, nil
}

// parseError turns a failed response into an APIError.
func (c *Client) parseError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	apiErr := &APIError{
		Service:    c.serviceName,
		StatusCode: resp.StatusCode,
		Endpoint:   path,
		RequestID:  resp.Header.Get("X-Request-Id"),
		Message:    http.StatusText(resp.StatusCode),
	}
	if msg := extractMessage(body); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

// idleTimeoutReader cancels the request when no data arrives for timeout.
type idleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
	fired   atomic.Bool
}

func newIdleTimeoutReader(r io.Reader, timeout time.Duration, cancel context.CancelFunc) *idleTimeoutReader {
	ir := &idleTimeoutReader{r: r, timeout: timeout}
	ir.timer = time.AfterFunc(timeout, func() {
		ir.fired.Store(true)
		cancel()
	})
	return ir
}

func (r *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 && !r.fired.Load() {
		r.timer.Reset(r.timeout)
	}
	return n, err
}

func (r *idleTimeoutReader) timedOut() bool {
	return r.fired.Load()
}

func (r *idleTimeoutReader) stop() {
	r.timer.Stop()
}
