package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/flightdelay/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// Limiter throttles requests; nil means 5 requests/s with a burst of 5.
	Limiter *rate.Limiter
	// Retry overrides the backoff; MaxAttempts is taken from MaxRetries.
	Retry resilience.RetryConfig
}

// HTTPFetcher implements ConditionalFetcher using net/http with retry and
// rate limiting.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "flightdelay/1.0"
	}
	if opts.Retry.MaxAttempts == 0 && opts.Retry.InitialBackoff == 0 {
		opts.Retry = resilience.DefaultRetryConfig()
	}
	opts.Retry.MaxAttempts = opts.MaxRetries

	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(5, 5)
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: limiter,
	}
}

// get performs a GET with retry. Responses other than 200 and 304 are errors;
// retryable statuses are marked transient.
func (f *HTTPFetcher) get(ctx context.Context, rawURL string, header http.Header) (*http.Response, error) {
	retry := f.opts.Retry
	retry.OnRetry = resilience.RetryLogger("http download " + rawURL)

	return resilience.DoVal(ctx, retry, func(ctx context.Context) (*http.Response, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "http: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "http: create request")
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "http: request")
		}

		switch {
		case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusNotModified:
			return resp, nil
		case resilience.IsTransientHTTPStatus(resp.StatusCode):
			_ = resp.Body.Close()
			te := resilience.NewTransientError(
				eris.Errorf("http: status %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
			te.RetryAfter = resilience.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
			return nil, te
		default:
			_ = resp.Body.Close()
			return nil, eris.Errorf("http: unexpected status %d from %s", resp.StatusCode, rawURL)
		}
	})
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := f.get(ctx, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "http: download")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("http: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// DownloadToFile fetches the URL and writes it to the given path.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	n, err := WriteFile(body, path)
	if err != nil {
		return n, err
	}
	zap.L().Info("http: downloaded", zap.String("url", rawURL), zap.Int64("bytes", n))
	return n, nil
}

// DownloadIfChanged fetches the URL only if the ETag has changed.
func (f *HTTPFetcher) DownloadIfChanged(ctx context.Context, rawURL string, etag string) (io.ReadCloser, string, bool, error) {
	header := http.Header{}
	if etag != "" {
		header.Set("If-None-Match", etag)
	}

	resp, err := f.get(ctx, rawURL, header)
	if err != nil {
		return nil, "", false, eris.Wrap(err, "http: download if changed")
	}
	if resp.StatusCode == http.StatusNotModified {
		_ = resp.Body.Close()
		return nil, etag, false, nil
	}
	return resp.Body, resp.Header.Get("ETag"), true, nil
}
