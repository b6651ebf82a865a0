package restyutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
	DefaultUserAgent = "bhl-commons/0.1 (https://github.com/lehigh-university-libraries/bhl-commons)"
)

// Options configures a resty client shared by the catalog, image and
// repository clients.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Retries applies to idempotent GET requests only. POSTs are never retried.
	Retries int
	// WithCookies gives the client its own cookie jar.
	WithCookies bool
}

// New builds a resty client with a timeout, GET-only bounded retry with
// exponential backoff, and slog request logging.
func New(opts Options) (*resty.Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	if opts.BaseURL != "" {
		client.SetBaseURL(opts.BaseURL)
	}
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)

	if opts.WithCookies {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		client.SetCookieJar(jar)
	}

	client.SetRetryCount(opts.Retries)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetRetryMaxWaitTime(5 * time.Second)
	client.AddRetryCondition(RetryIdempotent)
	client.AddRetryHook(DiscardBody)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		slog.Debug("start request", "method", req.Method, "url", req.URL)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		slog.Debug("request finished",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"duration", res.Time())
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		slog.Debug("request failed", "method", req.Method, "url", req.URL, "err", err)
	})

	return client, nil
}

// DiscardBody drains and closes the body of an attempt that is about to be
// retried. Streaming requests (SetDoNotParseResponse) leave it open otherwise
// and the connection is never returned to the pool.
func DiscardBody(res *resty.Response, _ error) {
	if res == nil || res.RawResponse == nil || res.RawResponse.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.RawResponse.Body)
	_ = res.RawResponse.Body.Close()
}

// RetryIdempotent retries GET requests on transport errors, 429 and 5xx.
func RetryIdempotent(res *resty.Response, err error) bool {
	if res == nil || res.Request == nil || res.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := res.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
