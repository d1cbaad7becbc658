// Package remotecache reads game-log CSV files published under a plain HTTP base URL.
package remotecache

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/team-gamelog/internal/domain/gamelog"
	"github.com/riskibarqy/team-gamelog/internal/platform/cache"
	"github.com/riskibarqy/team-gamelog/internal/platform/tabular"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds each remote GET regardless of the caller's per-attempt timeout.
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 16 << 20

var ErrUnexpectedStatus = crerr.New("remote cache returned non-200 status")

type Config struct {
	Timeout   time.Duration
	UserAgent string
}

type Client struct {
	client  *fasthttp.Client
	timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	name := strings.TrimSpace(cfg.UserAgent)
	if name == "" {
		name = "team-gamelog"
	}

	return &Client{
		client: &fasthttp.Client{
			Name:                name,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxBodyBytes,
		},
		timeout: timeout,
	}
}

// URL joins the base URL and the cache file name of key.
func URL(baseURL string, key cache.Key) (string, error) {
	base, err := ValidateBaseURL(baseURL)
	if err != nil {
		return "", err
	}
	if !key.Valid() {
		return "", cache.ErrInvalidKey
	}
	return base + "/" + url.PathEscape(key.FileName()), nil
}

// Fetch downloads and parses the cache file for key. Any non-200 reply is an error.
func (c *Client) Fetch(ctx context.Context, baseURL string, key cache.Key) (gamelog.GameLog, error) {
	target, err := URL(baseURL, key)
	if err != nil {
		return gamelog.GameLog{}, err
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("remote_cache.url", target), attribute.String("remote_cache.key", key.String()))
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/csv, */*")

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return gamelog.GameLog{}, err
	}
	if timeout <= 0 {
		return gamelog.GameLog{}, context.DeadlineExceeded
	}

	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		return gamelog.GameLog{}, crerr.Wrapf(err, "get %s", target)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return gamelog.GameLog{}, crerr.Wrapf(ErrUnexpectedStatus, "get %s status=%d", target, status)
	}

	body := bytes.Clone(resp.Body())
	log, err := tabular.DecodeGameLog(body)
	if err != nil {
		return gamelog.GameLog{}, crerr.Wrapf(err, "parse %s", target)
	}
	return log, nil
}

// ValidateBaseURL accepts absolute http(s) URLs and strips trailing slashes.
func ValidateBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("remote cache base url is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}
