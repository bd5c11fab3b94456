package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/topcine/topcinedb/internal/domain"
)

// retryStatusError marks responses worth another attempt (429 and 5xx).
type retryStatusError struct {
	status int
	url    string
}

func (e *retryStatusError) Error() string {
	return fmt.Sprintf("status %d from %s", e.status, e.url)
}

// Fetcher issues rate-limited requests against the target site through a
// shared connection-pooled client. Server-slot probes get their own short
// timeout so scanning ten mostly-empty slots stays fast.
type Fetcher struct {
	log         zerolog.Logger
	client      *http.Client
	probeClient *http.Client
	limiter     *rate.Limiter
	userAgent   string
	referer     string
}

func NewFetcher(cfg *domain.Config, log zerolog.Logger) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Fetcher{
		log:         log.With().Str("module", "fetch").Logger(),
		client:      &http.Client{Transport: transport, Timeout: cfg.PageTimeout},
		probeClient: &http.Client{Transport: transport, Timeout: cfg.ProbeTimeout},
		limiter:     rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		userAgent:   cfg.UserAgent,
		referer:     strings.TrimRight(cfg.BaseURL, "/") + "/",
	}
}

// Page fetches and parses an HTML page. The URL must be absolute http(s);
// any transport error, timeout, or non-2xx status comes back as an error
// the caller treats as "skip this node", never as fatal.
func (f *Fetcher) Page(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return nil, errors.Errorf("invalid URL scheme: %s", pageURL)
	}

	body, err := f.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Referer", f.referer)
		return req, nil
	}, f.client)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", pageURL)
	}
	return doc, nil
}

// PostFragment posts an x-www-form-urlencoded XHR to one of the site's
// theme AJAX endpoints and returns the raw HTML fragment. probe selects the
// short-timeout client used for server-slot scanning.
func (f *Fetcher) PostFragment(ctx context.Context, endpoint, referer string, form url.Values, probe bool) ([]byte, error) {
	client := f.client
	if probe {
		client = f.probeClient
	}
	body, err := f.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "*/*")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
		return req, nil
	}, client)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to post %s", endpoint)
	}
	return body, nil
}

// do runs one throttled request with bounded retry on 429/5xx. The request
// is rebuilt per attempt since the body reader is consumed.
func (f *Fetcher) do(ctx context.Context, build func() (*http.Request, error), client *http.Client) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			if err := f.limiter.Wait(ctx); err != nil {
				return err
			}
			req, err := build()
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return &retryStatusError{status: resp.StatusCode, url: req.URL.String()}
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("status %d from %s", resp.StatusCode, req.URL.String()))
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var rs *retryStatusError
			return errors.As(err, &rs)
		}),
		retry.OnRetry(func(n uint, err error) {
			f.log.Debug().Uint("attempt", n+1).Err(err).Msg("retrying request")
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// FirstIframeSrc returns the src of the first iframe in an HTML fragment,
// or "" when the fragment has none. The AJAX endpoints answer empty slots
// with fragments that simply lack the iframe.
func FirstIframeSrc(r io.Reader) string {
	root, err := html.Parse(r)
	if err != nil {
		return ""
	}
	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "iframe" {
			for _, attr := range n.Attr {
				if attr.Key == "src" {
					return strings.TrimSpace(attr.Val)
				}
			}
			return ""
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if src := walk(c); src != "" {
				return src
			}
		}
		return ""
	}
	return walk(root)
}

// Origin returns scheme://host for an absolute URL, falling back to the
// configured base when the URL does not parse.
func (f *Fetcher) Origin(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return strings.TrimRight(f.referer, "/")
}
