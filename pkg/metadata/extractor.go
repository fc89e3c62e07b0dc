package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultMaxBody  = 5 * 1024 * 1024
	MaxTextBytes    = 10 * 1024
	defaultAgent    = "research-library/1.0 (+metadata)"
	htmlContentType = "text/html"
)

var (
	ErrInvalidURL        = errors.New("invalid URL")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// StatusError is returned when the page answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, http.StatusText(e.Code))
}

// Metadata is what could be learned about a page.
type Metadata struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	SiteName    string   `json:"site_name"`
	Authors     []string `json:"authors"`
	PublishedAt string   `json:"published_at"`
	Doi         string   `json:"doi"`
	Image       string   `json:"image"`
	SourceType  string   `json:"source_type"`
	ContentType string   `json:"content_type"`
	Text        string   `json:"text"`
}

type Config struct {
	Timeout       time.Duration
	MaxBodyBytes  int64
	RatePerSecond float64
	Burst         int
	UserAgent     string

	// AllowPrivate lets fetches reach loopback and private addresses.
	// Only for local development and tests.
	AllowPrivate bool
}

// Extractor fetches pages with a shared outbound rate limit.
type Extractor struct {
	client    *http.Client
	limiter   *rate.Limiter
	maxBody   int64
	userAgent string
}

func NewExtractor(cfg Config) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBody
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultAgent
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Extractor{
		client:    &http.Client{Timeout: cfg.Timeout, Transport: newTransport(cfg.AllowPrivate)},
		limiter:   rate.NewLimiter(limit, burst),
		maxBody:   cfg.MaxBodyBytes,
		userAgent: cfg.UserAgent,
	}
}

// NormalizeURL trims raw, defaults the scheme to https and rejects anything
// that is not http(s) with a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	u.Fragment = ""
	return u.String(), nil
}

// Extract fetches rawURL and reads its metadata and readable text.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Metadata, error) {
	pageURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	// Redirects may have moved us.
	finalURL := resp.Request.URL
	contentType := mediaType(resp.Header.Get("Content-Type"))

	if contentType != htmlContentType && contentType != "application/xhtml+xml" {
		return fromURL(finalURL, contentType), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	md, err := parseHTML(body, finalURL)
	if err != nil {
		return nil, err
	}
	md.ContentType = contentType
	return md, nil
}

func mediaType(header string) string {
	if header == "" {
		return htmlContentType
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
	}
	return mt
}

// fromURL describes a non-HTML resource from its address alone.
func fromURL(u *url.URL, contentType string) *Metadata {
	title := path.Base(u.Path)
	if title == "/" || title == "." || title == "" {
		title = u.Host
	}
	if unescaped, err := url.PathUnescape(title); err == nil {
		title = unescaped
	}

	sourceType := "other"
	switch {
	case contentType == "application/pdf":
		sourceType = "pdf"
	case strings.HasPrefix(contentType, "video/"):
		sourceType = "video"
	}

	return &Metadata{
		URL:         u.String(),
		Title:       title,
		SiteName:    u.Host,
		Authors:     []string{},
		Doi:         findDOI(u.String()),
		SourceType:  sourceType,
		ContentType: contentType,
	}
}
