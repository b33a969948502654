package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
)

var (
	ErrFetchStatus   = errors.New("unexpected fetch status")
	ErrNotMedia      = errors.New("resource is not an image or video")
	ErrFetchTooLarge = errors.New("resource exceeds media size limit")
	ErrEmptyBody     = errors.New("resource body is empty")
)

// FetchOutcome is everything the link classifier needs to know about one GET.
type FetchOutcome struct {
	Body        []byte
	ContentType string
	StatusCode  int
	Err         error
}

// LinkFetcher retrieves a pasted URL once. Failures are reported in the
// outcome, never as a separate error.
type LinkFetcher interface {
	Fetch(ctx context.Context, rawURL string) FetchOutcome
}

type ContentFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewContentFetcher(timeout time.Duration, maxBytes int64) *ContentFetcher {
	return &ContentFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

func (f *ContentFetcher) Fetch(ctx context.Context, rawURL string) FetchOutcome {
	logger := log.WithFields(log.Fields{"component": "fetcher", "url": rawURL})
	logger.Debug("fetching link")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FetchOutcome{Err: fmt.Errorf("build request: %w", err)}
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "image/*,video/*;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchOutcome{Err: fmt.Errorf("fetch: %w", err)}
	}
	defer resp.Body.Close()

	out := FetchOutcome{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	logger.WithFields(log.Fields{"status": resp.StatusCode, "content_type": out.ContentType}).Debug("link responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out.Err = fmt.Errorf("%w: %d", ErrFetchStatus, resp.StatusCode)
		return out
	}
	if !isMediaType(mediaTypeOf(out.ContentType)) {
		out.Err = fmt.Errorf("%w: %q", ErrNotMedia, out.ContentType)
		return out
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		out.Err = fmt.Errorf("%w: %d bytes", ErrFetchTooLarge, resp.ContentLength)
		return out
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		out.Err = fmt.Errorf("read body: %w", err)
		return out
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		out.Err = fmt.Errorf("%w: more than %d bytes", ErrFetchTooLarge, f.maxBytes)
		return out
	}
	if len(body) == 0 {
		out.Err = ErrEmptyBody
		return out
	}

	out.Body = body
	logger.WithField("bytes", len(body)).Debug("link fetched")
	return out
}

// mediaTypeOf strips parameters from a Content-Type value.
func mediaTypeOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return strings.ToLower(mt)
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func isMediaType(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "video/")
}
