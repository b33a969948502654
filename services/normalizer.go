package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"factcheck/metrics"
	"factcheck/models"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
)

// Input rejections. None of these reach the provider.
var (
	ErrEmptySubmission  = errors.New("submission is empty")
	ErrUnsupportedMedia = errors.New("only image and video files are supported")
	ErrMediaTooLarge    = errors.New("media file is too large")
)

const (
	displayPlatform = "Platform Video"
	displayMetadata = "Metadata Analysis"
	displayText     = "Text Claim"
	displayRemote   = "remote-content"
	displayUpload   = "Uploaded Media"
)

// Normalizer turns raw user input into a single SubmissionPayload.
type Normalizer struct {
	fetcher       LinkFetcher
	platforms     *PlatformMatcher
	maxMediaBytes int64
}

func NewNormalizer(fetcher LinkFetcher, platforms *PlatformMatcher, maxMediaBytes int64) *Normalizer {
	if platforms == nil {
		platforms = NewPlatformMatcher()
	}
	return &Normalizer{
		fetcher:       fetcher,
		platforms:     platforms,
		maxMediaBytes: maxMediaBytes,
	}
}

// NormalizeUpload classifies an uploaded file by its declared type, sniffing the
// content only when the client declared nothing useful.
func (n *Normalizer) NormalizeUpload(data []byte, declaredType, fileName string) (models.SubmissionPayload, error) {
	if len(data) == 0 {
		return models.SubmissionPayload{}, ErrEmptySubmission
	}
	if n.maxMediaBytes > 0 && int64(len(data)) > n.maxMediaBytes {
		return models.SubmissionPayload{}, fmt.Errorf("%w: %d bytes, limit %d", ErrMediaTooLarge, len(data), n.maxMediaBytes)
	}

	mediaType := mediaTypeOf(declaredType)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mediaTypeOf(mimetype.Detect(data).String())
	}

	var kind models.ContentKind
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		kind = models.KindImage
	case strings.HasPrefix(mediaType, "video/"):
		kind = models.KindVideo
	default:
		return models.SubmissionPayload{}, fmt.Errorf("%w: %q", ErrUnsupportedMedia, mediaType)
	}

	name := strings.TrimSpace(fileName)
	if name == "" {
		name = displayUpload
	}

	return models.SubmissionPayload{
		Kind:          kind,
		MediaBytes:    data,
		MediaMimeType: mediaType,
		DisplayName:   name,
	}, nil
}

// NormalizeText keeps the statement verbatim; only blank input is rejected.
func (n *Normalizer) NormalizeText(text string) (models.SubmissionPayload, error) {
	if strings.TrimSpace(text) == "" {
		return models.SubmissionPayload{}, ErrEmptySubmission
	}
	return models.SubmissionPayload{
		Kind:        models.KindText,
		TextBody:    text,
		DisplayName: displayText,
	}, nil
}

// NormalizeURL classifies a pasted link. Platform links are never fetched; any
// other link gets exactly one GET, and every fetch failure degrades to a
// metadata-only submission instead of an error.
func (n *Normalizer) NormalizeURL(ctx context.Context, rawURL string) (models.SubmissionPayload, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return models.SubmissionPayload{}, ErrEmptySubmission
	}
	logger := log.WithFields(log.Fields{"component": "normalizer", "url": rawURL})

	if n.platforms.IsPlatformLink(rawURL) {
		logger.Info("platform link, analyzing by reference")
		metrics.LinkClassificationsTotal.WithLabelValues(string(models.KindPlatformLink)).Inc()
		return models.SubmissionPayload{
			Kind:         models.KindPlatformLink,
			ReferenceURL: rawURL,
			DisplayName:  displayPlatform,
		}, nil
	}

	var outcome FetchOutcome
	if n.fetcher == nil {
		outcome = FetchOutcome{Err: errors.New("no fetcher configured")}
	} else {
		outcome = n.fetcher.Fetch(ctx, rawURL)
	}

	payload := ClassifyLink(rawURL, outcome)
	if payload.Kind == models.KindMetadataOnlyLink {
		logger.WithError(linkFailureCause(outcome)).Warn("unable to fetch direct file, falling back to metadata analysis")
	} else {
		logger.WithFields(log.Fields{"mime": payload.MediaMimeType, "bytes": len(payload.MediaBytes)}).Info("direct media link fetched")
	}
	metrics.LinkClassificationsTotal.WithLabelValues(string(payload.Kind)).Inc()
	return payload, nil
}

// ClassifyLink decides between a direct media link and a metadata-only link
// from a fetch outcome. It performs no I/O.
func ClassifyLink(rawURL string, outcome FetchOutcome) models.SubmissionPayload {
	mediaType := mediaTypeOf(outcome.ContentType)
	if outcome.Err == nil && isMediaType(mediaType) && len(outcome.Body) > 0 {
		return models.SubmissionPayload{
			Kind:          models.KindDirectMediaLink,
			MediaBytes:    outcome.Body,
			MediaMimeType: mediaType,
			ReferenceURL:  rawURL,
			DisplayName:   remoteName(rawURL),
		}
	}
	return models.SubmissionPayload{
		Kind:         models.KindMetadataOnlyLink,
		ReferenceURL: rawURL,
		DisplayName:  displayMetadata,
	}
}

func linkFailureCause(outcome FetchOutcome) error {
	switch {
	case outcome.Err != nil:
		return outcome.Err
	case len(outcome.Body) == 0:
		return ErrEmptyBody
	default:
		return fmt.Errorf("%w: %q", ErrNotMedia, outcome.ContentType)
	}
}

func remoteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return displayRemote
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return displayRemote
	}
	return base
}
