package models

import (
	"errors"
	"fmt"
)

// ContentKind discriminates how a submission reaches the provider.
type ContentKind string

const (
	KindImage            ContentKind = "image"
	KindVideo            ContentKind = "video"
	KindPlatformLink     ContentKind = "platform_link"
	KindDirectMediaLink  ContentKind = "direct_media_link"
	KindMetadataOnlyLink ContentKind = "metadata_only_link"
	KindText             ContentKind = "text"
)

// HasMedia reports whether payloads of this kind carry inline bytes.
func (k ContentKind) HasMedia() bool {
	return k == KindImage || k == KindVideo || k == KindDirectMediaLink
}

// LinkOnly reports whether the provider only sees the reference URL.
func (k ContentKind) LinkOnly() bool {
	return k == KindPlatformLink || k == KindMetadataOnlyLink
}

var ErrInvalidPayload = errors.New("invalid submission payload")

// AnalysisRequest is the JSON body accepted by /api/analyze.
type AnalysisRequest struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// AnalysisResponse is the HTTP body for a completed analysis: the report
// fields at the top level plus what was submitted.
type AnalysisResponse struct {
	Submission SubmissionPayload `json:"submission"`
	*VerificationReport
}

// SubmissionPayload is the canonical form of one user submission.
type SubmissionPayload struct {
	Kind          ContentKind `json:"kind"`
	MediaBytes    []byte      `json:"-"`
	MediaMimeType string      `json:"media_mime_type,omitempty"`
	ReferenceURL  string      `json:"reference_url,omitempty"`
	TextBody      string      `json:"text_body,omitempty"`

	// DisplayName is shown next to the result and never sent to the provider.
	DisplayName string `json:"display_name,omitempty"`
}

// Validate checks that exactly the fields required by Kind are populated.
func (p SubmissionPayload) Validate() error {
	hasMedia := len(p.MediaBytes) > 0
	hasURL := p.ReferenceURL != ""
	hasText := p.TextBody != ""

	switch p.Kind {
	case KindImage, KindVideo:
		if !hasMedia || p.MediaMimeType == "" || hasURL || hasText {
			return fmt.Errorf("%w: %s requires media bytes and type only", ErrInvalidPayload, p.Kind)
		}
	case KindDirectMediaLink:
		if !hasMedia || p.MediaMimeType == "" || !hasURL || hasText {
			return fmt.Errorf("%w: %s requires media bytes, type and url", ErrInvalidPayload, p.Kind)
		}
	case KindPlatformLink, KindMetadataOnlyLink:
		if hasMedia || p.MediaMimeType != "" || !hasURL || hasText {
			return fmt.Errorf("%w: %s requires url only", ErrInvalidPayload, p.Kind)
		}
	case KindText:
		if hasMedia || p.MediaMimeType != "" || hasURL || !hasText {
			return fmt.Errorf("%w: %s requires text body only", ErrInvalidPayload, p.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPayload, p.Kind)
	}
	return nil
}

type ClaimStatus string

const (
	StatusCorrect      ClaimStatus = "Correct"
	StatusWrong        ClaimStatus = "Wrong"
	StatusUnverifiable ClaimStatus = "Unverifiable"
)

// ClaimStatuses lists the verdicts in the order the provider schema declares them.
var ClaimStatuses = []ClaimStatus{StatusCorrect, StatusWrong, StatusUnverifiable}

// TimestampNotApplicable marks claims that have no position in the media.
const TimestampNotApplicable = "N/A"

// VerificationReport is the outcome of one successful analysis.
type VerificationReport struct {
	AIDetection      AIDetection       `json:"aiDetection"`
	Claims           []Claim           `json:"claims"`
	GroundingSources []GroundingSource `json:"groundingSources"`
}

type AIDetection struct {
	Likelihood int      `json:"likelihood"` // 0-100
	Reasoning  string   `json:"reasoning"`
	Indicators []string `json:"indicators"`
}

type Claim struct {
	ID               string      `json:"id"`
	Statement        string      `json:"statement"`
	OriginalSentence string      `json:"originalSentence"`
	Timestamp        string      `json:"timestamp"` // MM:SS or N/A
	Status           ClaimStatus `json:"status"`
	Confidence       int         `json:"confidence"` // 0-100
	Explanation      string      `json:"explanation"`
}

type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// CountByStatus tallies claims per verdict.
func (r *VerificationReport) CountByStatus() map[ClaimStatus]int {
	out := make(map[ClaimStatus]int, len(ClaimStatuses))
	for _, c := range r.Claims {
		out[c.Status]++
	}
	return out
}
