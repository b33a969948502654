package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"factcheck/models"

	"github.com/go-playground/validator/v10"
)

// Schema is the subset of the OpenAPI schema object accepted as responseSchema.
type Schema struct {
	Type             string             `json:"type"`
	Format           string             `json:"format,omitempty"`
	Enum             []string           `json:"enum,omitempty"`
	Properties       map[string]*Schema `json:"properties,omitempty"`
	PropertyOrdering []string           `json:"propertyOrdering,omitempty"`
	Items            *Schema            `json:"items,omitempty"`
	Required         []string           `json:"required,omitempty"`
}

const DefaultSourceTitle = "Reference Source"

var ErrSchemaViolation = errors.New("response does not match the report schema")

var claimFields = []string{"id", "statement", "originalSentence", "timestamp", "status", "confidence", "explanation"}

// ReportSchema is the fixed output contract sent with every request.
func ReportSchema() *Schema {
	statuses := make([]string, 0, len(models.ClaimStatuses))
	for _, s := range models.ClaimStatuses {
		statuses = append(statuses, string(s))
	}

	return &Schema{
		Type: "OBJECT",
		Properties: map[string]*Schema{
			"aiDetection": {
				Type: "OBJECT",
				Properties: map[string]*Schema{
					"likelihood": {Type: "NUMBER"},
					"reasoning":  {Type: "STRING"},
					"indicators": {Type: "ARRAY", Items: &Schema{Type: "STRING"}},
				},
				PropertyOrdering: []string{"likelihood", "reasoning", "indicators"},
				Required:         []string{"likelihood", "reasoning", "indicators"},
			},
			"claims": {
				Type: "ARRAY",
				Items: &Schema{
					Type: "OBJECT",
					Properties: map[string]*Schema{
						"id":               {Type: "STRING"},
						"statement":        {Type: "STRING"},
						"originalSentence": {Type: "STRING"},
						"timestamp":        {Type: "STRING"},
						"status":           {Type: "STRING", Format: "enum", Enum: statuses},
						"confidence":       {Type: "NUMBER"},
						"explanation":      {Type: "STRING"},
					},
					PropertyOrdering: claimFields,
					Required:         claimFields,
				},
			},
		},
		PropertyOrdering: []string{"aiDetection", "claims"},
		Required:         []string{"aiDetection", "claims"},
	}
}

// Pointer fields let the validator tell a missing field from a zero value.
type rawReport struct {
	AIDetection *rawAIDetection `json:"aiDetection" validate:"required"`
	Claims      []rawClaim      `json:"claims" validate:"required,dive"`
}

type rawAIDetection struct {
	Likelihood *float64 `json:"likelihood" validate:"required,min=0,max=100"`
	Reasoning  *string  `json:"reasoning" validate:"required"`
	Indicators []string `json:"indicators" validate:"required"`
}

type rawClaim struct {
	ID               *string  `json:"id" validate:"required,min=1"`
	Statement        *string  `json:"statement" validate:"required"`
	OriginalSentence *string  `json:"originalSentence" validate:"required"`
	Timestamp        *string  `json:"timestamp" validate:"required"`
	Status           *string  `json:"status" validate:"required"`
	Confidence       *float64 `json:"confidence" validate:"required,min=0,max=100"`
	Explanation      *string  `json:"explanation" validate:"required"`
}

var validate = validator.New()

// ParseReport strictly decodes the structured answer. Grounding sources are
// filled in separately; the returned report carries an empty list.
func ParseReport(text string) (*models.VerificationReport, error) {
	body := strings.TrimSpace(stripCodeFence(text))
	if body == "" {
		return nil, fmt.Errorf("%w: empty response text", ErrSchemaViolation)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var raw rawReport
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after report object", ErrSchemaViolation)
	}
	if err := validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	report := &models.VerificationReport{
		AIDetection: models.AIDetection{
			Likelihood: int(math.Round(*raw.AIDetection.Likelihood)),
			Reasoning:  *raw.AIDetection.Reasoning,
			Indicators: raw.AIDetection.Indicators,
		},
		Claims:           make([]models.Claim, 0, len(raw.Claims)),
		GroundingSources: []models.GroundingSource{},
	}

	seen := make(map[string]bool, len(raw.Claims))
	for i, rc := range raw.Claims {
		id := strings.TrimSpace(*rc.ID)
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate claim id %q at index %d", ErrSchemaViolation, id, i)
		}
		seen[id] = true

		status, ok := canonicalStatus(*rc.Status)
		if !ok {
			return nil, fmt.Errorf("%w: claim %q has unknown status %q", ErrSchemaViolation, id, *rc.Status)
		}

		report.Claims = append(report.Claims, models.Claim{
			ID:               id,
			Statement:        *rc.Statement,
			OriginalSentence: *rc.OriginalSentence,
			Timestamp:        canonicalTimestamp(*rc.Timestamp),
			Status:           status,
			Confidence:       int(math.Round(*rc.Confidence)),
			Explanation:      *rc.Explanation,
		})
	}

	return report, nil
}

// ExtractGroundingSources maps web citations of the first candidate. The
// result is never nil.
func ExtractGroundingSources(resp *GenerateResponse) []models.GroundingSource {
	sources := []models.GroundingSource{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return sources
	}

	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || strings.TrimSpace(chunk.Web.URI) == "" {
			continue
		}
		title := strings.TrimSpace(chunk.Web.Title)
		if title == "" {
			title = DefaultSourceTitle
		}
		sources = append(sources, models.GroundingSource{Title: title, URI: chunk.Web.URI})
	}
	return sources
}

func canonicalStatus(s string) (models.ClaimStatus, bool) {
	for _, status := range models.ClaimStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(status)) {
			return status, true
		}
	}
	return "", false
}

func canonicalTimestamp(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" || strings.EqualFold(ts, models.TimestampNotApplicable) {
		return models.TimestampNotApplicable
	}
	return ts
}

// stripCodeFence unwraps ```json fenced answers.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
