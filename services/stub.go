package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"factcheck/models"
)

// StubClient is a deterministic, no-network AIClient for local runs and CI.
// Its answers satisfy the report schema so the full mapping path is exercised.
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) Name() string { return "Stub" }

func (c *StubClient) GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := sha256.New()
	var instruction string
	hasMedia := false
	for _, content := range req.Contents {
		for _, p := range content.Parts {
			if p.InlineData != nil {
				hasMedia = true
				h.Write([]byte(p.InlineData.MimeType))
				h.Write([]byte(p.InlineData.Data))
			}
			if p.Text != "" {
				instruction = p.Text
				h.Write([]byte(p.Text))
			}
		}
	}
	sum := h.Sum(nil)
	short := hex.EncodeToString(sum[:4])

	timestamp := models.TimestampNotApplicable
	if hasMedia {
		timestamp = "00:00"
	}

	answer := map[string]any{
		"aiDetection": map[string]any{
			"likelihood": binary.BigEndian.Uint16(sum[4:6]) % 101,
			"reasoning":  fmt.Sprintf("Stubbed authenticity assessment (%s).", short),
			"indicators": []string{"stub provider", "no model inference performed"},
		},
		"claims": []map[string]any{{
			"id":               "claim-" + short,
			"statement":        "Stubbed claim summary.",
			"originalSentence": firstLine(instruction),
			"timestamp":        timestamp,
			"status":           string(models.StatusUnverifiable),
			"confidence":       50,
			"explanation":      "The stub provider does not verify claims.",
		}},
	}
	b, err := json.Marshal(answer)
	if err != nil {
		return nil, err
	}

	return &GenerateResponse{
		Candidates: []Candidate{{
			Content:      Content{Role: "model", Parts: []Part{{Text: string(b)}}},
			FinishReason: "STOP",
			GroundingMetadata: &GroundingMetadata{
				GroundingChunks: []GroundingChunk{
					{Web: &WebChunk{URI: "https://example.org/stub/" + short, Title: "Stub Reference"}},
				},
			},
		}},
	}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if line, _, ok := strings.Cut(s, "\n"); ok {
		return line
	}
	return s
}
