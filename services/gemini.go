package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var ErrProviderStatus = errors.New("provider returned an error status")

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
	Thought    bool        `json:"thought,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GoogleSearch struct{}

type Tool struct {
	GoogleSearch *GoogleSearch `json:"googleSearch,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	Tools            []Tool            `json:"tools,omitempty"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type GenerateResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type GroundingMetadata struct {
	WebSearchQueries []string         `json:"webSearchQueries,omitempty"`
	GroundingChunks  []GroundingChunk `json:"groundingChunks,omitempty"`
}

type GroundingChunk struct {
	Web *WebChunk `json:"web,omitempty"`
}

type WebChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Text joins the answer parts of the first candidate, skipping thought summaries.
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// GeminiClient calls generateContent over REST. It never retries.
type GeminiClient struct {
	baseURL string
	model   string
	apiKey  func() string
	http    *http.Client
}

// NewGeminiClient reads the key through apiKey on every call, so rotating the
// environment takes effect without a restart.
func NewGeminiClient(baseURL, model string, apiKey func() string, httpClient *http.Client) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   strings.TrimPrefix(strings.TrimSpace(model), "models/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

func (c *GeminiClient) Name() string { return "Gemini" }

func (c *GeminiClient) GenerateContent(ctx context.Context, body *GenerateRequest) (*GenerateResponse, error) {
	logger := log.WithFields(log.Fields{"component": "gemini", "model": c.model})

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != nil {
		req.Header.Set("x-goog-api-key", c.apiKey())
	}

	start := time.Now()
	logger.WithField("request_bytes", len(data)).Debug("sending generateContent")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generateContent request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	logger.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"bytes":    len(respBody),
		"duration": time.Since(start).String(),
	}).Debug("generateContent responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrProviderStatus, resp.StatusCode, truncate(string(respBody), 512))
	}

	var out GenerateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &out, nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
