package services

import (
	"context"
	"errors"
	"testing"

	"factcheck/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	resp  *GenerateResponse
	err   error
	calls int
	last  *GenerateRequest
}

func (c *fakeClient) Name() string { return "Fake" }

func (c *fakeClient) GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	c.calls++
	c.last = req
	return c.resp, c.err
}

func textResponse(text string, chunks ...GroundingChunk) *GenerateResponse {
	return &GenerateResponse{Candidates: []Candidate{{
		Content:           Content{Role: "model", Parts: []Part{{Text: text}}},
		FinishReason:      "STOP",
		GroundingMetadata: &GroundingMetadata{GroundingChunks: chunks},
	}}}
}

var textPayload = models.SubmissionPayload{Kind: models.KindText, TextBody: "The moon is made of cheese."}

func TestAnalyzeSuccess(t *testing.T) {
	client := &fakeClient{resp: textResponse(
		`{"aiDetection":{"likelihood":70,"reasoning":"Typical hoax phrasing.","indicators":["absurd claim"]},"claims":[{"id":"1","statement":"Moon is cheese","originalSentence":"The moon is made of cheese.","timestamp":"N/A","status":"Wrong","confidence":99,"explanation":"Lunar samples are rock."}]}`,
		GroundingChunk{Web: &WebChunk{URI: "https://nasa.gov/moon", Title: "NASA"}},
	)}
	svc := NewAnalyzerService(client)

	report, err := svc.Analyze(context.Background(), textPayload)
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 70, report.AIDetection.Likelihood)
	require.Len(t, report.Claims, 1)
	assert.Equal(t, models.StatusWrong, report.Claims[0].Status)
	assert.Equal(t, []models.GroundingSource{{Title: "NASA", URI: "https://nasa.gov/moon"}}, report.GroundingSources)
}

func TestAnalyzeNoClaimsIsSuccess(t *testing.T) {
	client := &fakeClient{resp: textResponse(`{"aiDetection":{"likelihood":5,"reasoning":"r","indicators":[]},"claims":[]}`)}

	report, err := NewAnalyzerService(client).Analyze(context.Background(), textPayload)
	require.NoError(t, err)
	assert.Empty(t, report.Claims)
	assert.NotNil(t, report.GroundingSources)
}

func TestAnalyzeFailuresAreUniform(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"transport", &fakeClient{err: errors.New("connection reset by peer")}},
		{"provider status", &fakeClient{err: ErrProviderStatus}},
		{"schema", &fakeClient{resp: textResponse(`{"aiDetection":{"reasoning":"r","indicators":[]},"claims":[]}`)}},
		{"not json", &fakeClient{resp: textResponse("Sorry, I cannot help with that.")}},
		{"no candidates", &fakeClient{resp: &GenerateResponse{}}},
		{"blocked", &fakeClient{resp: &GenerateResponse{PromptFeedback: &PromptFeedback{BlockReason: "SAFETY"}}}},
		{"nil response", &fakeClient{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := NewAnalyzerService(tt.client).Analyze(context.Background(), textPayload)
			assert.Nil(t, report)
			require.Error(t, err)
			assert.Equal(t, ErrAnalysisFailed, err)
			assert.Equal(t, "Failed to analyze content. Please try again.", err.Error())
			assert.Equal(t, 1, tt.client.calls, "exactly one provider call, no retries")
		})
	}
}

func TestAnalyzeInvalidPayloadNeverCallsProvider(t *testing.T) {
	client := &fakeClient{}
	_, err := NewAnalyzerService(client).Analyze(context.Background(), models.SubmissionPayload{Kind: models.KindImage})
	assert.Equal(t, ErrAnalysisFailed, err)
	assert.Zero(t, client.calls)
}

func TestAnalyzeSendsOneRequestPerPayload(t *testing.T) {
	client := &fakeClient{resp: textResponse(`{"aiDetection":{"likelihood":1,"reasoning":"r","indicators":[]},"claims":[]}`)}
	payload := models.SubmissionPayload{
		Kind:          models.KindVideo,
		MediaBytes:    []byte("video"),
		MediaMimeType: "video/mp4",
	}

	_, err := NewAnalyzerService(client).Analyze(context.Background(), payload)
	require.NoError(t, err)
	require.NotNil(t, client.last)
	assert.Equal(t, "video/mp4", client.last.Contents[0].Parts[0].InlineData.MimeType)
}

func TestFailureCause(t *testing.T) {
	assert.Equal(t, "schema", failureCause(ErrSchemaViolation))
	assert.Equal(t, "provider_status", failureCause(ErrProviderStatus))
	assert.Equal(t, "blocked", failureCause(ErrPromptBlocked))
	assert.Equal(t, "no_candidates", failureCause(ErrNoCandidates))
	assert.Equal(t, "invalid_payload", failureCause(models.ErrInvalidPayload))
	assert.Equal(t, "canceled", failureCause(context.Canceled))
	assert.Equal(t, "transport", failureCause(errors.New("boom")))
}
