package services

import (
	"context"
	"testing"

	"factcheck/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubClientProducesValidReports(t *testing.T) {
	svc := NewAnalyzerService(NewStubClient())

	text, err := svc.Analyze(context.Background(), models.SubmissionPayload{Kind: models.KindText, TextBody: "Water boils at 90C."})
	require.NoError(t, err)
	require.Len(t, text.Claims, 1)
	assert.Equal(t, models.StatusUnverifiable, text.Claims[0].Status)
	assert.Equal(t, models.TimestampNotApplicable, text.Claims[0].Timestamp)
	require.Len(t, text.GroundingSources, 1)
	assert.Equal(t, "Stub Reference", text.GroundingSources[0].Title)

	media, err := svc.Analyze(context.Background(), models.SubmissionPayload{
		Kind:          models.KindImage,
		MediaBytes:    pngBytes,
		MediaMimeType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "00:00", media.Claims[0].Timestamp)
	assert.GreaterOrEqual(t, media.AIDetection.Likelihood, 0)
	assert.LessOrEqual(t, media.AIDetection.Likelihood, 100)
}

func TestStubClientIsDeterministic(t *testing.T) {
	svc := NewAnalyzerService(NewStubClient())
	payload := models.SubmissionPayload{Kind: models.KindPlatformLink, ReferenceURL: "https://youtu.be/abc"}

	first, err := svc.Analyze(context.Background(), payload)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStubClientHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStubClient().GenerateContent(ctx, &GenerateRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
