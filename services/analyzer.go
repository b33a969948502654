package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"factcheck/metrics"
	"factcheck/models"

	"github.com/apex/log"
)

// FailureMessage is the only failure text callers ever see.
const FailureMessage = "Failed to analyze content. Please try again."

var ErrAnalysisFailed = errors.New(FailureMessage)

var (
	ErrNoCandidates  = errors.New("provider returned no candidates")
	ErrPromptBlocked = errors.New("provider blocked the prompt")
)

// AIClient is the external multimodal provider (Gemini, or the stub).
type AIClient interface {
	GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Name() string
}

type AnalyzerService struct {
	client AIClient
}

func NewAnalyzerService(client AIClient) *AnalyzerService {
	return &AnalyzerService{client: client}
}

func (s *AnalyzerService) Provider() string { return s.client.Name() }

// Analyze issues exactly one provider call for the payload. Every failure is
// reported as ErrAnalysisFailed; the underlying cause is only logged.
func (s *AnalyzerService) Analyze(ctx context.Context, payload models.SubmissionPayload) (*models.VerificationReport, error) {
	logger := log.WithFields(log.Fields{
		"component": "analyzer",
		"provider":  s.client.Name(),
		"kind":      payload.Kind,
	})
	logger.Info("analysis started")
	start := time.Now()

	report, err := s.analyze(ctx, payload)
	elapsed := time.Since(start)
	if err != nil {
		cause := failureCause(err)
		logger.WithError(err).WithFields(log.Fields{"cause": cause, "duration": elapsed.String()}).Error("analysis failed")
		metrics.AnalysesTotal.WithLabelValues(string(payload.Kind), "failed").Inc()
		metrics.AnalysisDurationSeconds.WithLabelValues("failed").Observe(elapsed.Seconds())
		metrics.FailuresTotal.WithLabelValues(cause).Inc()
		return nil, ErrAnalysisFailed
	}

	logger.WithFields(log.Fields{
		"likelihood": report.AIDetection.Likelihood,
		"claims":     len(report.Claims),
		"sources":    len(report.GroundingSources),
		"duration":   elapsed.String(),
	}).Info("analysis completed")
	metrics.AnalysesTotal.WithLabelValues(string(payload.Kind), "ok").Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues("ok").Observe(elapsed.Seconds())
	return report, nil
}

func (s *AnalyzerService) analyze(ctx context.Context, payload models.SubmissionPayload) (*models.VerificationReport, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.client.GenerateContent(ctx, BuildRequest(payload))
	if err != nil {
		return nil, fmt.Errorf("%s call: %w", s.client.Name(), err)
	}
	return MapResponse(resp)
}

// MapResponse assembles a report from the structured answer and the grounding
// metadata. It is all or nothing.
func MapResponse(resp *GenerateResponse) (*models.VerificationReport, error) {
	if resp == nil {
		return nil, ErrNoCandidates
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrPromptBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrNoCandidates
	}

	report, err := ParseReport(resp.Text())
	if err != nil {
		if reason := resp.Candidates[0].FinishReason; reason != "" && reason != "STOP" {
			return nil, fmt.Errorf("finish reason %s: %w", reason, err)
		}
		return nil, err
	}
	report.GroundingSources = ExtractGroundingSources(resp)
	return report, nil
}

func failureCause(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrSchemaViolation):
		return "schema"
	case errors.Is(err, ErrProviderStatus):
		return "provider_status"
	case errors.Is(err, ErrPromptBlocked):
		return "blocked"
	case errors.Is(err, ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transport"
	}
}
