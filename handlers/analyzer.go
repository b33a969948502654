package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"factcheck/middleware"
	"factcheck/models"
	"factcheck/services"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

var errMissingInput = errors.New("either 'text' or 'url' is required")

// multipart framing allowance on top of the media limit
const uploadOverhead = 1 << 20

type AnalyzerHandler struct {
	normalizer *services.Normalizer
	service    *services.AnalyzerService
	maxUpload  int64
	limiter    middleware.Limiter
}

// NewAnalyzerHandler wires the analyze endpoints. limiter may be nil to
// disable rate limiting.
func NewAnalyzerHandler(normalizer *services.Normalizer, service *services.AnalyzerService, maxUpload int64, limiter middleware.Limiter) *AnalyzerHandler {
	return &AnalyzerHandler{
		normalizer: normalizer,
		service:    service,
		maxUpload:  maxUpload,
		limiter:    limiter,
	}
}

// Analyze handles {"text": "..."} and {"url": "..."} submissions and returns
// the final report.
func (h *AnalyzerHandler) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payload, err := h.normalizeRequest(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": rejectionMessage(err)})
		return
	}
	h.respond(c, payload)
}

// Upload handles a multipart image or video in the "file" field.
func (h *AnalyzerHandler) Upload(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+uploadOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrMediaTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "a 'file' field is required"})
		return
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrMediaTooLarge.Error()})
		return
	}

	data, err := readFormFile(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}

	payload, err := h.normalizer.NormalizeUpload(data, fh.Header.Get("Content-Type"), fh.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": rejectionMessage(err)})
		return
	}
	h.respond(c, payload)
}

func (h *AnalyzerHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": h.service.Provider(),
	})
}

func (h *AnalyzerHandler) respond(c *gin.Context, payload models.SubmissionPayload) {
	start := time.Now()
	logger := log.WithFields(log.Fields{
		"component": "http",
		"ip":        c.ClientIP(),
		"kind":      payload.Kind,
	})

	report, err := h.service.Analyze(c.Request.Context(), payload)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	logger.WithField("duration", time.Since(start).String()).Info("analysis served")
	c.JSON(http.StatusOK, models.AnalysisResponse{
		Submission:         payload,
		VerificationReport: report,
	})
}

func (h *AnalyzerHandler) normalizeRequest(ctx context.Context, req models.AnalysisRequest) (models.SubmissionPayload, error) {
	switch {
	case strings.TrimSpace(req.URL) != "":
		return h.normalizer.NormalizeURL(ctx, req.URL)
	case strings.TrimSpace(req.Text) != "":
		return h.normalizer.NormalizeText(req.Text)
	default:
		return models.SubmissionPayload{}, errMissingInput
	}
}

// rejectionMessage drops the diagnostic detail wrapped around input errors.
func rejectionMessage(err error) string {
	for _, known := range []error{services.ErrEmptySubmission, services.ErrUnsupportedMedia, services.ErrMediaTooLarge, errMissingInput} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
