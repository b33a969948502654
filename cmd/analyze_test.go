package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"factcheck/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestAnalyzeTextJSON(t *testing.T) {
	t.Setenv("PROVIDER", "stub")

	out, err := runCLI(t, "analyze", "--text", "Mount Everest is 8,849 m tall.", "--json")
	require.NoError(t, err)

	var resp struct {
		Submission models.SubmissionPayload `json:"submission"`
		Claims     []models.Claim           `json:"claims"`
		Sources    []models.GroundingSource `json:"groundingSources"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, models.KindText, resp.Submission.Kind)
	assert.Equal(t, "Mount Everest is 8,849 m tall.", resp.Submission.TextBody)
	assert.Len(t, resp.Claims, 1)
	assert.Len(t, resp.Sources, 1)
}

func TestAnalyzeFileText(t *testing.T) {
	t.Setenv("PROVIDER", "stub")

	path := filepath.Join(t.TempDir(), "frame.png")
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	require.NoError(t, os.WriteFile(path, png, 0o600))

	out, err := runCLI(t, "analyze", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Source: frame.png (image)")
	assert.Contains(t, out, "Found 1 claims and 1 verified sources.")
	assert.Contains(t, out, "Knowledge Grounding:")
}

func TestAnalyzePlatformLink(t *testing.T) {
	t.Setenv("PROVIDER", "stub")

	out, err := runCLI(t, "analyze", "--url", "https://vimeo.com/76979871")
	require.NoError(t, err)
	assert.Contains(t, out, "Source: Platform Video (platform_link)")
	assert.Contains(t, out, "Link: https://vimeo.com/76979871")
}

func TestAnalyzeFlagValidation(t *testing.T) {
	t.Setenv("PROVIDER", "stub")

	_, err := runCLI(t, "analyze")
	assert.Error(t, err)

	_, err = runCLI(t, "analyze", "--text", "a", "--url", "https://x.com")
	assert.Error(t, err)
}

func TestAnalyzeRejectsUnsupportedFile(t *testing.T) {
	t.Setenv("PROVIDER", "stub")

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some notes"), 0o600))

	_, err := runCLI(t, "analyze", "--file", path)
	assert.ErrorContains(t, err, "only image and video files are supported")
}

func TestUnknownProvider(t *testing.T) {
	t.Setenv("PROVIDER", "openai")

	_, err := runCLI(t, "analyze", "--text", "x")
	assert.ErrorContains(t, err, `unknown provider "openai"`)
}

func TestAnalyzeFailureMessage(t *testing.T) {
	t.Setenv("PROVIDER", "gemini")
	t.Setenv("GEMINI_BASE_URL", "http://127.0.0.1:1/v1beta")
	t.Setenv("GEMINI_API_KEY", "k")

	_, err := runCLI(t, "analyze", "--text", "x")
	assert.EqualError(t, err, "Failed to analyze content. Please try again.")
}
