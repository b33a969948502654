package services

import (
	"encoding/base64"
	"fmt"

	"factcheck/models"
)

const basePrompt = `
Analyze the provided input.
1. Authenticity/Source Check:
   - If it's media, detect if it is AI-generated (0-100 likelihood).
   - If it's text or a claim, assess if the statement itself sounds synthetic or like misinformation/propaganda.
   Explain your reasoning and list the concrete indicators you relied on.
2. Fact-Checking: Extract specific factual claims.
   For each claim, you MUST provide:
   - 'id': A short identifier unique within this answer.
   - 'statement': A concise summary of the claim.
   - 'originalSentence': The exact words used.
   - 'timestamp': The approximate time (MM:SS) it appears (return 'N/A' for images or text).
   - 'status': 'Correct', 'Wrong', or 'Unverifiable' based on web grounding.
   - 'confidence': 0-100.
   - 'explanation': Brief reasoning behind the verification.
Always populate every field of the response schema. Return an empty claims list when there are no factual claims.
`

// BuildPrompt assembles the instruction text for a payload.
func BuildPrompt(p models.SubmissionPayload) string {
	switch {
	case p.Kind == models.KindText:
		return fmt.Sprintf("Statement to verify: \"%s\". %s Use Google Search to verify this specific statement/claim deeply.", p.TextBody, basePrompt)
	case p.Kind.LinkOnly():
		return fmt.Sprintf("Link: %s. %s Use Google Search to research this specific link/content.", p.ReferenceURL, basePrompt)
	default:
		return basePrompt
	}
}

// BuildRequest produces the single generateContent request for a payload.
// Media, when present, is attached before the instruction text.
func BuildRequest(p models.SubmissionPayload) *GenerateRequest {
	parts := make([]Part, 0, 2)
	if p.Kind.HasMedia() && len(p.MediaBytes) > 0 {
		parts = append(parts, Part{
			InlineData: &InlineData{
				MimeType: p.MediaMimeType,
				Data:     base64.StdEncoding.EncodeToString(p.MediaBytes),
			},
		})
	}
	parts = append(parts, Part{Text: BuildPrompt(p)})

	return &GenerateRequest{
		Contents: []Content{{Role: "user", Parts: parts}},
		Tools:    []Tool{{GoogleSearch: &GoogleSearch{}}},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   ReportSchema(),
		},
	}
}
