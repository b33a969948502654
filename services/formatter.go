package services

import (
	"fmt"
	"strings"

	"factcheck/models"
)

func clamp(n, max int) int {
	if n > max {
		return max
	}
	if n < 0 {
		return 0
	}
	return n
}

// Verdict buckets the AI likelihood the way result cards label it.
func Verdict(likelihood int) string {
	switch {
	case likelihood > 70:
		return "Likely AI / Fake"
	case likelihood > 30:
		return "Suspicious"
	default:
		return "Authentic"
	}
}

// FormatReport renders a report as plain text for terminals.
func FormatReport(p models.SubmissionPayload, r *models.VerificationReport) string {
	var b strings.Builder

	if p.DisplayName != "" {
		b.WriteString(fmt.Sprintf("Source: %s (%s)\n", p.DisplayName, p.Kind))
	}
	if p.ReferenceURL != "" {
		b.WriteString(fmt.Sprintf("Link: %s\n", p.ReferenceURL))
	}

	heading := "Authenticity Baseline"
	if p.Kind == models.KindText {
		heading = "Authenticity / Bias"
	}
	score := clamp(r.AIDetection.Likelihood, 100)
	filled := (score + 5) / 10
	b.WriteString(fmt.Sprintf("\n%s: %s\n", heading, Verdict(score)))
	b.WriteString("[")
	b.WriteString(strings.Repeat("█", filled))
	b.WriteString(strings.Repeat("░", 10-filled))
	b.WriteString(fmt.Sprintf("] %d/100 AI likelihood\n", score))

	if r.AIDetection.Reasoning != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", r.AIDetection.Reasoning))
	}
	if len(r.AIDetection.Indicators) > 0 {
		b.WriteString(fmt.Sprintf("Indicators: %s\n", strings.Join(r.AIDetection.Indicators, ", ")))
	}

	b.WriteString(fmt.Sprintf("\nFound %d claims and %d verified sources.\n", len(r.Claims), len(r.GroundingSources)))
	if len(r.Claims) > 0 {
		counts := r.CountByStatus()
		b.WriteString(fmt.Sprintf("Correct %d, Wrong %d, Unverifiable %d\n",
			counts[models.StatusCorrect], counts[models.StatusWrong], counts[models.StatusUnverifiable]))
	}

	if len(r.Claims) == 0 {
		b.WriteString("\nNo claims detected\n")
	}
	for _, c := range r.Claims {
		b.WriteString(fmt.Sprintf("\n%s %s (%d%%)", statusMark(c.Status), c.Status, c.Confidence))
		if c.Timestamp != models.TimestampNotApplicable {
			b.WriteString(" @ " + c.Timestamp)
		}
		b.WriteString("\n  " + c.Statement + "\n")
		if c.OriginalSentence != "" {
			b.WriteString(fmt.Sprintf("  %q\n", c.OriginalSentence))
		}
		if c.Explanation != "" {
			b.WriteString("  " + c.Explanation + "\n")
		}
	}

	if len(r.GroundingSources) > 0 {
		b.WriteString("\nKnowledge Grounding:\n")
		for _, s := range r.GroundingSources {
			b.WriteString(fmt.Sprintf("• %s - %s\n", s.Title, s.URI))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func statusMark(s models.ClaimStatus) string {
	switch s {
	case models.StatusCorrect:
		return "✓"
	case models.StatusWrong:
		return "✗"
	default:
		return "?"
	}
}
