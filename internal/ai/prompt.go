package ai

import (
	_ "embed"
	"strings"
)

//go:embed prompt.md
var systemPrompt string

// MaxExplanationLines bounds the explanation shown per candidate.
const MaxExplanationLines = 4

const emptyResumePlaceholder = "(no text)"

// SystemPrompt returns the instruction shared by every generative provider.
func SystemPrompt() string {
	return strings.TrimSpace(systemPrompt)
}

// UserPrompt builds the per-candidate message.
func UserPrompt(resumeText, jobText string) string {
	resume := strings.TrimSpace(resumeText)
	if resume == "" {
		resume = emptyResumePlaceholder
	}

	var b strings.Builder
	b.WriteString("Job description:\n")
	b.WriteString(strings.TrimSpace(jobText))
	b.WriteString("\n\nCandidate resume:\n")
	b.WriteString(resume)
	b.WriteString("\n\nRespond with a brief 3-4 line explanation.")
	return b.String()
}

// TrimExplanation keeps the first MaxExplanationLines non-blank lines.
func TrimExplanation(raw string) string {
	lines := make([]string, 0, MaxExplanationLines)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == MaxExplanationLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}
