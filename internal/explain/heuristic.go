// Package explain produces the short match verdict shown next to every ranked
// candidate.
package explain

import (
	"context"
	"fmt"
	"strings"
)

// Tier is the coarse match quality derived from category coverage.
type Tier string

const (
	TierStrong   Tier = "strong"
	TierModerate Tier = "moderate"
	TierPartial  Tier = "partial"
	TierLimited  Tier = "limited"
)

// Category is a skill area recognised by a set of lower-case trigger terms.
type Category struct {
	Name  string
	Terms []string
}

// Categories is the fixed skill table. Order matters only for reporting.
var Categories = []Category{
	{Name: "python", Terms: []string{"python", "py"}},
	{Name: "machine learning", Terms: []string{"machine learning", "ml", "deep learning", "neural"}},
	{Name: "data", Terms: []string{"data", "analytics", "analysis"}},
	{Name: "backend", Terms: []string{"backend", "api", "server"}},
	{Name: "frontend", Terms: []string{"frontend", "react", "vue", "typescript", "javascript"}},
	{Name: "sql", Terms: []string{"sql", "database", "postgres", "mysql"}},
	{Name: "cloud", Terms: []string{"aws", "cloud", "azure", "gcp"}},
	{Name: "leadership", Terms: []string{"led", "managed", "director", "manager", "team lead"}},
}

// Assessment is the structured outcome of the keyword heuristic.
type Assessment struct {
	Tier     Tier
	Matched  int
	Required int
	Coverage float64
	// RequiredCategories and MatchedCategories follow the order of Categories.
	RequiredCategories []string
	MatchedCategories  []string
}

// Heuristic explains a match by keyword overlap between the job description
// and the resume. It never fails and never calls out.
type Heuristic struct{}

// NewHeuristic returns the keyword-overlap explainer.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Explain implements ai.Explainer. The error is always nil.
func (h *Heuristic) Explain(_ context.Context, resumeText, jobText string) (string, error) {
	return Render(Assess(resumeText, jobText)), nil
}

// Assess computes category coverage of the job requirements by the resume.
func Assess(resumeText, jobText string) Assessment {
	job := strings.ToLower(jobText)
	resume := strings.ToLower(resumeText)

	var a Assessment
	for _, category := range Categories {
		if !containsAny(job, category.Terms) {
			continue
		}

		a.RequiredCategories = append(a.RequiredCategories, category.Name)
		if containsAny(resume, category.Terms) {
			a.MatchedCategories = append(a.MatchedCategories, category.Name)
		}
	}

	a.Required = len(a.RequiredCategories)
	a.Matched = len(a.MatchedCategories)
	if a.Required > 0 {
		a.Coverage = float64(a.Matched) / float64(a.Required)
	}

	switch {
	case a.Coverage > 0.75:
		a.Tier = TierStrong
	case a.Coverage > 0.5:
		a.Tier = TierModerate
	case a.Coverage > 0.25:
		a.Tier = TierPartial
	default:
		a.Tier = TierLimited
	}

	return a
}

// Render turns an assessment into the sentence shown to the user.
func Render(a Assessment) string {
	switch a.Tier {
	case TierStrong:
		return fmt.Sprintf("Strong match. Resume aligns well with %d/%d key job requirements. Good technical fit.", a.Matched, a.Required)
	case TierModerate:
		return fmt.Sprintf("Moderate match. Resume covers %d/%d key requirements. Could be a viable candidate with minor gaps.", a.Matched, a.Required)
	case TierPartial:
		return fmt.Sprintf("Partial match. Only %d/%d key requirements found. Significant skill gaps present.", a.Matched, a.Required)
	default:
		return fmt.Sprintf("Limited match. Minimal alignment with job requirements (%d/%d key requirements). May need additional training.", a.Matched, a.Required)
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
