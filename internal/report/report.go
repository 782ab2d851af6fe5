package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spigell/resume-screener/internal/screening"
)

// Row is one line of the results table.
type Row struct {
	Rank        int     `json:"rank"`
	Filename    string  `json:"filename"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation,omitempty"`
	Source      string  `json:"explanation_source,omitempty"`
}

// Round4 rounds a score for display.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Lines renders the CLI ranking, one numbered line per candidate.
func Lines(candidates []*screening.Candidate) []string {
	lines := make([]string, 0, len(candidates))
	for i, c := range candidates {
		lines = append(lines, fmt.Sprintf("%2d. %s: %.4f", i+1, c.ID, c.Score))
	}
	return lines
}

// Rows converts ranked candidates into table rows.
func Rows(candidates []*screening.Candidate) []Row {
	rows := make([]Row, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, Row{
			Rank:        i + 1,
			Filename:    c.ID,
			Score:       Round4(c.Score),
			Explanation: c.Explanation,
			Source:      string(c.ExplanationSource),
		})
	}
	return rows
}

// Heading is the title of a candidate's explanation block.
func Heading(row Row) string {
	return fmt.Sprintf("%d. %s — %.4f", row.Rank, row.Filename, row.Score)
}

// DumpToTmpFile writes the run as indented JSON to a temp file and returns its path.
func DumpToTmpFile(run *screening.Run) (string, error) {
	file, err := os.CreateTemp("", "screening_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		*screening.Run
		Rows []Row `json:"rows"`
	}{Run: run, Rows: Rows(run.Candidates)}); err != nil {
		return "", err
	}
	return file.Name(), nil
}
