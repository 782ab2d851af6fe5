package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/resume-screener/internal/screening"
)

func rankedRun(explained bool) *screening.Run {
	return &screening.Run{
		State: screening.StateDone,
		Candidates: []*screening.Candidate{
			{ID: "resume2.pdf", Score: 0.99504, Explanation: "Strong match.\nPython: yes"},
			{ID: "resume1.pdf", Score: 0.41, Explanation: "Limited match."},
		},
		Explained: explained,
	}
}

func TestPrintRanking(t *testing.T) {
	tests := []struct {
		name      string
		explained bool
		want      string
	}{
		{
			name: "scores only",
			want: "\nRanked candidates:\n" +
				" 1. resume2.pdf: 0.9950\n" +
				" 2. resume1.pdf: 0.4100\n",
		},
		{
			name:      "with explanations",
			explained: true,
			want: "\nRanked candidates:\n" +
				" 1. resume2.pdf: 0.9950\n" +
				"    Strong match.\n" +
				"    Python: yes\n" +
				" 2. resume1.pdf: 0.4100\n" +
				"    Limited match.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printRanking(&out, rankedRun(tt.explained))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestProgressPrinter(t *testing.T) {
	var out bytes.Buffer
	progress := progressPrinter(&out)

	for _, state := range []screening.State{
		screening.StateExtracting,
		screening.StateEmbedding,
		screening.StateRanking,
		screening.StateExplaining,
		screening.StateDone,
	} {
		progress(state)
	}

	assert.Equal(t, "Extracting text from PDFs...\n"+
		"Generating embeddings...\n"+
		"Generating explanations...\n", out.String())
}

func TestPrintNoResumes(t *testing.T) {
	var out bytes.Buffer
	printNoResumes(&out)

	assert.Equal(t, "Extracting text from PDFs...\nNo PDF resumes found in the directory.\n", out.String())
}
