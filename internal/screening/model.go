package screening

import (
	"github.com/google/uuid"

	"github.com/spigell/resume-screener/internal/explain"
)

// State is a pipeline lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateEmbedding  State = "embedding"
	StateRanking    State = "ranking"
	StateExplaining State = "explaining"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Document is a resume as received from a directory scan or an upload.
// Either Data or Path is set.
type Document struct {
	Name string
	Data []byte
	Path string
}

// Candidate is one resume moving through a run.
type Candidate struct {
	ID                string         `json:"id"`
	Text              string         `json:"-"`
	Embedding         []float32      `json:"-"`
	Score             float64        `json:"score"`
	Explanation       string         `json:"explanation,omitempty"`
	ExplanationSource explain.Source `json:"explanation_source,omitempty"`
	// ExtractionFailed is set when the text was replaced by an empty string.
	ExtractionFailed bool `json:"extraction_failed,omitempty"`
}

// JobDescription is the query side of a run.
type JobDescription struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

// Step describes the result of executing one pipeline stage.
type Step struct {
	Name       string  `json:"name"`
	Processed  int     `json:"processed"`
	Failed     int     `json:"failed"`
	DurationMS float64 `json:"duration_ms"`
}

// Run holds everything produced by one screening.
type Run struct {
	ID         uuid.UUID      `json:"id"`
	State      State          `json:"state"`
	Job        JobDescription `json:"job"`
	Candidates []*Candidate   `json:"candidates"`
	Steps      []Step         `json:"steps"`
	Err        error          `json:"-"`
	Error      string         `json:"error,omitempty"`
	Embedder   string         `json:"embedder,omitempty"`
	Explained  bool           `json:"explained"`
}

func newRun(job string, docs []Document) *Run {
	candidates := make([]*Candidate, len(docs))
	for i, doc := range docs {
		candidates[i] = &Candidate{ID: doc.Name}
	}

	return &Run{
		ID:         uuid.New(),
		State:      StateIdle,
		Job:        JobDescription{Text: job},
		Candidates: candidates,
		Steps:      make([]Step, 0, 4),
	}
}

func (r *Run) fail(err error) {
	r.State = StateFailed
	r.Err = err
	r.Error = err.Error()
}

// Len returns the number of candidates in the run.
func (r *Run) Len() int {
	return len(r.Candidates)
}
