package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/explain"
	"github.com/spigell/resume-screener/internal/screening"
)

type fakeScreener struct {
	run        *screening.Run
	err        error
	configured bool
	gotJob     string
	gotDocs    []screening.Document
}

func (f *fakeScreener) Screen(_ context.Context, job string, docs []screening.Document) (*screening.Run, error) {
	f.gotJob = job
	f.gotDocs = docs
	return f.run, f.err
}

func (f *fakeScreener) Configured() bool { return f.configured }

func rankedRun() *screening.Run {
	return &screening.Run{
		ID:        uuid.New(),
		State:     screening.StateDone,
		Embedder:  "fake",
		Explained: true,
		Candidates: []*screening.Candidate{
			{ID: "resume2.pdf", Score: 0.99504, Explanation: "Strong match.", ExplanationSource: explain.SourceHeuristic},
			{ID: "resume1.pdf", Score: 0.894427, Explanation: "Moderate match.", ExplanationSource: explain.SourceHeuristic},
		},
	}
}

func newTestServer(t *testing.T, screener *fakeScreener, maxMB int64) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := New(Config{Service: "resume-screener", Version: "test", MaxUploadMB: maxMB}, screener, zap.NewNop())
	require.NoError(t, err)
	return s
}

type file struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, job string, files ...file) (*bytes.Buffer, string) {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	require.NoError(t, w.WriteField(formFieldJob, job))
	for _, f := range files {
		part, err := w.CreateFormFile(formFieldResumes, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &b, w.FormDataContentType()
}

func do(s *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, &fakeScreener{}, 0)

	rec := do(s, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AI Resume Screener")
	assert.NotContains(t, rec.Body.String(), "Ranked results")
}

func TestScreenFormWarnings(t *testing.T) {
	tests := []struct {
		name  string
		job   string
		files []file
		want  []string
	}{
		{name: "no files", job: "Go developer", want: []string{msgNoResumes}},
		{name: "no job", job: "  ", files: []file{{name: "a.pdf", data: []byte("%PDF")}}, want: []string{msgNoJob}},
		{
			name:  "only non pdf",
			job:   "Go developer",
			files: []file{{name: "notes.txt", data: []byte("hi")}},
			want:  []string{"Skipped non-PDF file: notes.txt", msgNoResumes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screener := &fakeScreener{run: rankedRun(), configured: true}
			s := newTestServer(t, screener, 0)

			body, ct := multipartBody(t, tt.job, tt.files...)
			rec := do(s, http.MethodPost, "/", body, ct)

			assert.Equal(t, http.StatusOK, rec.Code)
			for _, w := range tt.want {
				assert.Contains(t, rec.Body.String(), w)
			}
			assert.Nil(t, screener.gotDocs, "screener must not run")
		})
	}
}

func TestScreenFormRendersResults(t *testing.T) {
	screener := &fakeScreener{run: rankedRun(), configured: true}
	s := newTestServer(t, screener, 0)

	body, ct := multipartBody(t, "Senior Go developer",
		file{name: "resume1.pdf", data: []byte("one")},
		file{name: "resume2.PDF", data: []byte("two")},
	)
	rec := do(s, http.MethodPost, "/", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "Ranked results")
	assert.Contains(t, html, "0.9950")
	assert.Contains(t, html, "1. resume2.pdf — 0.9950")
	assert.Contains(t, html, "Strong match.")
	assert.Less(t, strings.Index(html, "resume2.pdf"), strings.Index(html, "resume1.pdf"))

	assert.Equal(t, "Senior Go developer", screener.gotJob)
	require.Len(t, screener.gotDocs, 2)
	assert.Equal(t, "resume1.pdf", screener.gotDocs[0].Name)
	assert.Equal(t, []byte("two"), screener.gotDocs[1].Data)
}

func TestScreenFormShowsPipelineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "configuration",
			err:  &screening.ConfigurationError{Reason: "no embedding provider configured", Hint: "set OPENAI_API_KEY"},
			want: "Configuration error: no embedding provider configured",
		},
		{
			name: "embedding",
			err:  &screening.EmbeddingError{Stage: "resumes", Err: errors.New("quota exceeded")},
			want: "Embedding error: quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeScreener{err: tt.err}, 0)

			body, ct := multipartBody(t, "job", file{name: "a.pdf", data: []byte("x")})
			rec := do(s, http.MethodPost, "/", body, ct)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.NotContains(t, rec.Body.String(), "Ranked results")
		})
	}
}

func TestScreenAPI(t *testing.T) {
	screener := &fakeScreener{run: rankedRun(), configured: true}
	s := newTestServer(t, screener, 0)

	body, ct := multipartBody(t, "job", file{name: "resume1.pdf", data: []byte("x")}, file{name: "resume2.pdf", data: []byte("y")})
	rec := do(s, http.MethodPost, "/api/v1/screen", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK      bool `json:"ok"`
		Results []struct {
			Rank     int     `json:"rank"`
			Filename string  `json:"filename"`
			Score    float64 `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.OK)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "resume2.pdf", resp.Results[0].Filename)
	assert.Equal(t, 0.995, resp.Results[0].Score)
	assert.Equal(t, 2, resp.Results[1].Rank)
}

func TestScreenAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		job    string
		files  []file
		status int
	}{
		{name: "missing files", job: "job", status: http.StatusBadRequest},
		{name: "configuration", job: "job", files: []file{{name: "a.pdf"}}, err: &screening.ConfigurationError{Reason: "missing"}, status: http.StatusServiceUnavailable},
		{name: "embedding", job: "job", files: []file{{name: "a.pdf"}}, err: &screening.EmbeddingError{Stage: "job", Err: errors.New("down")}, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeScreener{err: tt.err}, 0)

			body, ct := multipartBody(t, tt.job, tt.files...)
			rec := do(s, http.MethodPost, "/api/v1/screen", body, ct)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"ok":false`)
		})
	}
}

func TestUploadLimit(t *testing.T) {
	s := newTestServer(t, &fakeScreener{run: rankedRun()}, 1)

	body, ct := multipartBody(t, "job", file{name: "big.pdf", data: bytes.Repeat([]byte("x"), 2<<20)})
	rec := do(s, http.MethodPost, "/api/v1/screen", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, &fakeScreener{configured: true}, 0)

	rec := do(s, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "resume-screener", health.Service)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, "configured", health.Embedder)

	rec = do(s, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
