package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/report"
	"github.com/spigell/resume-screener/internal/screening"
)

const (
	formFieldResumes = "resumes"
	formFieldJob     = "job"

	msgNoResumes = "Please upload at least one PDF resume."
	msgNoJob     = "Please provide a job description."
)

type page struct {
	Job       string
	Warnings  []string
	Error     string
	Submitted bool
	Explained bool
	Rows      []report.Row
}

// upload is the validated content of a screening form.
type upload struct {
	job      string
	docs     []screening.Document
	warnings []string
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", page{})
}

func (s *Server) screenForm(c *gin.Context) {
	in, problem, err := s.readUpload(c)
	if err != nil {
		c.HTML(http.StatusRequestEntityTooLarge, "index.html", page{Error: err.Error()})
		return
	}

	p := page{Job: in.job, Warnings: in.warnings, Submitted: problem == ""}
	if problem != "" {
		p.Warnings = append(p.Warnings, problem)
		c.HTML(http.StatusOK, "index.html", p)
		return
	}

	run, err := s.screener.Screen(c.Request.Context(), in.job, in.docs)
	if err != nil {
		p.Error = userMessage(err)
		c.HTML(http.StatusOK, "index.html", p)
		return
	}

	p.Rows = report.Rows(run.Candidates)
	p.Explained = run.Explained
	c.HTML(http.StatusOK, "index.html", p)
}

func (s *Server) screenAPI(c *gin.Context) {
	in, problem, err := s.readUpload(c)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": problem, "warnings": in.warnings})
		return
	}

	run, err := s.screener.Screen(c.Request.Context(), in.job, in.docs)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case screening.IsConfigurationError(err):
			status = http.StatusServiceUnavailable
		case screening.IsEmbeddingError(err):
			status = http.StatusBadGateway
		case errors.Is(err, screening.ErrEmptyJob):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"ok": false, "error": userMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"run_id":    run.ID.String(),
		"embedder":  run.Embedder,
		"results":   report.Rows(run.Candidates),
		"steps":     run.Steps,
		"warnings":  in.warnings,
		"explained": run.Explained,
	})
}

// readUpload parses the multipart form. A non-empty problem is a user input
// warning; err is returned only when the body could not be read at all.
func (s *Server) readUpload(c *gin.Context) (upload, string, error) {
	var in upload

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return in, "", fmt.Errorf("upload exceeds %d MB", s.maxUpload>>20)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return in, msgNoResumes, nil
		}
		return in, "", fmt.Errorf("reading upload: %w", err)
	}

	if values := form.Value[formFieldJob]; len(values) > 0 {
		in.job = strings.TrimSpace(values[0])
	}

	for _, fh := range form.File[formFieldResumes] {
		if !extract.IsPDF(fh.Filename) {
			in.warnings = append(in.warnings, fmt.Sprintf("Skipped non-PDF file: %s", fh.Filename))
			continue
		}

		data, err := readFile(fh)
		if err != nil {
			s.logger.Warn("reading uploaded file failed", zap.String("file", fh.Filename), zap.Error(err))
		}
		in.docs = append(in.docs, screening.Document{Name: fh.Filename, Data: data})
	}

	switch {
	case len(in.docs) == 0:
		return in, msgNoResumes, nil
	case in.job == "":
		return in, msgNoJob, nil
	}

	return in, "", nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func userMessage(err error) string {
	switch {
	case screening.IsConfigurationError(err):
		return fmt.Sprintf("Configuration error: %v", err)
	case screening.IsEmbeddingError(err):
		var embErr *screening.EmbeddingError
		errors.As(err, &embErr)
		return fmt.Sprintf("Embedding error: %v", embErr.Err)
	case errors.Is(err, screening.ErrEmptyJob):
		return msgNoJob
	default:
		return err.Error()
	}
}
