package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response    string
	err         error
	lastSystem  string
	lastMessage string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestExplainerExplain(t *testing.T) {
	stub := &stubGenerator{response: "Strong Python background.\n\nLacks cloud exposure.\nGood team fit.\nRecommend interview.\nExtra line."}
	explainer := NewExplainer(stub, 0, zap.NewNop())

	text, err := explainer.Explain(context.Background(), "Python, Django", "Backend engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "Strong Python background.\nLacks cloud exposure.\nGood team fit.\nRecommend interview."
	if text != expected {
		t.Fatalf("unexpected explanation: %q", text)
	}

	if !strings.Contains(stub.lastSystem, "hiring analyst") {
		t.Fatalf("expected system prompt to be sent, got %q", stub.lastSystem)
	}

	if !strings.Contains(stub.lastMessage, "Job description:\nBackend engineer") {
		t.Fatalf("expected job description in prompt: %q", stub.lastMessage)
	}

	if !strings.Contains(stub.lastMessage, "Candidate resume:\nPython, Django") {
		t.Fatalf("expected resume in prompt: %q", stub.lastMessage)
	}
}

func TestExplainerPropagatesErrors(t *testing.T) {
	stub := &stubGenerator{err: errors.New("boom")}
	explainer := NewExplainer(stub, 0, zap.NewNop())

	if _, err := explainer.Explain(context.Background(), "r", "j"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExplainerRejectsBlankResponse(t *testing.T) {
	stub := &stubGenerator{response: "\n \n"}
	explainer := NewExplainer(stub, 0, zap.NewNop())

	if _, err := explainer.Explain(context.Background(), "r", "j"); err == nil {
		t.Fatal("expected error for blank response")
	}
}
