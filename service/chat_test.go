package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/model"
)

func analysedDoc(t *testing.T) *model.Document {
	t.Helper()
	report, err := NewAnalyzer(testAnalysisConfig(), nil).Analyze(context.Background(), sampleNDAText)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return &model.Document{ID: "doc-1", Filename: "nda.txt", Report: report}
}

func TestRuleGenerator(t *testing.T) {
	tests := []struct {
		question string
		contains string
	}{
		{"Is there a non-compete?", "restrict competition"},
		{"How long does this last?", "NDA duration varies"},
		{"What happens on breach?", "remedies or penalties"},
		{"Can I end the Termination clause?", "Suggested negotiation"},
		{"Hello", "No immediate negotiation points"},
	}

	for _, tt := range tests {
		reply, err := RuleGenerator{}.Generate(context.Background(), "", nil, tt.question)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.Contains(reply, tt.contains) {
			t.Errorf("Reply to %q: expected %q in %q", tt.question, tt.contains, reply)
		}
		if !strings.HasSuffix(reply, attorneyReminder) {
			t.Errorf("Expected attorney reminder in %q", reply)
		}
	}
}

func TestOpenAIGenerator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Expected /v1/chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Error("Expected Authorization header")
		}
		var req chatRequest
		decodeJSON(t, r, &req)
		if req.Model != "local" || req.MaxTokens != 128 {
			t.Errorf("Unexpected request %+v", req)
		}
		if len(req.Messages) != 4 || req.Messages[0].Role != "system" || req.Messages[3].Content != "What is the term?" {
			t.Errorf("Unexpected messages %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": " Five years. "}}},
		})
	}))
	defer server.Close()

	g := NewOpenAIGenerator(&config.ChatConfig{BaseURL: server.URL + "/v1", APIKey: "key", Model: "local", MaxTokens: 128, TimeoutSeconds: 5})
	history := []model.ChatTurn{
		{Role: model.RoleUser, Content: "Hi"},
		{Role: model.RoleAssistant, Content: "Hello"},
	}

	reply, err := g.Generate(context.Background(), "system", history, "What is the term?")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if reply != "Five years." {
		t.Errorf("Unexpected reply %q", reply)
	}
}

func TestOpenAIGeneratorErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"api error", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":{"message":"model not found"}}`))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"choices":[]}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			g := NewOpenAIGenerator(&config.ChatConfig{BaseURL: server.URL, TimeoutSeconds: 5})
			if _, err := g.Generate(context.Background(), "s", nil, "q"); !errors.Is(err, ErrModelUnavailable) {
				t.Errorf("Expected ErrModelUnavailable, got %v", err)
			}
		})
	}
}

type recordingGenerator struct {
	system  string
	history []model.ChatTurn
	err     error
}

func (r *recordingGenerator) Generate(_ context.Context, system string, history []model.ChatTurn, question string) (string, error) {
	r.system = system
	r.history = history
	if r.err != nil {
		return "", r.err
	}
	return "answer to " + question, nil
}

func TestChatServiceAsk(t *testing.T) {
	gen := &recordingGenerator{}
	svc := NewChatService(gen, 2)
	doc := analysedDoc(t)

	var history []model.ChatTurn
	for i := 0; i < 5; i++ {
		history = append(history, model.ChatTurn{Role: model.RoleUser, Content: fmt.Sprint(i)})
	}

	reply, err := svc.Ask(context.Background(), doc, model.Session{Language: "hi", History: history}, "  What is confidential?  ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if reply != "answer to What is confidential?" {
		t.Errorf("Unexpected reply %q", reply)
	}
	if len(gen.history) != 2 || gen.history[0].Content != "3" {
		t.Errorf("Expected the last 2 turns, got %+v", gen.history)
	}
	if !strings.Contains(gen.system, "Answer in Hindi.") {
		t.Errorf("Expected language instruction in system prompt: %s", gen.system)
	}
}

func TestChatServiceFallsBackOnGeneratorError(t *testing.T) {
	svc := NewChatService(&recordingGenerator{err: ErrModelUnavailable}, 10)

	reply, err := svc.Ask(context.Background(), analysedDoc(t), model.Session{}, "How long is the term?")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(reply, "NDA duration varies") {
		t.Errorf("Expected rule-based reply, got %q", reply)
	}
}

func TestChatServiceFallbackWithoutDocument(t *testing.T) {
	svc := NewChatService(&recordingGenerator{err: ErrModelUnavailable}, 10)

	reply, err := svc.Ask(context.Background(), nil, model.Session{}, "How long is the term?")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(reply, "NDA duration varies") {
		t.Errorf("Expected rule-based reply, got %q", reply)
	}
}

func TestChatServiceEmptyQuestion(t *testing.T) {
	svc := NewChatService(nil, 10)
	if _, err := svc.Ask(context.Background(), analysedDoc(t), model.Session{}, "   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("Expected ErrEmptyQuestion, got %v", err)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(analysedDoc(t), "en")

	for _, want := range []string{"Answer in English.", "Document: nda.txt (NDA)", "Fairness:", "Risks:", "Leading clauses:", "1. Confidential Information."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected %q in prompt:\n%s", want, prompt)
		}
	}

	bare := BuildSystemPrompt(&model.Document{ID: "x"}, "ta")
	if strings.Contains(bare, "Document:") || !strings.Contains(bare, "Answer in Tamil.") {
		t.Errorf("Unexpected prompt for unanalysed document:\n%s", bare)
	}
}
