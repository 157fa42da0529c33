package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/model"
	"github.com/AnTengye/clausewise/pkg/i18n"
	"github.com/AnTengye/clausewise/pkg/logger"
)

var ErrEmptyQuestion = errors.New("question is empty")

// Generator produces an assistant reply for a question about a document.
type Generator interface {
	Generate(ctx context.Context, system string, history []model.ChatTurn, question string) (string, error)
}

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func NewOpenAIGenerator(cfg *config.ChatConfig) *OpenAIGenerator {
	return &OpenAIGenerator{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system string, history []model.ChatTurn, question string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: system})
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: model.RoleUser, Content: question})

	body, err := json.Marshal(chatRequest{Model: g.model, Messages: messages, MaxTokens: g.maxTokens})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: chat: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: chat: read response: %v", ErrModelUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: chat: status %d: %s", ErrModelUnavailable, resp.StatusCode, truncate(string(respBody), 200))
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: chat: parse response: %v", ErrModelUnavailable, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: chat: %s", ErrModelUnavailable, out.Error.Message)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: chat: no choices returned", ErrModelUnavailable)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

const attorneyReminder = "Always consult a licensed attorney for legal advice."

var negotiationHint = regexp.MustCompile(`(?i)penalty|termination`)

// RuleGenerator answers from a fixed set of topic replies. It never fails.
type RuleGenerator struct{}

func (RuleGenerator) Generate(_ context.Context, _ string, _ []model.ChatTurn, question string) (string, error) {
	msg := strings.ToLower(question)

	var reply string
	switch {
	case strings.Contains(msg, "compet"):
		reply = "This clause may restrict competition. Review duration, scope, and geography."
	case strings.Contains(msg, "duration"), strings.Contains(msg, "how long"):
		reply = "NDA duration varies. Check the clause for exact terms or termination conditions."
	case strings.Contains(msg, "penalt"), strings.Contains(msg, "breach"):
		reply = "Usually, NDAs define remedies or penalties for breach. Look for monetary caps and resolution process."
	case negotiationHint.MatchString(question):
		reply = "Suggested negotiation: Reduce penalty duration or clarify termination terms."
	default:
		reply = "No immediate negotiation points detected."
	}
	return reply + "\n\n" + attorneyReminder, nil
}

// systemClauseCount is how many leading clauses go into the system prompt.
const systemClauseCount = 5

// ChatService answers questions about an analysed document.
type ChatService struct {
	generator Generator
	fallback  Generator
	window    int
}

// NewChatService wraps generator; a nil generator means rules only. window
// bounds how many past turns are sent along (0 sends none).
func NewChatService(generator Generator, window int) *ChatService {
	if generator == nil {
		generator = RuleGenerator{}
	}
	return &ChatService{generator: generator, fallback: RuleGenerator{}, window: max(window, 0)}
}

// Ask returns the assistant reply. Generator failures fall back to the
// rule-based reply rather than surfacing an error.
func (s *ChatService) Ask(ctx context.Context, doc *model.Document, session model.Session, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	history := session.History
	if len(history) > s.window {
		history = history[len(history)-s.window:]
	}

	system := BuildSystemPrompt(doc, session.Language)
	reply, err := s.generator.Generate(ctx, system, history, question)
	if err != nil {
		log := logger.WithContext(ctx)
		if doc != nil {
			log = log.With("document_id", doc.ID)
		}
		log.Warn("chat generator failed, using rule-based reply", "error", err)
		return s.fallback.Generate(ctx, system, history, question)
	}
	return reply, nil
}

// BuildSystemPrompt summarises the document's report for the model.
func BuildSystemPrompt(doc *model.Document, lang string) string {
	var b strings.Builder
	b.WriteString("You are ClauseWise, an assistant that explains contracts in plain language. ")
	b.WriteString("You do not give legal advice and you remind users to consult a licensed attorney.\n")
	fmt.Fprintf(&b, "Answer in %s.\n", i18n.LanguageName(lang))

	if doc == nil || doc.Report == nil {
		return b.String()
	}
	r := doc.Report
	fmt.Fprintf(&b, "\nDocument: %s (%s)\n", doc.Filename, r.DocumentType)
	fmt.Fprintf(&b, "Fairness: %d/100 (%s)\n", r.Fairness.Score, r.Fairness.Label)

	if len(r.Risks) == 0 {
		b.WriteString("Risks: none detected\n")
	} else {
		labels := make([]string, len(r.Risks))
		for i, f := range r.Risks {
			labels[i] = fmt.Sprintf("%s (clause %d)", f.Label, f.ClauseIndex+1)
		}
		fmt.Fprintf(&b, "Risks: %s\n", strings.Join(labels, "; "))
	}

	if len(r.Clauses) > 0 {
		b.WriteString("Leading clauses:\n")
		for _, c := range r.Clauses[:min(len(r.Clauses), systemClauseCount)] {
			fmt.Fprintf(&b, "- %s\n", truncate(c.Text, 300))
		}
	}
	return b.String()
}
