package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/AnTengye/clausewise/pkg/logger"
)

var ErrInvalidMode = errors.New("invalid simplification mode")

// Mode is the register of a simplified explanation.
type Mode string

const (
	ModeSimple       Mode = "simple"
	ModeELI5         Mode = "eli5"
	ModeProfessional Mode = "professional"
)

// ParseMode accepts the mode names plus "pro" as shorthand. Empty means simple.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeSimple):
		return ModeSimple, nil
	case string(ModeELI5):
		return ModeELI5, nil
	case string(ModeProfessional), "pro":
		return ModeProfessional, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Simplifier rewrites legal text in plainer language.
type Simplifier interface {
	Simplify(ctx context.Context, text string, mode Mode) (string, error)
}

type modeStyle struct {
	prefix    string // heuristic output lead-in
	limit     int    // runes kept by the heuristic
	plain     bool   // substitute jargon
	modelHint string // text2text task prefix
}

var modeStyles = map[Mode]modeStyle{
	ModeELI5:         {prefix: "In very simple words: ", limit: 150, plain: true, modelHint: "explain like I'm 5: "},
	ModeSimple:       {prefix: "In simple terms: ", limit: 200, plain: true, modelHint: "simplify: "},
	ModeProfessional: {prefix: "Professional summary: ", limit: 300, modelHint: "rephrase professionally: "},
}

// legalPlain maps legalese to everyday words. Longer phrases come first so
// they are replaced before their parts.
var legalPlain = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`(?i)\bin the event that\b`), "if"},
	{regexp.MustCompile(`(?i)\bnotwithstanding\b`), "despite"},
	{regexp.MustCompile(`(?i)\bpursuant to\b`), "under"},
	{regexp.MustCompile(`(?i)\bprior to\b`), "before"},
	{regexp.MustCompile(`(?i)\bhereinafter\b`), "from now on"},
	{regexp.MustCompile(`(?i)\bherein\b`), "in this agreement"},
	{regexp.MustCompile(`(?i)\bthereof\b`), "of it"},
	{regexp.MustCompile(`(?i)\bindemnify\b`), "cover the losses of"},
	{regexp.MustCompile(`(?i)\bterminate\b`), "end"},
	{regexp.MustCompile(`(?i)\bcommence\b`), "start"},
	{regexp.MustCompile(`(?i)\bshall not\b`), "must not"},
	{regexp.MustCompile(`(?i)\bshall\b`), "must"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// HeuristicSimplifier substitutes common legalese and shortens the text.
type HeuristicSimplifier struct{}

func (HeuristicSimplifier) Simplify(_ context.Context, text string, mode Mode) (string, error) {
	style, ok := modeStyles[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if text == "" {
		return "", nil
	}
	if style.plain {
		for _, sub := range legalPlain {
			text = sub.re.ReplaceAllString(text, sub.with)
		}
	}
	if r := []rune(text); len(r) > style.limit {
		text = strings.TrimSpace(string(r[:style.limit])) + "..."
	}
	return style.prefix + text, nil
}

// simplifyInputLimit bounds the text sent to the text2text model.
const simplifyInputLimit = 1500

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

// ModelSimplifier uses a hosted text2text model, falling back to the
// heuristic on any model error.
type ModelSimplifier struct {
	client   *InferenceClient
	model    string
	fallback HeuristicSimplifier
}

func NewModelSimplifier(client *InferenceClient, model string) *ModelSimplifier {
	return &ModelSimplifier{client: client, model: model}
}

func (m *ModelSimplifier) Simplify(ctx context.Context, text string, mode Mode) (string, error) {
	style, ok := modeStyles[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var out []generatedText
	params := map[string]any{"max_length": 256, "num_beams": 4}
	err := m.client.Infer(ctx, m.model, style.modelHint+truncate(text, simplifyInputLimit), params, &out)
	if err == nil && len(out) > 0 && strings.TrimSpace(out[0].GeneratedText) != "" {
		return strings.TrimSpace(out[0].GeneratedText), nil
	}
	if err == nil {
		err = errors.New("empty generation")
	}
	logger.Warn(ctx, "simplify model failed, using heuristic", "model", m.model, "error", err)
	return m.fallback.Simplify(ctx, text, mode)
}
