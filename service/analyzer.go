package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/model"
	"github.com/AnTengye/clausewise/pkg/analysis"
	"github.com/AnTengye/clausewise/pkg/i18n"
)

var (
	ErrNotNDA           = errors.New("document is not an NDA")
	ErrDocumentTooShort = errors.New("document text is too short")
)

// Analyzer runs the heuristic pipeline and the configured entity extractor,
// gating out documents that are too short or, optionally, not NDAs.
type Analyzer struct {
	opts       analysis.Options
	requireNDA bool
	minLength  int
	entities   EntityExtractor
}

func NewAnalyzer(cfg *config.AnalysisConfig, entities EntityExtractor) *Analyzer {
	if entities == nil {
		entities = RegexExtractor{}
	}
	return &Analyzer{
		opts: analysis.Options{
			MinLength:  cfg.MinClauseLength,
			MaxClauses: cfg.MaxClauses,
		},
		requireNDA: cfg.RequireNDA,
		minLength:  cfg.MinDocumentLength,
		entities:   entities,
	}
}

func (a *Analyzer) Options() analysis.Options { return a.opts }

// Analyze produces an English report for text. Gate failures return
// ErrDocumentTooShort or ErrNotNDA and no report.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*model.Report, error) {
	cleaned := analysis.CleanText(text)
	if len([]rune(strings.TrimSpace(cleaned))) < a.minLength {
		return nil, ErrDocumentTooShort
	}
	if a.requireNDA && !analysis.IsNDALike(cleaned) {
		return nil, ErrNotNDA
	}

	result := analysis.Analyze(cleaned, a.opts)
	result.Entities = a.entities.Extract(ctx, cleaned, result.Clauses)

	return LocalizeReport(&model.Report{Result: result, AnalyzedAt: time.Now()}, i18n.DefaultLanguage), nil
}

// LocalizeReport returns a copy of r with its messages in lang.
func LocalizeReport(r *model.Report, lang string) *model.Report {
	out := *r
	if out.IsNDA {
		out.Message = i18n.T(lang, i18n.NDADetected)
	} else {
		out.Message = i18n.T(lang, i18n.NotNDA)
	}
	out.RiskNote = ""
	if len(out.Risks) == 0 {
		out.RiskNote = i18n.T(lang, i18n.NoRisks)
	}
	out.Disclaimer = i18n.T(lang, i18n.Disclaimer)
	return &out
}

// GateMessage is the localized user message for a gate error.
func GateMessage(err error, lang string) string {
	if errors.Is(err, ErrNotNDA) {
		return i18n.T(lang, i18n.NotNDA)
	}
	return err.Error()
}
