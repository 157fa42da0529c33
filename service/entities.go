package service

import (
	"context"
	"strings"

	"github.com/AnTengye/clausewise/pkg/analysis"
	"github.com/AnTengye/clausewise/pkg/logger"
)

// EntityExtractor finds named entities in a segmented document.
type EntityExtractor interface {
	Extract(ctx context.Context, text string, clauses []analysis.Clause) analysis.EntityBundle
	Name() string
}

// RegexExtractor is the pattern-only extractor.
type RegexExtractor struct{}

func (RegexExtractor) Extract(_ context.Context, _ string, clauses []analysis.Clause) analysis.EntityBundle {
	return analysis.ExtractEntities(clauses)
}

func (RegexExtractor) Name() string { return "regex" }

// nerInputLimit bounds the text sent to the token-classification model.
const nerInputLimit = 2000

type nerEntity struct {
	EntityGroup string  `json:"entity_group"`
	Score       float64 `json:"score"`
	Word        string  `json:"word"`
}

// ModelExtractor adds person, organization, location and misc categories
// from a hosted NER model on top of the regex dates and amounts. Parties are
// the detected people and organizations. Any model error degrades to the
// regex result.
type ModelExtractor struct {
	client   *InferenceClient
	model    string
	fallback RegexExtractor
}

func NewModelExtractor(client *InferenceClient, model string) *ModelExtractor {
	return &ModelExtractor{client: client, model: model}
}

func (m *ModelExtractor) Name() string { return "model:" + m.model }

func (m *ModelExtractor) Extract(ctx context.Context, text string, clauses []analysis.Clause) analysis.EntityBundle {
	bundle := m.fallback.Extract(ctx, text, clauses)

	var entities []nerEntity
	params := map[string]any{"aggregation_strategy": "simple"}
	if err := m.client.Infer(ctx, m.model, truncate(text, nerInputLimit), params, &entities); err != nil {
		logger.Warn(ctx, "ner model failed, using regex entities", "model", m.model, "error", err)
		return bundle
	}

	named := groupEntities(entities)
	if len(named[analysis.EntityPerson])+len(named[analysis.EntityOrganization]) > 0 {
		bundle[analysis.EntityParty] = nil
		named[analysis.EntityParty] = append(
			append([]string{}, named[analysis.EntityPerson]...),
			named[analysis.EntityOrganization]...,
		)
	}
	bundle.Merge(named)
	return bundle
}

var nerCategories = map[string]string{
	"PER":  analysis.EntityPerson,
	"ORG":  analysis.EntityOrganization,
	"LOC":  analysis.EntityLocation,
	"MISC": analysis.EntityMisc,
}

func groupEntities(entities []nerEntity) analysis.EntityBundle {
	grouped := analysis.EntityBundle{}
	for _, e := range entities {
		category, ok := nerCategories[strings.TrimPrefix(strings.TrimPrefix(e.EntityGroup, "B-"), "I-")]
		word := strings.TrimSpace(strings.ReplaceAll(e.Word, " ##", ""))
		if !ok || word == "" || strings.HasPrefix(word, "##") {
			continue
		}
		grouped[category] = append(grouped[category], word)
	}
	return grouped
}
