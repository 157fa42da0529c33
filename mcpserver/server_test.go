package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/model"
	"github.com/AnTengye/clausewise/pkg/analysis"
	"github.com/AnTengye/clausewise/pkg/i18n"
	"github.com/AnTengye/clausewise/service"
)

const sampleNDAText = `1. Confidential Information. The Receiving Party shall protect all information disclosed by the Disclosing Party.
2. Term. This agreement remains in force for 5 years and both parties may terminate on written notice.
3. Remedies. A penalty of $10,000 applies to any breach by the Receiving Party.`

func newTestServer(requireNDA bool) *Server {
	analyzer := service.NewAnalyzer(&config.AnalysisConfig{
		MinClauseLength:   20,
		MaxClauses:        200,
		MinDocumentLength: 50,
		RequireNDA:        requireNDA,
	}, nil)
	return NewServer(Config{Name: "clausewise", Version: "test"}, analyzer, nil)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestServer_Creation(t *testing.T) {
	s := newTestServer(false)
	assert.NotNil(t, s.mcpServer)
	assert.NotNil(t, s.simplifier)
}

func TestServer_AnalyzeDocument(t *testing.T) {
	s := newTestServer(false)

	result, err := s.analyzeHandler(context.Background(), callRequest(map[string]any{"text": sampleNDAText, "lang": "hi"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, analysis.TypeNDA, report.DocumentType)
	assert.Len(t, report.Clauses, 3)
	assert.Equal(t, i18n.T("hi", i18n.NDADetected), report.Message)
}

func TestServer_AnalyzeDocumentErrors(t *testing.T) {
	s := newTestServer(true)

	result, err := s.analyzeHandler(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	lease := "1. Premises. The landlord leases the apartment to the tenant for residential use only."
	result, err = s.analyzeHandler(context.Background(), callRequest(map[string]any{"text": lease}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, i18n.T("en", i18n.NotNDA), resultText(t, result))
}

func TestServer_ClassifyDocument(t *testing.T) {
	s := newTestServer(false)

	result, err := s.classifyHandler(context.Background(), callRequest(map[string]any{"text": "landlord tenant lease"}))
	require.NoError(t, err)

	var got classification
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, analysis.TypeLease, got.DocumentType)
	assert.False(t, got.IsNDA)
	assert.NotEmpty(t, got.Scores)
}

func TestServer_SegmentClauses(t *testing.T) {
	s := newTestServer(false)

	result, err := s.segmentHandler(context.Background(), callRequest(map[string]any{"text": sampleNDAText}))
	require.NoError(t, err)
	var clauses []analysis.Clause
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &clauses))
	assert.Len(t, clauses, 3)

	result, err = s.segmentHandler(context.Background(), callRequest(map[string]any{"text": sampleNDAText, "min_length": 500}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &clauses))
	assert.Empty(t, clauses)
}

func TestServer_ScoreFairness(t *testing.T) {
	s := newTestServer(false)

	result, err := s.fairnessHandler(context.Background(), callRequest(map[string]any{"text": "mutual and balanced obligations for both parties"}))
	require.NoError(t, err)

	var got fairnessReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, 70, got.Fairness.Score)
	assert.Empty(t, got.Risks)
}

func TestServer_SimplifyClause(t *testing.T) {
	s := newTestServer(false)

	result, err := s.simplifyHandler(context.Background(), callRequest(map[string]any{
		"text": "The Receiving Party shall indemnify the Disclosing Party.",
		"mode": "eli5",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.True(t, strings.HasPrefix(resultText(t, result), "In very simple words: "))

	result, err = s.simplifyHandler(context.Background(), callRequest(map[string]any{"text": "x", "mode": "poetic"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
