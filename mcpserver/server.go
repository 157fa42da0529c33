// Package mcpserver exposes the contract analysis tools over the Model
// Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AnTengye/clausewise/pkg/analysis"
	"github.com/AnTengye/clausewise/pkg/i18n"
	"github.com/AnTengye/clausewise/service"
)

type Config struct {
	Name    string
	Version string
}

// Server wraps the MCP server around the analysis services.
type Server struct {
	mcpServer  *server.MCPServer
	analyzer   *service.Analyzer
	simplifier service.Simplifier
}

func NewServer(config Config, analyzer *service.Analyzer, simplifier service.Simplifier) *Server {
	if simplifier == nil {
		simplifier = service.HeuristicSimplifier{}
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer:  mcpServer,
		analyzer:   analyzer,
		simplifier: simplifier,
	}

	mcpServer.AddTool(mcp.NewTool("analyze_document",
		mcp.WithDescription("Run the full contract analysis: document type, clauses, risks, fairness, entities and safer alternatives."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain contract text"),
		),
		mcp.WithString("lang",
			mcp.Description("Message language: en, hi, ta, te or kn (default: en)"),
		),
	), s.analyzeHandler)

	mcpServer.AddTool(mcp.NewTool("classify_document",
		mcp.WithDescription("Classify a contract by type and report whether it reads like an NDA."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain contract text"),
		),
	), s.classifyHandler)

	mcpServer.AddTool(mcp.NewTool("segment_clauses",
		mcp.WithDescription("Split contract text into ordered, deduplicated clauses."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain contract text"),
		),
		mcp.WithNumber("min_length",
			mcp.Description("Minimum clause length in characters (default: configured value)"),
		),
	), s.segmentHandler)

	mcpServer.AddTool(mcp.NewTool("score_fairness",
		mcp.WithDescription("Score how balanced a contract is from 0 (one-sided) to 100 (mutual) and list risky clauses."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain contract text"),
		),
	), s.fairnessHandler)

	mcpServer.AddTool(mcp.NewTool("simplify_clause",
		mcp.WithDescription("Rewrite a clause in plain language."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Clause text"),
		),
		mcp.WithString("mode",
			mcp.Description("simple, eli5 or professional (default: simple)"),
		),
	), s.simplifyHandler)

	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) analyzeHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	lang := i18n.Resolve(req.GetString("lang", ""), "")

	report, err := s.analyzer.Analyze(ctx, text)
	if errors.Is(err, service.ErrNotNDA) || errors.Is(err, service.ErrDocumentTooShort) {
		return mcp.NewToolResultError(service.GateMessage(err, lang)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(service.LocalizeReport(report, lang))
}

type classification struct {
	DocumentType analysis.DocumentType `json:"document_type"`
	IsNDA        bool                  `json:"is_nda"`
	Scores       []analysis.TypeScore  `json:"scores"`
}

func (s *Server) classifyHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	cleaned := analysis.CleanText(text)
	return jsonResult(classification{
		DocumentType: analysis.Classify(cleaned),
		IsNDA:        analysis.IsNDALike(cleaned),
		Scores:       analysis.ClassifyScores(cleaned),
	})
}

func (s *Server) segmentHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	opts := s.analyzer.Options()
	if n := req.GetInt("min_length", 0); n > 0 {
		opts.MinLength = n
	}
	return jsonResult(analysis.Segment(analysis.CleanText(text), opts))
}

type fairnessReport struct {
	Fairness analysis.Fairness      `json:"fairness"`
	Risks    []analysis.RiskFinding `json:"risks"`
}

func (s *Server) fairnessHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	cleaned := analysis.CleanText(text)
	return jsonResult(fairnessReport{
		Fairness: analysis.AssessFairness(cleaned),
		Risks:    analysis.FindRisks(analysis.Segment(cleaned, s.analyzer.Options())),
	})
}

func (s *Server) simplifyHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	mode, err := service.ParseMode(req.GetString("mode", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.simplifier.Simplify(ctx, text, mode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("simplification failed: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

// ServeStdio serves the tools over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
