package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnTengye/clausewise/mcpserver"
	"github.com/AnTengye/clausewise/pkg/logger"
	"github.com/AnTengye/clausewise/service"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analysis tools over MCP",
	Long: `Start an MCP server on stdio with the tools:
  - analyze_document: full analysis report
  - classify_document: document type and NDA check
  - segment_clauses: clause segmentation
  - score_fairness: fairness score and risk findings
  - simplify_clause: plain-language rewrite

Logs go to stderr; stdout carries the protocol.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})

	entities, simplifier := modelServices(cfg)
	server := mcpserver.NewServer(mcpserver.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, service.NewAnalyzer(&cfg.Analysis, entities), simplifier)

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")
	return server.ServeStdio()
}
