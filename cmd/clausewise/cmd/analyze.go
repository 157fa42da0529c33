package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnTengye/clausewise/pkg/i18n"
	"github.com/AnTengye/clausewise/pkg/logger"
	"github.com/AnTengye/clausewise/service"
)

var (
	analyzeJSON bool
	analyzeLang string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|->",
	Short: "Analyse a local contract file",
	Long: `Analyse a TXT or DOCX contract and print the report. Use "-" to read
plain text from stdin. PDFs need the MinerU pipeline of the server.

Example:
  clausewise analyze nda.docx
  cat nda.txt | clausewise analyze - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	analyzeCmd.Flags().StringVar(&analyzeLang, "lang", "", "message language (en, hi, ta, te, kn)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})

	name := args[0]
	text, err := readContract(cmd.InOrStdin(), name)
	if err != nil {
		return err
	}

	entities, _ := modelServices(cfg)
	report, err := service.NewAnalyzer(&cfg.Analysis, entities).Analyze(cmd.Context(), text)
	lang := i18n.Resolve(analyzeLang, os.Getenv("LANG"))
	if errors.Is(err, service.ErrNotNDA) || errors.Is(err, service.ErrDocumentTooShort) {
		return errors.New(service.GateMessage(err, lang))
	}
	if err != nil {
		return err
	}
	report = service.LocalizeReport(report, lang)

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if name == "-" {
		name = "stdin"
	}
	_, err = fmt.Fprintln(out, RenderReport(name, report))
	return err
}

// readContract returns the text of a local file, or of stdin for "-".
func readContract(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return service.ExtractLocalText(service.ExtTXT, data)
	}

	ext, err := service.NormalizeExtension(name)
	if err != nil {
		return "", err
	}
	if ext == service.ExtPDF {
		return "", fmt.Errorf("%s: PDF extraction is only available through the server", name)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return service.ExtractLocalText(ext, data)
}
