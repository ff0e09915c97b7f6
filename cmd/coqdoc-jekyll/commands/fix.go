package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/logger"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/output"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/site"
)

var fixCmd = &cobra.Command{
	Use:   "fix <page.html>...",
	Short: "Rewrite already generated coqdoc pages in place",
	Long: `Rewrite coqdoc pages in place without running coqdoc. Each file gets
the Tufte rewrite and front matter. Processing stops at the first file that
cannot be rewritten; that file is left unchanged.

Examples:
  coqdoc-jekyll fix docs/Lib.foo.html
  coqdoc-jekyll fix docs/*.html --variant simple --report yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().String("report", "text", "report format: text, json, jsonl, yaml")
}

func runFix(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signalContext()
	defer cancel()

	reportFlag, _ := cmd.Flags().GetString("report")
	format, err := output.ParseFormat(reportFlag)
	if err != nil {
		logger.Error("invalid report format", "error", err)
		return err
	}

	opts, err := siteOptions()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	s, err := site.New(opts...)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	files, err := s.FixFiles(ctx, args)
	if werr := writeReport(os.Stdout, format, files); werr != nil {
		logger.Warn("failed to write report", "error", werr)
	}
	if err != nil {
		logger.Error("fix failed", "error", err)
		return err
	}
	return nil
}
