package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/logger"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/output"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/site"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [page.html]",
	Short: "Rewrite one page to stdout, for trying out variants",
	Long: `Read a coqdoc page from a file (or stdin when the argument is missing
or "-") and print the rewritten HTML. Nothing is written in place.

Examples:
  coqdoc-jekyll clean docs/Lib.foo.html --stats
  coqdoc-jekyll clean --variant simple --pretty < Lib.foo.html
  coqdoc-jekyll clean Lib.foo.html --front-matter -o out.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.Bool("stats", false, "print rewrite statistics and warnings to stderr")
	flags.Bool("front-matter", false, "prepend the page front matter")
}

func runClean(cmd *cobra.Command, args []string) error {
	initLogger()

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			logger.Error("failed to open input", "error", err)
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		logger.Error("failed to read input", "error", err)
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

	body, result, err := s.CleanPage(string(data))
	if err != nil {
		logger.Error("clean failed", "error", err)
		return err
	}

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats && result != nil {
		errOut := cmd.ErrOrStderr()
		fmt.Fprint(errOut, result.Stats.String())
		for _, w := range result.Warnings {
			fmt.Fprintln(errOut, "warning:", w.String())
		}
	}

	var out io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			logger.Error("failed to create output", "error", err)
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if withFM, _ := cmd.Flags().GetBool("front-matter"); withFM {
		return output.WritePage(out, s.FrontMatter(), body)
	}
	_, err = io.WriteString(out, body)
	return err
}
