package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/coqdoc"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/logger"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/output"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/project"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/watch"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run coqdoc on a project and rewrite the pages for Jekyll",
	Long: `Run coqdoc on every file of a Coq project and rewrite each generated
page in place.

The first line of the project file holds the coqdoc arguments (a leading
-R or -Q mapping names the library); the other lines list the sources.
coqdoc's stylesheet is removed after the run.

Examples:
  coqdoc-jekyll build -d docs
  coqdoc-jekyll build -d docs -p theories/_CoqProject -l
  coqdoc-jekyll build -d docs --extra "--body-only --no-index --utf8"`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	flags := buildCmd.Flags()

	flags.StringP("target-dir", "d", ".", "target directory")
	flags.StringP("project", "p", project.DefaultFile, "Coq project file")
	flags.BoolP("light", "l", false, "light mode: only definitions and statements")
	flags.BoolP("gallina", "g", false, "skip proofs")
	flags.String("extra", "", "coqdoc arguments placed before the sources (default \"--body-only --no-index --lib-subtitles -s\")")
	flags.String("coqdoc", coqdoc.DefaultBinary, "coqdoc executable")
	flags.Bool("ignore-coqdoc-errors", false, "rewrite pages even when coqdoc exits with an error")
	flags.BoolP("watch", "w", false, "rebuild when the project or a source file changes")
	flags.String("report", "text", "report format: text, json, jsonl, yaml")

	_ = viper.BindPFlag("target_dir", flags.Lookup("target-dir"))
	_ = viper.BindPFlag("project", flags.Lookup("project"))
	_ = viper.BindPFlag("light", flags.Lookup("light"))
	_ = viper.BindPFlag("gallina", flags.Lookup("gallina"))
	_ = viper.BindPFlag("extra", flags.Lookup("extra"))
	_ = viper.BindPFlag("coqdoc", flags.Lookup("coqdoc"))
	_ = viper.BindPFlag("ignore_coqdoc_errors", flags.Lookup("ignore-coqdoc-errors"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signalContext()
	defer cancel()

	reportFlag, _ := cmd.Flags().GetString("report")
	format, err := output.ParseFormat(reportFlag)
	if err != nil {
		logger.Error("invalid report format", "error", err)
		return err
	}
	watchMode, _ := cmd.Flags().GetBool("watch")

	var extraValue any
	if viper.IsSet("extra") {
		extraValue = viper.Get("extra")
	}
	extra, err := parseExtra(extraValue)
	if err != nil {
		logger.Error("invalid coqdoc arguments", "error", err)
		return err
	}

	opts, err := siteOptions()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	opts = append(opts,
		site.WithTargetDir(viper.GetString("target_dir")),
		site.WithProjectFile(viper.GetString("project")),
		site.WithLight(viper.GetBool("light")),
		site.WithGallina(viper.GetBool("gallina")),
		site.WithIgnoreCoqdocErrors(viper.GetBool("ignore_coqdoc_errors")),
		site.WithGenerator(coqdoc.NewRunner(coqdoc.WithBinary(viper.GetString("coqdoc")))),
	)
	if extra != nil {
		opts = append(opts, site.WithExtra(extra...))
	}

	s, err := site.New(opts...)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	build := func(ctx context.Context) error {
		report, err := s.Build(ctx)
		if report != nil && !viper.GetBool("quiet") {
			if werr := writeReport(os.Stdout, format, report.Files); werr != nil {
				logger.Warn("failed to write report", "error", werr)
			}
		}
		if err != nil {
			return err
		}
		logger.Info("build complete", "pages", len(report.Files), "duration", report.TotalDuration.String())
		return nil
	}

	if err := build(ctx); err != nil {
		logger.Error("build failed", "error", err)
		if !watchMode {
			return err
		}
	}

	if !watchMode {
		return nil
	}
	return watch.New(s.Inputs, build).Run(ctx)
}
