// Package commands implements the CLI commands for coqdoc-jekyll.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/logger"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/cleaner"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/cleaner/tufte"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/site"
)

var rootCmd = &cobra.Command{
	Use:   "coqdoc-jekyll",
	Short: "Generate Jekyll pages from Coq sources, styled for Tufte CSS",
	Long: `coqdoc-jekyll runs coqdoc on a Coq project and rewrites the generated
HTML for a Tufte CSS layout: containers become <article>/<section>, doc
comments become paragraphs, coqdoc branding is removed and every page gets
Jekyll front matter.

Examples:
  # Build the project described by ./_CoqProject into ./docs
  coqdoc-jekyll build -d docs

  # Skip proofs and keep rebuilding while editing
  coqdoc-jekyll build -d docs -g --watch

  # Rewrite pages that were generated earlier
  coqdoc-jekyll fix docs/*.html --report json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.String("config", "", "config file (default ./.coqdoc-jekyll.yaml or $HOME/.coqdoc-jekyll.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.Bool("log-json", false, "log as JSON")

	// Page rewriting
	flags.String("variant", string(tufte.VariantTufte), "rewrite variant: tufte, simple")
	flags.Bool("pretty", false, "indent the rewritten HTML")
	flags.Bool("raw", false, "skip the Tufte rewrite, only add front matter")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("variant", flags.Lookup("variant"))
	_ = viper.BindPFlag("pretty", flags.Lookup("pretty"))
	_ = viper.BindPFlag("raw", flags.Lookup("raw"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".coqdoc-jekyll")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. COQDOC_JEKYLL_TARGET_DIR
	viper.SetEnvPrefix("COQDOC_JEKYLL")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})
	if f := viper.ConfigFileUsed(); f != "" {
		logger.Debug("using config file", "path", f)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newCleaner returns the page cleaner for a variant, or a no-op cleaner
// when raw output is requested.
func newCleaner(variant string, raw bool) (cleaner.Cleaner, error) {
	if raw {
		return cleaner.NewNoop(), nil
	}
	cfg, err := tufte.ForVariant(tufte.Variant(variant))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return tufte.New(cfg), nil
}

// parseExtra reads the coqdoc extra arguments from configuration. A string
// is split like a shell would; a YAML list is taken as is. Nil means the
// defaults apply.
func parseExtra(v any) ([]string, error) {
	switch extra := v.(type) {
	case nil:
		return nil, nil
	case string:
		args, err := shlex.Split(extra)
		if err != nil {
			return nil, fmt.Errorf("extra arguments: %w", err)
		}
		if args == nil {
			args = []string{}
		}
		return args, nil
	case []string:
		return extra, nil
	case []any:
		args := make([]string, 0, len(extra))
		for _, a := range extra {
			args = append(args, fmt.Sprint(a))
		}
		return args, nil
	default:
		return nil, fmt.Errorf("extra arguments: unsupported value %v", v)
	}
}

// siteOptions collects the page rewriting settings shared by build and fix.
func siteOptions() ([]site.Option, error) {
	cl, err := newCleaner(viper.GetString("variant"), viper.GetBool("raw"))
	if err != nil {
		return nil, err
	}

	opts := []site.Option{
		site.WithCleaner(cl),
		site.WithFrontMatter(viper.GetStringMap("front_matter")),
	}
	if viper.GetBool("pretty") {
		opts = append(opts, site.WithPostCleaner(cleaner.NewPretty()))
	}
	return opts, nil
}
