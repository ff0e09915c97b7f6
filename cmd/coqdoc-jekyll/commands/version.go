package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(cmd.OutOrStdout(), info.Version)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.Full())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.Version = version.Get().Version
}
