// Package main is the entry point for the coqdoc-jekyll CLI.
package main

import (
	"os"

	"github.com/cogumbreiro/coqdoc-jekyll/cmd/coqdoc-jekyll/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
