package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/output"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/site"
)

// writeReport prints per-page results in the requested format.
func writeReport(w io.Writer, format output.Format, files []site.FileResult) error {
	if format == output.FormatText {
		writeTextReport(w, files)
		return nil
	}

	ow, err := output.NewWriter(w, format)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := ow.Write(f); err != nil {
			return err
		}
	}
	return ow.Close()
}

func writeTextReport(w io.Writer, files []site.FileResult) {
	var in, out uint64
	for _, f := range files {
		in += uint64(f.InputBytes)
		out += uint64(f.OutputBytes)

		fmt.Fprintf(w, "%s: %s -> %s", f.Path,
			humanize.Bytes(uint64(f.InputBytes)), humanize.Bytes(uint64(f.OutputBytes)))
		if f.Stats != nil {
			fmt.Fprintf(w, " (%d doc blocks, %d headings, %d code blocks)",
				f.Stats.DocBlocks, f.Stats.HeadingsWrapped, f.Stats.CodeBlocks)
		}
		if n := len(f.Warnings); n > 0 {
			fmt.Fprintf(w, ", %s", pluralize(n, "warning"))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s, %s -> %s\n", pluralize(len(files), "page"), humanize.Bytes(in), humanize.Bytes(out))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
