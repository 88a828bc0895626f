package cmd

import (
	"fmt"
	"io"

	"github.com/abhisek/eduindia/internal/dispatch"
	"github.com/abhisek/eduindia/internal/ui"
)

const wrapWidth = 100

func printResult(w io.Writer, md *ui.Markdown, res dispatch.Result, showTrace bool) {
	if showTrace {
		if panel := ui.TracePanel(res.Trace); panel != "" {
			fmt.Fprintln(w, panel)
		}
	}
	fmt.Fprintln(w, md.Render(res.Response))
}
