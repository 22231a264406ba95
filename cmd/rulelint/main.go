// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command rulelint loads a signature ruleset, runs it through the full
// lex/parse/validate/dedup/clone pipeline, and reports every rejected
// line plus a parsed/dropped/duplicate/cloned summary.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	ruleerrors "github.com/afonot/suricata/internal/errors"
	"github.com/afonot/suricata/internal/logging"
	"github.com/afonot/suricata/internal/metrics"
	"github.com/afonot/suricata/internal/rules"
)

var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleHeading = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
)

func main() {
	flags := flag.NewFlagSet("rulelint", flag.ExitOnError)
	file := flags.String("file", "", "path to the rule file to lint")
	logLevel := flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	quiet := flags.Bool("quiet", false, "suppress per-line diagnostics; print only the summary")
	noColor := flags.Bool("no-color", false, "disable ANSI color even on a terminal")
	flags.Parse(os.Args[1:])

	path := *file
	if path == "" && flags.NArg() > 0 {
		path = flags.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: rulelint [-file] <ruleset.rules>")
		os.Exit(2)
	}

	color := !*noColor && term.IsTerminal(int(os.Stdout.Fd()))

	logger := logging.New(os.Stderr, *logLevel)
	m := metrics.NewMetrics()
	ectx := rules.NewEngineCtx(logger, m)

	ruleset := rules.NewRuleset(ectx)
	stats, lineErrors, err := ruleset.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, render(color, styleError, "rulelint: "+err.Error()))
		os.Exit(1)
	}

	if !*quiet {
		for _, le := range lineErrors {
			label := "error"
			style := styleError
			switch ruleerrors.GetKind(le.Err) {
			case ruleerrors.KindSilentOnce, ruleerrors.KindQuietSkip:
				label = "warn"
				style = styleWarn
			}
			fmt.Printf("%s:%d: %s\n", path, le.Line, render(color, style, label+": "+le.Err.Error()))
			fmt.Println(render(color, styleDim, "  "+le.Text))
		}
	}

	fmt.Println(render(color, styleHeading, "summary"))
	fmt.Printf("  parsed:    %d\n", stats.Parsed)
	fmt.Printf("  rejected:  %d\n", stats.Rejected)
	fmt.Printf("  duplicate: %d\n", stats.Duplicate)
	fmt.Printf("  cloned:    %d\n", stats.Cloned)
	fmt.Printf("  disabled:  %d\n", stats.Disabled)
	fmt.Printf("  quiet skipped: %d\n", stats.QuietSkips)

	if stats.Rejected > 0 {
		fmt.Println(render(color, styleError, fmt.Sprintf("%d rule(s) failed to parse", stats.Rejected)))
		os.Exit(1)
	}
	fmt.Println(render(color, styleOK, fmt.Sprintf("%d rule(s) loaded cleanly", len(ruleset.Signatures()))))
}

func render(color bool, style lipgloss.Style, s string) string {
	if !color {
		return s
	}
	return style.Render(s)
}
