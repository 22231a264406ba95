// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// LoadStats summarizes one LoadFile/LoadReader pass, the
// parsed/dropped/duplicate/cloned counts a caller (cmd/rulelint)
// reports.
type LoadStats struct {
	Parsed     int
	Rejected   int
	Duplicate  int
	Cloned     int
	Disabled   int
	QuietSkips int
}

// LineError pairs a 1-based source line number with the error ParseRule
// raised for it.
type LineError struct {
	Line int
	Text string
	Err  error
}

// Ruleset is the engine-owned, duplicate-resolved signature list
// produced by loading a rule file.
type Ruleset struct {
	Engine *EngineCtx
	index  *DuplicateIndex
}

// NewRuleset creates an empty Ruleset driven by ectx.
func NewRuleset(ectx *EngineCtx) *Ruleset {
	return &Ruleset{Engine: ectx, index: NewDuplicateIndex()}
}

// Signatures returns the current produced artifact: every live
// signature in file order, duplicates resolved, bidirectional siblings
// adjacent.
func (r *Ruleset) Signatures() []*Signature { return r.index.Signatures() }

// LoadFile opens path and loads it via LoadReader.
func (r *Ruleset) LoadFile(path string) (LoadStats, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadStats{}, nil, newSyntacticf("opening ruleset file: %v", err)
	}
	defer f.Close()
	return r.LoadReader(f)
}

// LoadReader splits rd into lines, in file order and single-threaded
// (no parallel rule loading), feeding each non-blank, non-comment
// line to ParseRule and folding successes through the duplicate
// detector and bidirectional cloner.
func (r *Ruleset) LoadReader(rd io.Reader) (LoadStats, []LineError, error) {
	var stats LoadStats
	var lineErrors []LineError

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		disabled := false
		if strings.HasPrefix(trimmed, "#") {
			rest := strings.TrimSpace(trimmed[1:])
			if !looksLikeRule(rest) {
				continue // a genuine comment line, not a disabled rule
			}
			disabled = true
			trimmed = rest
		}

		primary, clone, err := r.Engine.ParseRule(trimmed)
		if err != nil {
			stats.Rejected++
			lineErrors = append(lineErrors, LineError{Line: lineNo, Text: trimmed, Err: err})
			continue
		}
		if primary == nil {
			stats.QuietSkips++
			continue
		}

		if disabled {
			primary.Disabled = true
			stats.Disabled++
			continue
		}

		outcome := r.index.Insert(primary, clone)
		switch outcome {
		case DupDropNew:
			stats.Duplicate++
			if r.Engine.Logger != nil {
				r.Engine.Logger.Warn("duplicate signature dropped", "gid", primary.GID, "sid", primary.SID, "rev", primary.Rev)
			}
			if r.Engine.Metrics != nil {
				r.Engine.Metrics.SignaturesDuplicate.Inc()
			}
		case DupReplaced:
			stats.Parsed++
			if r.Engine.Logger != nil {
				r.Engine.Logger.Warn("signature replaced by higher revision", "gid", primary.GID, "sid", primary.SID, "rev", primary.Rev)
			}
		default:
			stats.Parsed++
		}
		if clone != nil {
			stats.Cloned++
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, lineErrors, newSyntacticf("reading ruleset: %v", err)
	}
	return stats, lineErrors, nil
}

// looksLikeRule guards against treating a plain "# comment" line as a
// disabled rule: a disabled rule still has the header/option shape a
// real rule does.
func looksLikeRule(s string) bool {
	return strings.Contains(s, "(") && (strings.Contains(s, "->") || strings.Contains(s, "<>") || strings.Contains(s, "=>"))
}
