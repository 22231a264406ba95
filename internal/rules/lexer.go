// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"strings"
	"unicode/utf8"
)

// HeaderFieldCount is the number of whitespace-separated fields a rule
// header carries: action, proto, src, sp, dir, dst, dp.
const HeaderFieldCount = 7

// Lex splits a raw rule line into its seven header tokens and the raw
// option segment (the text between the outermost parentheses, with
// the parentheses themselves and surrounding whitespace trimmed).
func Lex(line string) (tokens []string, optionSeg string, err error) {
	if err := checkUTF8AndControlChars(line); err != nil {
		return nil, "", err
	}

	trimmed := strings.TrimRight(line, "\r\n")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return nil, "", newSyntactic("empty rule")
	}

	open := strings.IndexByte(trimmed, '(')
	if open < 0 {
		return nil, "", newSyntactic("missing option-list opening '('")
	}

	header := strings.TrimSpace(trimmed[:open])
	rest := strings.TrimSpace(trimmed[open+1:])

	if !strings.HasSuffix(rest, ")") {
		return nil, "", newSyntactic("unterminated option list: missing closing ')'")
	}
	optionSeg = strings.TrimSpace(rest[:len(rest)-1])

	tokens, err = tokenizeFields(header)
	if err != nil {
		return nil, "", err
	}
	if len(tokens) != HeaderFieldCount {
		return nil, "", newSyntacticf("expected %d header fields (action proto src sp dir dst dp), got %d", HeaderFieldCount, len(tokens))
	}

	return tokens, optionSeg, nil
}

// checkUTF8AndControlChars rejects invalid UTF-8 and any control
// character other than HT, LF, CR.
func checkUTF8AndControlChars(s string) error {
	if !utf8.ValidString(s) {
		return newSyntactic("rule text is not valid UTF-8")
	}
	for _, r := range s {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return newSyntacticf("rule text contains disallowed control character %U", r)
		}
		if r == 0x7f {
			return newSyntacticf("rule text contains disallowed control character %U", r)
		}
	}
	return nil
}

// tokenizeFields splits s on whitespace, except that once a field
// opens a '[' it absorbs whitespace until its matching ']' (bracket
// nesting is tracked by depth, since address/port lists do not nest
// brackets themselves but this keeps the scanner honest either way).
func tokenizeFields(s string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	depth := 0
	inField := false

	flush := func() {
		if inField {
			fields = append(fields, cur.String())
			cur.Reset()
			inField = false
		}
	}

	for _, r := range s {
		switch {
		case r == '[':
			depth++
			cur.WriteRune(r)
			inField = true
		case r == ']':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && depth == 0:
			flush()
		default:
			cur.WriteRune(r)
			inField = true
		}
	}
	flush()

	if depth != 0 {
		return nil, newSyntactic("unbalanced '[' in header field")
	}
	return fields, nil
}

// SplitOptions splits the raw option segment into individual option
// strings on the first unescaped ';'. "\;" is an escape recognized
// only at this layer; no other escape sequence is interpreted here.
// Leading/trailing whitespace on each option is trimmed.
func SplitOptions(seg string) ([]string, error) {
	var opts []string
	var cur strings.Builder
	escaped := false

	for i := 0; i < len(seg); i++ {
		c := seg[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
			cur.WriteByte(c)
		case c == ';':
			opts = append(opts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}

	if escaped {
		return nil, newSyntactic("unterminated escape sequence in option list")
	}
	if trailing := strings.TrimSpace(cur.String()); trailing != "" {
		return nil, newSyntacticf("unterminated option (missing trailing ';'): %q", trailing)
	}

	return opts, nil
}
