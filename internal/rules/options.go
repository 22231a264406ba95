// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"strings"

	"github.com/afonot/suricata/internal/errors"
	"github.com/afonot/suricata/internal/validation"
)

// splitNameValue isolates an option's name and optional value on the
// first unescaped ':'.
func splitNameValue(opt string) (name, value string, hasValue bool) {
	escaped := false
	for i := 0; i < len(opt); i++ {
		c := opt[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == ':' {
			return strings.TrimSpace(opt[:i]), strings.TrimSpace(opt[i+1:]), true
		}
	}
	return strings.TrimSpace(opt), "", false
}

// parseOptions runs a two-pass option parse: a requires/sid-only scan,
// then a full pass over every other option. It returns skip=true when
// a quiet-skip outcome (requires not met, or a repeated silent-once
// keyword) should drop the rule silently.
func (e *EngineCtx) parseOptions(sig *Signature, options []string) (skip bool, err error) {
	sawSID := false

	for _, raw := range options {
		if raw == "" {
			continue
		}
		name, _, _ := splitNameValue(raw)
		if !strings.EqualFold(name, "requires") && !strings.EqualFold(name, "sid") {
			continue
		}
		s, err := e.dispatchOption(sig, raw)
		if err != nil {
			return false, err
		}
		switch s {
		case SetupRequiresNotMet, SetupSilentOK:
			return true, nil
		case SetupError:
			return false, newSemanticf("option %q: setup failed", name)
		}
		if strings.EqualFold(name, "sid") {
			sawSID = true
		}
	}

	if !sawSID {
		return false, newSyntactic("signature has no sid")
	}

	for _, raw := range options {
		if raw == "" {
			continue
		}
		name, _, _ := splitNameValue(raw)
		if strings.EqualFold(name, "requires") || strings.EqualFold(name, "sid") {
			continue
		}
		s, err := e.dispatchOption(sig, raw)
		if err != nil {
			return false, err
		}
		switch s {
		case SetupError:
			return false, newSemanticf("option %q: setup failed", name)
		case SetupSilentOnce:
			if e.Registry.SilentError(e.registryIDForName(name)) {
				if e.Logger != nil {
					e.Logger.Warn("keyword setup raised a silent error", "keyword", name, "sid", sig.SID)
				}
				if e.Metrics != nil {
					e.Metrics.KeywordSilentError(name)
				}
				return false, errors.Errorf(errors.KindSilentOnce, "option %q: setup raised a silent error", name)
			}
			return true, nil
		case SetupSilentOK, SetupRequiresNotMet:
			return true, nil
		}
	}

	return false, nil
}

func (e *EngineCtx) registryIDForName(name string) int {
	if entry, ok := e.Registry.Lookup(name); ok {
		return e.Registry.Index(entry)
	}
	return -1
}

// dispatchOption isolates, validates, and dispatches a single option:
// split name/value, look up the keyword, strip negation and quoting
// per its flags, then invoke its Setup routine.
func (e *EngineCtx) dispatchOption(sig *Signature, raw string) (int, error) {
	name, value, hasValue := splitNameValue(raw)

	if err := validation.ValidateKeywordName(name); err != nil {
		return SetupError, err
	}

	entry, ok := e.Registry.Lookup(name)
	if !ok {
		return SetupError, newSyntacticf("unknown keyword %q", name)
	}

	if entry.Flags.has(NOOPT) && hasValue {
		return SetupError, newSyntacticf("keyword %q takes no value", name)
	}
	if !hasValue && !entry.Flags.has(NOOPT) && !entry.Flags.has(OPTIONAL_OPT) {
		return SetupError, newSyntacticf("keyword %q requires a value", name)
	}

	sig.negated = false
	if entry.Flags.has(HANDLE_NEGATION) && strings.HasPrefix(value, "!") {
		sig.negated = true
		value = value[1:]
	}

	value, err := unwrapQuotes(entry, name, value)
	if err != nil {
		return SetupError, err
	}

	sig.forceToSrv, sig.forceToClient = false, false
	if entry.Flags.has(SUPPORT_DIR) {
		switch {
		case strings.HasPrefix(value, "to_server"):
			sig.forceToSrv = true
			sig.SetFlag(FlagInitForceToServer)
			value = strings.TrimSpace(strings.TrimPrefix(value, "to_server"))
			value = strings.TrimPrefix(value, ",")
			value = strings.TrimSpace(value)
		case strings.HasPrefix(value, "to_client"):
			sig.forceToClient = true
			sig.SetFlag(FlagInitForceToClient)
			value = strings.TrimSpace(strings.TrimPrefix(value, "to_client"))
			value = strings.TrimPrefix(value, ",")
			value = strings.TrimSpace(value)
		}
	}

	if !entry.Flags.has(SUPPORT_FIREWALL) && sig.IsFirewall() {
		if entry.Flags.has(STRICT_PARSING) {
			return SetupError, newSemanticf("keyword %q is not declared firewall-compatible", name)
		}
		if e.Logger != nil {
			e.Logger.Warn("keyword not declared firewall-compatible", "keyword", name, "sid", sig.SID)
		}
	}

	if entry.Flags.has(INFO_DEPRECATED) {
		if entry.Flags.has(STRICT_PARSING) {
			return SetupError, newSemanticf("keyword %q is deprecated", name)
		}
		alt := entry.Alternative
		if e.Logger != nil {
			if alt != "" {
				e.Logger.Warn("deprecated keyword", "keyword", name, "use_instead", alt, "sid", sig.SID)
			} else {
				e.Logger.Warn("deprecated keyword", "keyword", name, "sid", sig.SID)
			}
		}
	}

	status := entry.Setup(e, sig, value)

	sig.negated = false
	sig.forceToSrv, sig.forceToClient = false, false
	sig.ClearFlag(FlagInitForceToServer)
	sig.ClearFlag(FlagInitForceToClient)

	return status, nil
}

// unwrapQuotes enforces a keyword's quoting mode and strips the
// surrounding quotes, if any, from value.
func unwrapQuotes(entry *KeywordTableEntry, name, value string) (string, error) {
	quoted := len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")

	switch {
	case entry.Flags.has(QUOTES_MANDATORY):
		if !quoted {
			return "", newSyntacticf("keyword %q requires a quoted value", name)
		}
		return value[1 : len(value)-1], nil
	case entry.Flags.has(QUOTES_OPTIONAL):
		if quoted {
			return value[1 : len(value)-1], nil
		}
		return value, nil
	default:
		if strings.HasPrefix(value, "\"") {
			return "", newSyntacticf("keyword %q does not accept a quoted value", name)
		}
		return value, nil
	}
}
