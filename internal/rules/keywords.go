// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import "strings"

// KeywordFlag is a bitmask of a keyword's parsing/compatibility
// requirements, set on its KeywordTableEntry.
type KeywordFlag uint16

const (
	// NOOPT means the keyword takes no value.
	NOOPT KeywordFlag = 1 << iota
	// OPTIONAL_OPT means the value may be omitted.
	OPTIONAL_OPT
	// QUOTES_OPTIONAL permits (but does not require) a quoted value.
	QUOTES_OPTIONAL
	// QUOTES_MANDATORY requires a quoted value.
	QUOTES_MANDATORY
	// HANDLE_NEGATION strips and records a leading "!" before Setup runs.
	HANDLE_NEGATION
	// STRICT_PARSING elevates this keyword's warnings to hard errors.
	STRICT_PARSING
	// INFO_DEPRECATED emits a deprecation warning on use.
	INFO_DEPRECATED
	// SUPPORT_FIREWALL marks the keyword as usable in a firewall rule.
	SUPPORT_FIREWALL
	// SUPPORT_DIR marks the keyword as accepting a leading
	// to_client/to_server direction token before its value.
	SUPPORT_DIR
)

func (f KeywordFlag) has(b KeywordFlag) bool { return f&b != 0 }

// SetupFn is a keyword's setup routine, invoked with the in-progress
// signature and the option's (already unquoted, un-negated) value.
// Its return sentinel is one of the SetupOK/SetupError/
// SetupSilentOnce/SetupSilentOK/SetupRequiresNotMet constants below.
type SetupFn func(ectx *EngineCtx, sig *Signature, value string) int

// FreeFn releases a SigMatch's Ctx created by the keyword's Setup.
type FreeFn func(ctx any)

const (
	SetupOK             = 0
	SetupError          = -1
	SetupSilentOnce     = -2
	SetupSilentOK       = -3
	SetupRequiresNotMet = -4
)

// KeywordTableEntry describes one registered option keyword.
type KeywordTableEntry struct {
	Name        string
	Alias       string
	Flags       KeywordFlag
	Setup       SetupFn
	Free        FreeFn
	Alternative string // replacement name surfaced with INFO_DEPRECATED
	Tables      []DetectTable

	id int
}

// Registry is a keyword table: populated before any parse and
// read-only afterward apart from ApplyStrict. It is not a process-wide
// singleton — NewEngineCtx builds and populates a separate Registry
// for each EngineCtx, so entries and the silent-error table are not
// shared between engines. It is not safe for concurrent registration.
type Registry struct {
	entries []*KeywordTableEntry
	byName  map[string]*KeywordTableEntry
	silent  map[int]bool
}

// NewRegistry creates an empty keyword registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*KeywordTableEntry),
		silent: make(map[int]bool),
	}
}

// Register adds an entry to the registry and assigns it a stable
// index, returned for use with Index-based APIs.
func (r *Registry) Register(e *KeywordTableEntry) int {
	e.id = len(r.entries)
	r.entries = append(r.entries, e)
	r.byName[strings.ToLower(e.Name)] = e
	if e.Alias != "" {
		r.byName[strings.ToLower(e.Alias)] = e
	}
	return e.id
}

// Lookup finds a keyword by name or alias, case-insensitively.
func (r *Registry) Lookup(name string) (*KeywordTableEntry, bool) {
	e, ok := r.byName[strings.ToLower(name)]
	return e, ok
}

// Index returns the stable numeric id of a registered entry.
func (r *Registry) Index(e *KeywordTableEntry) int { return e.id }

// entryByTypeID returns the entry registered with the given id, or
// nil. Used by the table-compatibility check, which only has a
// SigMatch's numeric Type to go on.
func (r *Registry) entryByTypeID(id uint16) *KeywordTableEntry {
	if int(id) < 0 || int(id) >= len(r.entries) {
		return nil
	}
	return r.entries[id]
}

// ApplyStrict flips STRICT_PARSING on the named keyword, or on every
// keyword when spec is the literal "all".
func (r *Registry) ApplyStrict(spec string) {
	if strings.EqualFold(spec, "all") {
		for _, e := range r.entries {
			e.Flags |= STRICT_PARSING
		}
		return
	}
	if e, ok := r.Lookup(spec); ok {
		e.Flags |= STRICT_PARSING
	}
}

// SilentError reports whether this is the first silent-once error for
// keyword id within this registry, marking it seen as a side effect. Subsequent
// calls for the same id return false so only the first occurrence is
// surfaced.
func (r *Registry) SilentError(id int) bool {
	if r.silent[id] {
		return false
	}
	r.silent[id] = true
	return true
}
