// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"strconv"
	"strings"

	"github.com/afonot/suricata/internal/validation"
)

// Reserved buffer ids for the handful of named buffers the builtin
// keyword set creates. They live well past the range
// defaultGenericLists hands out so the two id spaces never collide.
const (
	ListFileData = 1000
	ListHTTPURI  = 1001
)

// ContentCtx is the Setup context a content match carries.
type ContentCtx struct {
	Pattern     string
	Negated     bool
	Nocase      bool
	RawBytes    bool
	FastPattern bool
	Depth       int
	Offset      int
	Distance    int
	Within      int
}

// PCRECtx is the Setup context a pcre match carries.
type PCRECtx struct {
	Pattern string
	Negated bool
}

// FlowCtx is the Setup context a flow match carries.
type FlowCtx struct {
	Established bool
	Stateless   bool
}

// FlowbitsCtx is the Setup context a flowbits match carries.
type FlowbitsCtx struct {
	Action string // set, unset, isset, isnotset, toggle, noalert
	Name   string
}

// DsizeCtx is the Setup context a dsize match carries.
type DsizeCtx struct {
	Spec string
}

var supportedFeatures = map[string]bool{
	"rawbytes":  true,
	"flowbits":  true,
	"content":   true,
	"pcre":      true,
	"file_data": true,
}

// currentListID returns the legacy PMATCH list id, or the sticky
// buffer's id when one is active, the target append_match routes new
// content-like matches to.
func currentListID(sig *Signature) int {
	if sig.curBuf >= 0 {
		return sig.buffers[sig.curBuf].ID
	}
	return ListPMatch
}

// contentKeywordID/pcreKeywordID/streamSizeKeywordID cache the
// registry ids RegisterBuiltinKeywords assigns to "content", "pcre",
// and "stream_size" — deterministic across registries since
// RegisterBuiltinKeywords always registers keywords in the same
// order. A SigMatch's Type is the registering keyword's id (per the
// data model), so submodifiers and the TCP-consolidation check look
// their anchor matches up by these ids rather than a separate type
// enum.
var (
	contentKeywordID    uint16
	pcreKeywordID       uint16
	streamSizeKeywordID uint16
)

// lastContentOrPCRE finds the most recently appended content/pcre
// match in the current list, for submodifiers (nocase, depth,
// within, ...) that apply to "the preceding content match".
func lastContentOrPCRE(sig *Signature) *SigMatch {
	return sig.GetLastMatch(currentListID(sig), contentKeywordID, pcreKeywordID)
}

// RegisterBuiltinKeywords populates reg with a representative keyword
// set: enough real Setup routines to exercise the dispatch and buffer
// machinery, not a reimplementation of a production rule-keyword
// library.
func RegisterBuiltinKeywords(reg *Registry) {
	registerIdentityKeywords(reg)
	registerContentKeywords(reg)
	registerMiscKeywords(reg)
}

func registerIdentityKeywords(reg *Registry) {
	reg.Register(&KeywordTableEntry{
		Name:  "sid",
		Flags: SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			if sig.SID != 0 {
				return SetupError
			}
			v, err := strconv.Atoi(value)
			if err != nil || validation.ValidateNonNegativeInt("sid", v) != nil {
				return SetupError
			}
			sig.SID = v
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "gid",
		Flags: SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			v, err := strconv.Atoi(value)
			if err != nil || validation.ValidateNonNegativeInt("gid", v) != nil {
				return SetupError
			}
			sig.GID = v
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "rev",
		Flags: SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			v, err := strconv.Atoi(value)
			if err != nil || validation.ValidateNonNegativeInt("rev", v) != nil {
				return SetupError
			}
			sig.Rev = v
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "prio",
		Flags: SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			v, err := strconv.Atoi(value)
			if err != nil || validation.ValidateNonNegativeInt("prio", v) != nil {
				return SetupError
			}
			sig.Prio = v
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "msg",
		Flags: QUOTES_MANDATORY | SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			sig.Msg = value
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "classtype",
		Flags: SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			sig.Classtype = value
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "reference",
		Flags: SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			sig.References = append(sig.References, value)
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "metadata",
		Flags: SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			if sig.Metadata == nil {
				sig.Metadata = make(map[string]string)
			}
			for _, pair := range strings.Split(value, ",") {
				pair = strings.TrimSpace(pair)
				if pair == "" {
					continue
				}
				k, v, _ := strings.Cut(pair, " ")
				sig.Metadata[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "requires",
		Flags: OPTIONAL_OPT | SUPPORT_FIREWALL,
		Setup: func(_ *EngineCtx, _ *Signature, value string) int {
			if value == "" {
				return SetupOK
			}
			feature := strings.TrimSpace(strings.TrimPrefix(value, "feature"))
			feature = strings.TrimSpace(feature)
			if feature == "" {
				return SetupOK
			}
			if !supportedFeatures[feature] {
				return SetupRequiresNotMet
			}
			return SetupOK
		},
	})
}

func registerContentKeywords(reg *Registry) {
	contentEntry := &KeywordTableEntry{
		Name:  "content",
		Flags: QUOTES_MANDATORY | HANDLE_NEGATION,
		Tables: []DetectTable{TablePacketFilter, TablePacketPreStream, TablePacketPreFlow, TablePacketTD, TableAppFilter, TableAppTD},
	}
	contentEntry.Setup = func(e *EngineCtx, sig *Signature, value string) int {
		ctx := &ContentCtx{Pattern: value, Negated: sig.negated}
		name, kind, multi := "", BufferKindPacket, false
		if sig.curBuf >= 0 {
			b := &sig.buffers[sig.curBuf]
			name, kind, multi = b.Name, b.Kind, b.MultiCapable
		}
		_, err := sig.AppendMatch(currentListID(sig), uint16(e.Registry.Index(contentEntry)), ctx, name, kind, multi)
		if err != nil {
			return SetupError
		}
		return SetupOK
	}
	contentKeywordID = uint16(reg.Register(contentEntry))

	reg.Register(&KeywordTableEntry{
		Name:  "rawbytes",
		Flags: NOOPT,
		Setup: func(_ *EngineCtx, sig *Signature, _ string) int {
			sm := lastContentOrPCRE(sig)
			if sm == nil {
				return SetupError
			}
			sm.Flags |= SmFlagRawBytes
			if c, ok := sm.Ctx.(*ContentCtx); ok {
				c.RawBytes = true
			}
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "nocase",
		Flags: NOOPT,
		Setup: func(_ *EngineCtx, sig *Signature, _ string) int {
			sm := lastContentOrPCRE(sig)
			if sm == nil {
				return SetupError
			}
			if c, ok := sm.Ctx.(*ContentCtx); ok {
				c.Nocase = true
			}
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "fast_pattern",
		Flags: NOOPT,
		Setup: func(_ *EngineCtx, sig *Signature, _ string) int {
			sm := lastContentOrPCRE(sig)
			if sm == nil {
				return SetupError
			}
			if c, ok := sm.Ctx.(*ContentCtx); ok {
				c.FastPattern = true
			}
			sig.hasPrefilter = true
			sig.prefilterSM = sm
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name: "depth",
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			v, err := strconv.Atoi(value)
			if err != nil {
				return SetupError
			}
			sm := lastContentOrPCRE(sig)
			if sm == nil {
				return SetupError
			}
			sm.Flags |= SmFlagDepth
			if c, ok := sm.Ctx.(*ContentCtx); ok {
				c.Depth = v
			}
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name: "offset",
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			v, err := strconv.Atoi(value)
			if err != nil {
				return SetupError
			}
			sm := lastContentOrPCRE(sig)
			if sm == nil {
				return SetupError
			}
			sm.Flags |= SmFlagOffset
			if c, ok := sm.Ctx.(*ContentCtx); ok {
				c.Offset = v
			}
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name: "distance",
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			v, err := strconv.Atoi(value)
			if err != nil {
				return SetupError
			}
			return applyRelative(sig, v, false)
		},
	})
	reg.Register(&KeywordTableEntry{
		Name: "within",
		Setup: func(_ *EngineCtx, sig *Signature, value string) int {
			v, err := strconv.Atoi(value)
			if err != nil {
				return SetupError
			}
			return applyRelative(sig, v, true)
		},
	})

	pcreEntry := &KeywordTableEntry{
		Name:  "pcre",
		Flags: QUOTES_MANDATORY | HANDLE_NEGATION,
		Tables: []DetectTable{TablePacketFilter, TablePacketTD, TableAppFilter, TableAppTD},
	}
	pcreEntry.Setup = func(e *EngineCtx, sig *Signature, value string) int {
		ctx := &PCRECtx{Pattern: value, Negated: sig.negated}
		name, kind, multi := "", BufferKindPacket, false
		if sig.curBuf >= 0 {
			b := &sig.buffers[sig.curBuf]
			name, kind, multi = b.Name, b.Kind, b.MultiCapable
		}
		_, err := sig.AppendMatch(currentListID(sig), uint16(e.Registry.Index(pcreEntry)), ctx, name, kind, multi)
		if err != nil {
			return SetupError
		}
		return SetupOK
	}
	pcreKeywordID = uint16(reg.Register(pcreEntry))
}

// applyRelative implements the within/distance half of relative-offset
// chaining: the anchor (the content/pcre preceding the match this
// option modifies) gets its RELATIVE_NEXT bit set.
func applyRelative(sig *Signature, v int, within bool) int {
	sm := lastContentOrPCRE(sig)
	if sm == nil || sm.prev == nil {
		return SetupError
	}
	sm.prev.SetRelativeNext()
	if c, ok := sm.Ctx.(*ContentCtx); ok {
		if within {
			c.Within = v
		} else {
			c.Distance = v
		}
	}
	return SetupOK
}

func registerMiscKeywords(reg *Registry) {
	dsizeEntry := &KeywordTableEntry{
		Name:   "dsize",
		Tables: []DetectTable{TablePacketFilter, TablePacketPreStream, TablePacketPreFlow, TablePacketTD},
	}
	dsizeEntry.Setup = func(e *EngineCtx, sig *Signature, value string) int {
		sig.RequirePacketExplicit()
		_, err := sig.AppendMatch(ListMatch, uint16(e.Registry.Index(dsizeEntry)), &DsizeCtx{Spec: value}, "", BufferKindPacket, false)
		if err != nil {
			return SetupError
		}
		return SetupOK
	}
	reg.Register(dsizeEntry)

	streamSizeEntry := &KeywordTableEntry{
		Name:   "stream_size",
		Tables: []DetectTable{TablePacketFilter, TablePacketTD},
	}
	streamSizeEntry.Setup = func(e *EngineCtx, sig *Signature, value string) int {
		sig.RequireStreamExplicit()
		_, err := sig.AppendMatch(ListMatch, uint16(e.Registry.Index(streamSizeEntry)), value, "", BufferKindPacket, false)
		if err != nil {
			return SetupError
		}
		return SetupOK
	}
	streamSizeKeywordID = uint16(reg.Register(streamSizeEntry))

	flowEntry := &KeywordTableEntry{
		Name:   "flow",
		Tables: []DetectTable{TablePacketFilter, TablePacketTD, TableAppFilter, TableAppTD},
	}
	flowEntry.Setup = func(e *EngineCtx, sig *Signature, value string) int {
		ctx := &FlowCtx{}
		for _, tok := range strings.Split(value, ",") {
			switch strings.TrimSpace(tok) {
			case "to_server", "from_client":
				sig.SetFlag(FlagToServer)
			case "to_client", "from_server":
				sig.SetFlag(FlagToClient)
			case "established":
				ctx.Established = true
			case "stateless":
				ctx.Stateless = true
			}
		}
		_, err := sig.AppendMatch(ListMatch, uint16(e.Registry.Index(flowEntry)), ctx, "", BufferKindPacket, false)
		if err != nil {
			return SetupError
		}
		return SetupOK
	}
	reg.Register(flowEntry)

	flowbitsEntry := &KeywordTableEntry{
		Name:   "flowbits",
		Tables: []DetectTable{TablePacketFilter, TablePacketTD, TableAppFilter, TableAppTD},
	}
	flowbitsEntry.Setup = func(e *EngineCtx, sig *Signature, value string) int {
		action, name, _ := strings.Cut(value, ",")
		ctx := &FlowbitsCtx{Action: strings.TrimSpace(action), Name: strings.TrimSpace(name)}
		_, err := sig.AppendMatch(ListMatch, uint16(e.Registry.Index(flowbitsEntry)), ctx, "", BufferKindPacket, false)
		if err != nil {
			return SetupError
		}
		return SetupOK
	}
	reg.Register(flowbitsEntry)

	reg.Register(&KeywordTableEntry{
		Name:  "file_data",
		Flags: NOOPT | SUPPORT_DIR,
		Setup: func(e *EngineCtx, sig *Signature, _ string) int {
			kind, multi, ok := e.Buffers.ByName("file_data")
			if !ok {
				return SetupError
			}
			if err := sig.SetStickyBuffer(ListFileData, "file_data", kind, multi); err != nil {
				return SetupError
			}
			sig.MarkTouchesFileData()
			sig.SetFlag(FlagInitFileData)
			return SetupOK
		},
	})
	reg.Register(&KeywordTableEntry{
		Name:  "pkt_data",
		Flags: NOOPT,
		Setup: func(_ *EngineCtx, sig *Signature, _ string) int {
			sig.ClearStickyBuffer()
			return SetupOK
		},
	})

	reg.Register(&KeywordTableEntry{
		Name:   "http_uri",
		Flags:  NOOPT,
		Tables: []DetectTable{TableAppFilter, TableAppTD},
		Setup: func(e *EngineCtx, sig *Signature, _ string) int {
			kind, _, ok := e.Buffers.ByName("http_uri")
			if !ok {
				return SetupError
			}
			if err := sig.ContentModifierTransfer(ListHTTPURI, "http_uri", kind, ALProtoHTTP); err != nil {
				return SetupError
			}
			return SetupOK
		},
	})
}
