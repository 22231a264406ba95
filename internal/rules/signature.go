// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package rules implements the signature (rule) parser and validator:
// lexing, keyword dispatch, signature assembly, cross-cutting
// validation, duplicate resolution, and bidirectional cloning.
package rules

// Action is a bitmask of the packet/flow actions a signature can carry.
type Action uint16

const (
	ActionAlert Action = 1 << iota
	ActionDrop
	ActionPass
	ActionReject
	ActionRejectDst
	ActionRejectBoth
	ActionConfig
	ActionAccept
)

// ActionScope narrows where an action applies.
type ActionScope int

const (
	ScopeNotSet ActionScope = iota
	ScopePacket
	ScopeFlow
	ScopeTx
	ScopeHook
)

func (s ActionScope) String() string {
	switch s {
	case ScopePacket:
		return "packet"
	case ScopeFlow:
		return "flow"
	case ScopeTx:
		return "tx"
	case ScopeHook:
		return "hook"
	default:
		return "not_set"
	}
}

// SigFlag is a bitmask of the direction/requirement flags carried on a
// Signature. Named after the flags a firewall/IDS rule needs to track
// between header parse and final validation.
type SigFlag uint32

const (
	FlagSrcAny SigFlag = 1 << iota
	FlagDstAny
	FlagSpAny
	FlagDpAny
	FlagToServer
	FlagToClient
	FlagTxBothDir
	FlagFirewall
	FlagRequirePacket
	FlagRequireStream
	FlagAppLayer
	FlagFileStore
	FlagInitBidirec
	FlagInitForceToServer
	FlagInitForceToClient
	FlagInitPacket
	FlagInitFlow
	FlagInitFileData
)

func (s SigFlag) has(f SigFlag) bool { return s&f != 0 }

// ALProto identifies an application-layer protocol. UNKNOWN is the
// zero value and also the multi-set terminator.
type ALProto uint8

const (
	ALProtoUnknown ALProto = iota
	ALProtoHTTP
	ALProtoHTTP1
	ALProtoHTTP2
	ALProtoTLS
	ALProtoDNS
	ALProtoSSH
	ALProtoSMB
)

func (p ALProto) String() string {
	switch p {
	case ALProtoHTTP:
		return "http"
	case ALProtoHTTP1:
		return "http1"
	case ALProtoHTTP2:
		return "http2"
	case ALProtoTLS:
		return "tls"
	case ALProtoDNS:
		return "dns"
	case ALProtoSSH:
		return "ssh"
	case ALProtoSMB:
		return "smb"
	default:
		return "unknown"
	}
}

// alprotoFamily reports the "common" family an alproto collapses to
// when it conflicts with another family member (http <-> http1 -> http).
func alprotoFamily(p ALProto) ALProto {
	switch p {
	case ALProtoHTTP, ALProtoHTTP1:
		return ALProtoHTTP
	default:
		return p
	}
}

// SigAlprotoMax bounds the multi-alproto set a signature may carry
// before a single app-proto is established.
const SigAlprotoMax = 4

// PktPhase enumerates the packet-level hook attachment points.
type PktPhase int

const (
	PhaseFlowStart PktPhase = iota
	PhasePreFlow
	PhasePreStream
	PhaseAll
)

func (p PktPhase) String() string {
	switch p {
	case PhasePreFlow:
		return "pre_flow"
	case PhasePreStream:
		return "pre_stream"
	case PhaseAll:
		return "all"
	default:
		return "flow_start"
	}
}

// HookKind discriminates the Hook tagged union.
type HookKind int

const (
	HookNotSet HookKind = iota
	HookPkt
	HookApp
)

// Hook is a tagged union over the packet-level and app-level
// attachment points a signature can bind to. Exactly one of the Pkt/
// App branches is meaningful, selected by Kind.
type Hook struct {
	Kind HookKind

	Phase PktPhase // valid when Kind == HookPkt

	Alproto  ALProto // valid when Kind == HookApp
	Progress string  // valid when Kind == HookApp
	ListID   int     // the "<proto>:<hook>:generic" list id resolved at header-parse time
}

// SigType classifies a fully validated signature for engine dispatch.
type SigType int

const (
	SigTypeUnset SigType = iota
	SigTypeIPOnly
	SigTypePkt
	SigTypeAppTx
)

// DetectTable is the inspection table a validated signature is
// scheduled into.
type DetectTable int

const (
	TableUnset DetectTable = iota
	TablePacketFilter
	TablePacketPreStream
	TablePacketPreFlow
	TableAppFilter
	TablePacketTD
	TableAppTD
)

// Endpoint is an opaque handle to a resolved address list and port
// range, as returned by the external AddressResolver/PortResolver
// collaborators.
type Endpoint struct {
	Addr AddrList
	Port PortRange
}

// NetProto is a bitmask of network-layer protocols a signature's
// header can resolve <proto> to.
type NetProto uint16

const (
	ProtoTCP NetProto = 1 << iota
	ProtoUDP
	ProtoICMP
	ProtoICMPv6
	ProtoSCTP
	ProtoIP
)

// Direction is the resolved header direction marker.
type Direction int

const (
	DirUnidirectional Direction = iota // "->"
	DirBidirectional                   // "<>"
	DirTxBothDir                       // "=>"
)

// Signature is the central parsed-rule entity. It accumulates state
// across header parse, option parse, and validation; it is frozen
// once validation succeeds.
type Signature struct {
	GID  int
	SID  int // required; zero means "not yet set"
	Rev  int
	Prio int

	Action      Action
	ActionScope ActionScope

	Proto   NetProto
	Alproto ALProto
	// AlprotoSet holds a pending multi-alproto candidate set, compacted
	// to the front and terminated by ALProtoUnknown. Only meaningful
	// before a single Alproto is established.
	AlprotoSet [SigAlprotoMax]ALProto

	Src Endpoint
	Dst Endpoint
	Dir Direction

	// SrcToken/DstToken preserve the raw header literals so the
	// IP-only validation step can re-resolve them through the
	// IP-only-specific address path.
	SrcToken, DstToken string

	Flags SigFlag
	Hook  Hook

	// match storage, see match.go
	legacy  [listMax]matchList
	buffers []Buffer
	curBuf  int // index into buffers of the sticky buffer, or -1

	smCnt             int
	maxContentListID  int
	hasPrefilter      bool
	mpmSM             *SigMatch
	prefilterSM       *SigMatch

	Type  SigType
	Table DetectTable

	// reqPacketExplicit/reqStreamExplicit track whether
	// REQUIRE_PACKET/REQUIRE_STREAM were set by an explicit keyword
	// (dsize, stream_size) rather than inferred during TCP
	// consolidation, which only fires when neither was set explicitly.
	reqPacketExplicit bool
	reqStreamExplicit bool

	// touchesFileData/touchesFilename track file-inspection usage for
	// the file-handling compatibility check.
	touchesFileData bool
	touchesFilename bool

	// negated/forced-direction state, live only across a single
	// option's dispatch (see options.go)
	negated       bool
	forceToSrv    bool
	forceToClient bool

	Msg        string
	Classtype  string
	References []string
	Metadata   map[string]string

	// Disabled marks a rule commented out with a leading '#' in a
	// ruleset file; LoadReader still parses such a line, sets Disabled
	// on the result, and does not add it to the ruleset.
	Disabled bool

	// RawText preserves the exact input line, used by the bidirectional
	// cloner to reparse with an address swap and by diagnostics.
	RawText string
}

// NewSignature allocates a Signature with its defaults: gid=1, rev=0,
// prio=3, no sticky buffer.
func NewSignature() *Signature {
	s := &Signature{
		GID:    1,
		Prio:   3,
		curBuf: -1,
	}
	return s
}

// HasFlag reports whether every bit in f is set on the signature.
func (s *Signature) HasFlag(f SigFlag) bool { return s.Flags&f == f }

// SetFlag sets f on the signature's flag set.
func (s *Signature) SetFlag(f SigFlag) { s.Flags |= f }

// ClearFlag clears f from the signature's flag set.
func (s *Signature) ClearFlag(f SigFlag) { s.Flags &^= f }

// IsFirewall reports whether this signature participates in
// packet-filtering semantics with an explicit hook and scope.
func (s *Signature) IsFirewall() bool { return s.HasFlag(FlagFirewall) }

// RequirePacketExplicit sets REQUIRE_PACKET and marks it as having
// come from an explicit keyword (dsize) rather than TCP-consolidation
// inference.
func (s *Signature) RequirePacketExplicit() {
	s.SetFlag(FlagRequirePacket)
	s.reqPacketExplicit = true
}

// RequireStreamExplicit sets REQUIRE_STREAM and marks it explicit, the
// stream_size counterpart to RequirePacketExplicit.
func (s *Signature) RequireStreamExplicit() {
	s.SetFlag(FlagRequireStream)
	s.reqStreamExplicit = true
}

// MarkTouchesFileData records that the signature inspects file_data,
// for the file-inspection compatibility check.
func (s *Signature) MarkTouchesFileData() { s.touchesFileData = true }

// MarkTouchesFilename records that the signature matches against a
// file's name, which HTTP/2 cannot support.
func (s *Signature) MarkTouchesFilename() { s.touchesFilename = true }
