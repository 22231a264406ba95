// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"strings"

	"github.com/gopacket/gopacket/layers"
)

// netProtoNames maps a lower-cased <proto> header token to its
// gopacket/layers protocol and the NetProto bitmask bit this engine
// stores on the signature. The lookup is by name; only the bit is
// used by resolveNetProto.
var netProtoNames = map[string]struct {
	proto layers.IPProtocol
	bit   NetProto
}{
	"tcp":    {layers.IPProtocolTCP, ProtoTCP},
	"udp":    {layers.IPProtocolUDP, ProtoUDP},
	"icmp":   {layers.IPProtocolICMPv4, ProtoICMP},
	"icmpv6": {layers.IPProtocolICMPv6, ProtoICMPv6},
	"sctp":   {layers.IPProtocolSCTP, ProtoSCTP},
}

// resolveNetProto resolves a network-layer protocol name via the
// netProtoNames table. "ip" is a catch-all matching any IP payload,
// represented by its own bit rather than a specific layers.IPProtocol.
func resolveNetProto(name string) (NetProto, bool) {
	if strings.EqualFold(name, "ip") {
		return ProtoIP, true
	}
	if e, ok := netProtoNames[strings.ToLower(name)]; ok {
		return e.bit, true
	}
	return 0, false
}

// actionBundle is the flag/scope-permission bundle one action token
// expands to.
type actionBundle struct {
	flags        Action
	allowedScope map[ActionScope]bool
	firewallOnly bool
	forbidFirewall bool
}

var actionTable = map[string]actionBundle{
	"alert":      {flags: ActionAlert},
	"drop":       {flags: ActionDrop | ActionAlert, allowedScope: map[ActionScope]bool{ScopePacket: true, ScopeFlow: true}},
	"pass":       {flags: ActionPass, allowedScope: map[ActionScope]bool{ScopePacket: true, ScopeFlow: true}, forbidFirewall: true},
	"reject":     {flags: ActionReject | ActionDrop | ActionAlert},
	"rejectsrc":  {flags: ActionReject | ActionDrop | ActionAlert},
	"rejectdst":  {flags: ActionRejectDst | ActionDrop | ActionAlert},
	"rejectboth": {flags: ActionRejectBoth | ActionDrop | ActionAlert},
	"config":     {flags: ActionConfig, allowedScope: map[ActionScope]bool{ScopePacket: true}},
	"accept":     {flags: ActionAccept, allowedScope: map[ActionScope]bool{ScopePacket: true, ScopeFlow: true, ScopeTx: true, ScopeHook: true}, firewallOnly: true},
}

func parseScope(s string) (ActionScope, bool) {
	switch s {
	case "packet":
		return ScopePacket, true
	case "flow":
		return ScopeFlow, true
	case "tx":
		return ScopeTx, true
	case "hook":
		return ScopeHook, true
	default:
		return ScopeNotSet, false
	}
}

// parseAction resolves the "<action>[:scope]" header token, recording
// the action flags and scope on sig and validating the firewall/scope
// constraints actionTable declares for this action.
func (e *EngineCtx) parseAction(sig *Signature, token string) error {
	name, scopeStr, hasScope := strings.Cut(token, ":")

	bundle, ok := actionTable[strings.ToLower(name)]
	if !ok {
		return newSyntacticf("unknown action %q", name)
	}

	sig.Action = bundle.flags

	var scope ActionScope
	if hasScope {
		var ok bool
		scope, ok = parseScope(scopeStr)
		if !ok {
			return newSyntacticf("unknown action scope %q", scopeStr)
		}
		if len(bundle.allowedScope) == 0 || !bundle.allowedScope[scope] {
			return newSemanticf("action %q does not permit scope %q", name, scopeStr)
		}
	}
	sig.ActionScope = scope

	if bundle.firewallOnly {
		sig.SetFlag(FlagFirewall)
		if !hasScope {
			return newSemanticf("firewall action %q requires an explicit scope", name)
		}
	}
	if bundle.forbidFirewall && sig.IsFirewall() {
		return newSemanticf("action %q is not allowed in a firewall rule", name)
	}

	return nil
}

// parseProtoHook resolves the "<proto>[:<hook>]" header token: a
// network protocol first, falling back to an app-layer protocol name,
// then an optional hook.
func (e *EngineCtx) parseProtoHook(sig *Signature, token string) error {
	if len(token) > 32 {
		return newSyntacticf("protocol field %q exceeds 32 characters", token)
	}

	name, hookStr, hasHook := strings.Cut(token, ":")

	if bit, ok := resolveNetProto(name); ok {
		sig.Proto = bit
		if hasHook {
			return e.parsePktHook(sig, hookStr)
		}
		return nil
	}

	if proto, ok := e.AppLayer.ByName(name); ok {
		sig.Alproto = proto
		sig.SetFlag(FlagAppLayer)
		if hasHook {
			return e.parseAppHook(sig, hookStr)
		}
		return nil
	}

	return newSyntacticf("unresolvable protocol %q", name)
}

func (e *EngineCtx) parsePktHook(sig *Signature, hookStr string) error {
	var phase PktPhase
	switch hookStr {
	case "flow_start":
		phase = PhaseFlowStart
	case "pre_flow":
		phase = PhasePreFlow
	case "pre_stream":
		phase = PhasePreStream
	case "all":
		phase = PhaseAll
	default:
		return newCapabilityf("unknown packet hook %q", hookStr)
	}
	listID, ok := e.GenericLists["pkt:"+phase.String()+":generic"]
	if !ok {
		return newCapabilityf("no generic list registered for packet hook %q", hookStr)
	}
	sig.Hook = Hook{Kind: HookPkt, Phase: phase, ListID: listID}
	return nil
}

var builtinAppHooks = map[string]bool{
	"request_started": true, "request_complete": true,
	"response_started": true, "response_complete": true,
}

func (e *EngineCtx) parseAppHook(sig *Signature, hookStr string) error {
	toClient := strings.HasPrefix(hookStr, "response")
	progress := hookStr

	if !builtinAppHooks[hookStr] {
		name, ok := e.AppLayer.ProgressByName(sig.Alproto, hookStr, false)
		if !ok {
			return newCapabilityf("unknown hook %q for protocol %q", hookStr, sig.Alproto)
		}
		progress = name
		toClient = isToClientProgress(sig.Alproto, hookStr)
	}

	if toClient {
		sig.SetFlag(FlagToClient)
	} else {
		sig.SetFlag(FlagToServer)
	}

	listID, ok := e.GenericLists[sig.Alproto.String()+":"+progress+":generic"]
	if !ok {
		return newCapabilityf("no generic list registered for %s hook %q", sig.Alproto, hookStr)
	}
	sig.Hook = Hook{Kind: HookApp, Alproto: sig.Alproto, Progress: progress, ListID: listID}
	return nil
}

// parseDirection resolves the direction marker token.
func (e *EngineCtx) parseDirection(sig *Signature, token string) error {
	switch token {
	case "->":
		sig.Dir = DirUnidirectional
	case "<>":
		sig.Dir = DirBidirectional
		sig.SetFlag(FlagInitBidirec)
	case "=>":
		if sig.IsFirewall() {
			return newSemantic("\"=>\" transactional direction is forbidden in firewall rules")
		}
		sig.Dir = DirTxBothDir
		sig.SetFlag(FlagTxBothDir)
	default:
		return newSyntacticf("unknown direction marker %q", token)
	}
	return nil
}

// parseHeader resolves all seven header tokens in order, delegating
// address/port parsing to the EngineCtx's external resolvers.
func (e *EngineCtx) parseHeader(sig *Signature, tokens []string) error {
	if err := e.parseAction(sig, tokens[0]); err != nil {
		return err
	}
	if err := e.parseProtoHook(sig, tokens[1]); err != nil {
		return err
	}
	if sig.IsFirewall() && sig.Hook.Kind == HookNotSet {
		return newSemantic("firewall rule requires an explicit hook")
	}

	sig.SrcToken = tokens[2]
	src, err := e.Addr.ParseAddress(tokens[2])
	if err != nil {
		return err
	}
	sig.Src.Addr = src
	if src.Any {
		sig.SetFlag(FlagSrcAny)
	}

	sp, err := e.Port.ParsePort(tokens[3])
	if err != nil {
		return err
	}
	sig.Src.Port = sp
	if sp.Any {
		sig.SetFlag(FlagSpAny)
	}

	if err := e.parseDirection(sig, tokens[4]); err != nil {
		return err
	}

	sig.DstToken = tokens[5]
	dst, err := e.Addr.ParseAddress(tokens[5])
	if err != nil {
		return err
	}
	sig.Dst.Addr = dst
	if dst.Any {
		sig.SetFlag(FlagDstAny)
	}

	dp, err := e.Port.ParsePort(tokens[6])
	if err != nil {
		return err
	}
	sig.Dst.Port = dp
	if dp.Any {
		sig.SetFlag(FlagDpAny)
	}

	return nil
}
