// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

// Validate runs the fixed-order cross-cutting checks over a fully
// option-parsed signature, setting its final Type and Table.
func (e *EngineCtx) Validate(sig *Signature) error {
	if err := validateFirewallPreconditions(sig); err != nil {
		return err
	}
	if err := validatePacketVsStream(sig); err != nil {
		return err
	}
	if err := validateBufferMix(sig); err != nil {
		return err
	}
	if err := validateDirection(sig); err != nil {
		return err
	}
	if err := validateHookProgress(sig); err != nil {
		return err
	}
	consolidateTCP(sig)
	setSigType(sig)
	setDetectTable(sig)
	if err := validateTableCompatibility(e, sig); err != nil {
		return err
	}
	if err := validateFileHandling(sig); err != nil {
		return err
	}
	if sig.Type == SigTypeIPOnly {
		if err := e.reparseIPOnly(sig); err != nil {
			return err
		}
	}
	return nil
}

// validateFirewallPreconditions is step 1: a firewall rule's hook must
// be set. Header parsing already enforces this, but validation
// re-checks since a future caller could build a Signature by hand.
func validateFirewallPreconditions(sig *Signature) error {
	if sig.IsFirewall() && sig.Hook.Kind == HookNotSet {
		return newSemantic("firewall rule requires an explicit hook")
	}
	if sig.IsFirewall() && sig.ActionScope == ScopeNotSet {
		return newSemantic("firewall rule requires an explicit action scope")
	}
	return nil
}

// validatePacketVsStream is step 2: REQUIRE_PACKET and REQUIRE_STREAM
// may not both be set by explicit keywords.
func validatePacketVsStream(sig *Signature) error {
	if sig.reqPacketExplicit && sig.reqStreamExplicit {
		return newSemantic("REQUIRE_PACKET and REQUIRE_STREAM cannot both be set explicitly")
	}
	return nil
}

// validateBufferMix is step 3: classify every referenced buffer and
// reject the forbidden combinations (pmatch+frame, app+frame,
// pkt+frame).
func validateBufferMix(sig *Signature) error {
	hasPMatch := sig.legacy[ListPMatch].head != nil
	var hasFrame, hasApp, hasPktBuf bool

	for i := range sig.buffers {
		switch sig.buffers[i].Kind {
		case BufferKindFrame:
			hasFrame = true
		case BufferKindApp:
			hasApp = true
		case BufferKindPacket:
			hasPktBuf = true
		}
	}

	if hasFrame && hasPMatch {
		return newSemantic("cannot mix a frame buffer with payload (pmatch) content")
	}
	if hasFrame && hasApp {
		return newSemantic("cannot mix a frame buffer with an app-layer buffer")
	}
	if hasFrame && hasPktBuf {
		return newSemantic("cannot mix a frame buffer with a packet buffer")
	}
	return nil
}

// validateDirection is step 4: derive TOSERVER/TOCLIENT from the
// directional buffers a signature references, or validate the
// explicit TXBOTHDIR marker against them.
func validateDirection(sig *Signature) error {
	var sawTS, sawTC, ambiguous bool
	for i := range sig.buffers {
		b := &sig.buffers[i]
		if !b.OnlyToServer && !b.OnlyToClient {
			continue
		}
		if b.OnlyToServer {
			sawTS = true
		}
		if b.OnlyToClient {
			sawTC = true
		}
		if sig.HasFlag(FlagTxBothDir) && !(b.OnlyToServer != b.OnlyToClient) {
			ambiguous = true
		}
	}

	if sig.HasFlag(FlagTxBothDir) {
		if !sawTS || !sawTC {
			return newSemantic("TXBOTHDIR rule must have both to_server and to_client buffers")
		}
		if ambiguous {
			return newSemantic("TXBOTHDIR rule has a directionally ambiguous buffer")
		}
		return nil
	}

	switch {
	case sawTS && sawTC:
		return newSemantic("conflicting to_server/to_client buffers; use \"=>\" for a transactional rule")
	case sawTS:
		sig.SetFlag(FlagToServer)
	case sawTC:
		sig.SetFlag(FlagToClient)
	}
	return nil
}

// validateHookProgress is step 5: when the hook is app-level, every
// app buffer on the signature must be bound to the hook's alproto (the
// minimal external-collaborator model in external.go does not track a
// separate per-buffer inspection-engine progress, so alproto agreement
// stands in for hook.Progress agreement).
func validateHookProgress(sig *Signature) error {
	if sig.Hook.Kind != HookApp {
		return nil
	}
	for i := range sig.buffers {
		if sig.buffers[i].Kind == BufferKindApp && sig.Alproto != ALProtoUnknown && alprotoFamily(sig.Alproto) != alprotoFamily(sig.Hook.Alproto) {
			return newSemanticf("buffer %q is bound to alproto %s but hook requires %s", sig.buffers[i].Name, sig.Alproto, sig.Hook.Alproto)
		}
	}
	return nil
}

// consolidateTCP is step 6.
func consolidateTCP(sig *Signature) {
	if sig.Proto&ProtoTCP == 0 {
		return
	}
	if sig.legacy[ListPMatch].head == nil {
		return
	}
	if !sig.reqPacketExplicit && !sig.reqStreamExplicit {
		sig.SetFlag(FlagRequireStream)
	}

	for sm := sig.legacy[ListPMatch].head; sm != nil; sm = sm.next {
		if sm.Flags.has(SmFlagDepth) || sm.Flags.has(SmFlagOffset) {
			sig.SetFlag(FlagRequirePacket)
			break
		}
	}
	if lastMatchInChain(sig.legacy[ListMatch].head, []uint16{streamSizeKeywordID}) != nil {
		sig.SetFlag(FlagRequirePacket)
	}
}

// setSigType is step 7.
func setSigType(sig *Signature) {
	hasPayload := sig.legacy[ListPMatch].head != nil || len(sig.buffers) > 0
	switch {
	case !hasPayload && !sig.HasFlag(FlagAppLayer):
		sig.Type = SigTypeIPOnly
	case sig.HasFlag(FlagAppLayer):
		sig.Type = SigTypeAppTx
	default:
		sig.Type = SigTypePkt
	}
}

// setDetectTable is step 7's table half.
func setDetectTable(sig *Signature) {
	switch {
	case sig.IsFirewall() && sig.Hook.Kind == HookPkt:
		switch sig.Hook.Phase {
		case PhasePreStream:
			sig.Table = TablePacketPreStream
		case PhasePreFlow, PhaseFlowStart:
			sig.Table = TablePacketPreFlow
		default:
			sig.Table = TablePacketFilter
		}
	case sig.IsFirewall() && sig.Hook.Kind == HookApp:
		sig.Table = TableAppFilter
	case sig.Type == SigTypeAppTx:
		sig.Table = TableAppTD
	default:
		sig.Table = TablePacketTD
	}
}

// validateTableCompatibility is step 8: every keyword used on MATCH
// must advertise support for the chosen table.
func validateTableCompatibility(e *EngineCtx, sig *Signature) error {
	for sm := sig.legacy[ListMatch].head; sm != nil; sm = sm.next {
		entry := e.Registry.entryByTypeID(sm.Type)
		if entry == nil || len(entry.Tables) == 0 {
			continue
		}
		supported := false
		for _, t := range entry.Tables {
			if t == sig.Table {
				supported = true
				break
			}
		}
		if !supported {
			return newSemanticf("keyword %q does not support table %v", entry.Name, sig.Table)
		}
	}
	return nil
}

// validateFileHandling is step 9.
func validateFileHandling(sig *Signature) error {
	if !sig.touchesFileData {
		return nil
	}
	if !alprotoSupportsFileInspection(sig.Alproto) {
		return newSemanticf("alproto %s does not support file inspection", sig.Alproto)
	}
	if hasRawBytesInFileData(sig) {
		return newSemantic("rawbytes is incompatible with file_data")
	}
	if sig.touchesFilename && sig.Alproto == ALProtoHTTP2 {
		return newSemantic("HTTP/2 does not support filename matching")
	}
	return nil
}

// hasRawBytesInFileData reports whether any match in the file_data
// buffer carries SmFlagRawBytes, which file_data cannot support since
// it operates on the reassembled, normalized file body.
func hasRawBytesInFileData(sig *Signature) bool {
	idx := sig.findBuffer(ListFileData)
	if idx < 0 {
		return false
	}
	for sm := sig.buffers[idx].head; sm != nil; sm = sm.next {
		if sm.Flags.has(SmFlagRawBytes) {
			return true
		}
	}
	return false
}

func alprotoSupportsFileInspection(p ALProto) bool {
	switch p {
	case ALProtoHTTP, ALProtoHTTP1, ALProtoHTTP2, ALProtoSMB:
		return true
	default:
		return false
	}
}

// reparseIPOnly is step 10: re-resolve both endpoints through the
// IP-only address path.
func (e *EngineCtx) reparseIPOnly(sig *Signature) error {
	src, err := e.Addr.ParseIPOnlyAddress(sig.SrcToken)
	if err != nil {
		return err
	}
	sig.Src.Addr = src
	dst, err := e.Addr.ParseIPOnlyAddress(sig.DstToken)
	if err != nil {
		return err
	}
	sig.Dst.Addr = dst
	return nil
}
