// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFirewallPreconditionsRequiresHook(t *testing.T) {
	sig := NewSignature()
	sig.SetFlag(FlagFirewall)
	sig.ActionScope = ScopeFlow
	err := validateFirewallPreconditions(sig)
	assert.Error(t, err)
}

func TestValidateFirewallPreconditionsOK(t *testing.T) {
	sig := NewSignature()
	sig.SetFlag(FlagFirewall)
	sig.ActionScope = ScopeFlow
	sig.Hook = Hook{Kind: HookPkt}
	assert.NoError(t, validateFirewallPreconditions(sig))
}

func TestValidatePacketVsStreamConflict(t *testing.T) {
	sig := NewSignature()
	sig.RequirePacketExplicit()
	sig.RequireStreamExplicit()
	err := validatePacketVsStream(sig)
	assert.Error(t, err)
}

func TestValidateBufferMixFrameRejectsPMatch(t *testing.T) {
	sig := NewSignature()
	sig.legacy[ListPMatch].append(&SigMatch{Type: 1})
	sig.buffers = append(sig.buffers, Buffer{ID: listMax, Kind: BufferKindFrame})
	err := validateBufferMix(sig)
	assert.Error(t, err)
}

func TestValidateBufferMixFrameRejectsApp(t *testing.T) {
	sig := NewSignature()
	sig.buffers = append(sig.buffers,
		Buffer{ID: listMax, Kind: BufferKindFrame},
		Buffer{ID: listMax + 1, Kind: BufferKindApp},
	)
	err := validateBufferMix(sig)
	assert.Error(t, err)
}

func TestValidateBufferMixOKWithOnlyApp(t *testing.T) {
	sig := NewSignature()
	sig.buffers = append(sig.buffers, Buffer{ID: listMax, Kind: BufferKindApp})
	assert.NoError(t, validateBufferMix(sig))
}

func TestValidateDirectionDerivesToServer(t *testing.T) {
	sig := NewSignature()
	sig.buffers = append(sig.buffers, Buffer{ID: listMax, Kind: BufferKindApp, OnlyToServer: true})
	require.NoError(t, validateDirection(sig))
	assert.True(t, sig.HasFlag(FlagToServer))
}

func TestValidateDirectionConflictingBuffersWithoutTxBothDir(t *testing.T) {
	sig := NewSignature()
	sig.buffers = append(sig.buffers,
		Buffer{ID: listMax, Kind: BufferKindApp, OnlyToServer: true},
		Buffer{ID: listMax + 1, Kind: BufferKindApp, OnlyToClient: true},
	)
	err := validateDirection(sig)
	assert.Error(t, err)
}

func TestValidateDirectionTxBothDirRequiresBoth(t *testing.T) {
	sig := NewSignature()
	sig.SetFlag(FlagTxBothDir)
	sig.buffers = append(sig.buffers, Buffer{ID: listMax, Kind: BufferKindApp, OnlyToServer: true})
	err := validateDirection(sig)
	assert.Error(t, err)
}

func TestValidateDirectionTxBothDirSatisfied(t *testing.T) {
	sig := NewSignature()
	sig.SetFlag(FlagTxBothDir)
	sig.buffers = append(sig.buffers,
		Buffer{ID: listMax, Kind: BufferKindApp, OnlyToServer: true},
		Buffer{ID: listMax + 1, Kind: BufferKindApp, OnlyToClient: true},
	)
	assert.NoError(t, validateDirection(sig))
}

func TestValidateHookProgressAlprotoMismatch(t *testing.T) {
	sig := NewSignature()
	sig.Hook = Hook{Kind: HookApp, Alproto: ALProtoTLS}
	sig.Alproto = ALProtoHTTP
	sig.buffers = append(sig.buffers, Buffer{ID: listMax, Kind: BufferKindApp, Name: "b"})
	err := validateHookProgress(sig)
	assert.Error(t, err)
}

func TestValidateHookProgressFamilyAgreementPasses(t *testing.T) {
	sig := NewSignature()
	sig.Hook = Hook{Kind: HookApp, Alproto: ALProtoHTTP1}
	sig.Alproto = ALProtoHTTP
	sig.buffers = append(sig.buffers, Buffer{ID: listMax, Kind: BufferKindApp})
	assert.NoError(t, validateHookProgress(sig))
}

func TestConsolidateTCPInfersRequireStream(t *testing.T) {
	sig := NewSignature()
	sig.Proto = ProtoTCP
	sig.legacy[ListPMatch].append(&SigMatch{Type: 1})
	consolidateTCP(sig)
	assert.True(t, sig.HasFlag(FlagRequireStream))
}

func TestConsolidateTCPDepthForcesRequirePacket(t *testing.T) {
	sig := NewSignature()
	sig.Proto = ProtoTCP
	sig.legacy[ListPMatch].append(&SigMatch{Type: 1, Flags: SmFlagDepth})
	consolidateTCP(sig)
	assert.True(t, sig.HasFlag(FlagRequirePacket))
}

func TestConsolidateTCPStreamSizeForcesRequirePacket(t *testing.T) {
	sig := NewSignature()
	sig.Proto = ProtoTCP
	sig.legacy[ListPMatch].append(&SigMatch{Type: 1})
	sig.legacy[ListMatch].append(&SigMatch{Type: streamSizeKeywordID})
	consolidateTCP(sig)
	assert.True(t, sig.HasFlag(FlagRequirePacket))
}

func TestConsolidateTCPSkipsNonTCP(t *testing.T) {
	sig := NewSignature()
	sig.Proto = ProtoUDP
	sig.legacy[ListPMatch].append(&SigMatch{Type: 1})
	consolidateTCP(sig)
	assert.False(t, sig.HasFlag(FlagRequireStream), "non-TCP signatures are not consolidated")
}

func TestSetSigTypeIPOnly(t *testing.T) {
	sig := NewSignature()
	setSigType(sig)
	assert.Equal(t, SigTypeIPOnly, sig.Type)
}

func TestSetSigTypeAppTx(t *testing.T) {
	sig := NewSignature()
	sig.SetFlag(FlagAppLayer)
	setSigType(sig)
	assert.Equal(t, SigTypeAppTx, sig.Type)
}

func TestSetSigTypePkt(t *testing.T) {
	sig := NewSignature()
	sig.legacy[ListPMatch].append(&SigMatch{Type: 1})
	setSigType(sig)
	assert.Equal(t, SigTypePkt, sig.Type)
}

func TestSetDetectTableAppTD(t *testing.T) {
	sig := NewSignature()
	sig.Type = SigTypeAppTx
	setDetectTable(sig)
	assert.Equal(t, TableAppTD, sig.Table)
}

func TestSetDetectTableFirewallPreStream(t *testing.T) {
	sig := NewSignature()
	sig.SetFlag(FlagFirewall)
	sig.Hook = Hook{Kind: HookPkt, Phase: PhasePreStream}
	setDetectTable(sig)
	assert.Equal(t, TablePacketPreStream, sig.Table)
}

func TestValidateTableCompatibilityRejectsUnsupportedKeyword(t *testing.T) {
	reg := NewRegistry()
	entry := &KeywordTableEntry{Name: "onlyAppTD", Tables: []DetectTable{TableAppTD}}
	id := reg.Register(entry)
	e := &EngineCtx{Registry: reg}

	sig := NewSignature()
	sig.Table = TablePacketTD
	sig.legacy[ListMatch].append(&SigMatch{Type: uint16(id)})

	err := validateTableCompatibility(e, sig)
	assert.Error(t, err)
}

func TestValidateFileHandlingRejectsRawBytesWithFileData(t *testing.T) {
	sig := NewSignature()
	sig.touchesFileData = true
	sig.Alproto = ALProtoHTTP
	sig.buffers = append(sig.buffers, Buffer{ID: ListFileData, Kind: BufferKindApp})
	sig.buffers[0].append(&SigMatch{Type: 1, Flags: SmFlagRawBytes})

	err := validateFileHandling(sig)
	assert.Error(t, err)
}

func TestValidateFileHandlingRejectsUnsupportedAlproto(t *testing.T) {
	sig := NewSignature()
	sig.touchesFileData = true
	sig.Alproto = ALProtoDNS
	err := validateFileHandling(sig)
	assert.Error(t, err)
}

func TestValidateFileHandlingRejectsHTTP2Filename(t *testing.T) {
	sig := NewSignature()
	sig.touchesFileData = true
	sig.touchesFilename = true
	sig.Alproto = ALProtoHTTP2
	err := validateFileHandling(sig)
	assert.Error(t, err)
}

func TestValidateFileHandlingNoOpWithoutFileData(t *testing.T) {
	sig := NewSignature()
	assert.NoError(t, validateFileHandling(sig))
}
