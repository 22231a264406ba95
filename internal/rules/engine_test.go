// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: a plain unidirectional rule with a negated destination.
func TestScenario1SimpleRule(t *testing.T) {
	e := newTestEngine(t)
	primary, clone, err := e.ParseRule(`alert tcp 1.2.3.4 any -> !1.2.3.4 any (msg:"t"; sid:1;)`)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.Nil(t, clone)
	assert.Equal(t, ActionAlert, primary.Action)
	assert.False(t, primary.HasFlag(FlagSrcAny))
	assert.True(t, primary.Dst.Addr.Negated)
}

// Scenario 2: equal source/dest sets on a bidirectional rule suppress cloning.
func TestScenario2EqualEndpointsSuppressClone(t *testing.T) {
	e := newTestEngine(t)
	primary, clone, err := e.ParseRule(`alert tcp any any <> any any (sid:1;)`)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.Nil(t, clone)
	assert.False(t, primary.HasFlag(FlagInitBidirec))
}

// Scenario 3: differing source/dest sets on a bidirectional rule produce
// a swapped sibling, both carrying INIT_BIDIREC.
func TestScenario3DifferingEndpointsProducesSibling(t *testing.T) {
	e := newTestEngine(t)
	primary, clone, err := e.ParseRule(`alert tcp 1.2.3.4 1024:65535 <> !1.2.3.4 any (msg:"t"; sid:1;)`)
	require.NoError(t, err)
	require.NotNil(t, primary)
	require.NotNil(t, clone)
	assert.True(t, primary.HasFlag(FlagInitBidirec))
	assert.True(t, clone.HasFlag(FlagInitBidirec))

	idx := NewDuplicateIndex()
	idx.Insert(primary, clone)
	assert.Equal(t, 2, idx.Len())
}

// Scenario 4: dsize forces REQUIRE_PACKET without REQUIRE_STREAM.
func TestScenario4DsizeForcesRequirePacketOnly(t *testing.T) {
	e := newTestEngine(t)
	primary, _, err := e.ParseRule(`alert tcp any any -> any any (content:"abc"; dsize:>0; sid:1;)`)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.True(t, primary.HasFlag(FlagRequirePacket))
	assert.False(t, primary.HasFlag(FlagRequireStream))
}

// Scenario 5: content alone on a TCP rule implies REQUIRE_STREAM, not
// REQUIRE_PACKET.
func TestScenario5ContentAloneImpliesRequireStream(t *testing.T) {
	e := newTestEngine(t)
	primary, _, err := e.ParseRule(`alert tcp any any -> any any (content:"abc"; sid:1;)`)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.True(t, primary.HasFlag(FlagRequireStream))
	assert.False(t, primary.HasFlag(FlagRequirePacket))
}

// Scenario 6: revision sequencing across three loads of the same (gid,sid)
// ends with exactly one signature at the highest revision seen.
func TestScenario6RevisionSequencing(t *testing.T) {
	e := newTestEngine(t)
	rs := NewRuleset(e)
	input := strings.Join([]string{
		`alert tcp any any -> any any (sid:1; rev:1;)`,
		`alert tcp any any -> any any (sid:1; rev:2;)`,
		`alert tcp any any -> any any (sid:1; rev:1;)`,
	}, "\n")

	_, _, err := rs.LoadReader(strings.NewReader(input))
	require.NoError(t, err)

	sigs := rs.Signatures()
	require.Len(t, sigs, 1)
	assert.Equal(t, 2, sigs[0].Rev)
}

// Scenario 7: negating "any" is a parse error.
func TestScenario7NegatedAnyIsParseError(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.ParseRule(`alert tcp any !any -> any any (sid:1;)`)
	assert.Error(t, err)
}

// Scenario 8: rawbytes is incompatible with file_data.
func TestScenario8RawbytesIncompatibleWithFileData(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.ParseRule(`alert http any any -> any any (file_data; content:"x"; rawbytes; sid:1;)`)
	assert.Error(t, err)
}

// Quantified invariant: REQUIRE_PACKET and REQUIRE_STREAM cannot both be
// set explicitly by the user.
func TestInvariantPacketAndStreamExplicitBothRejected(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.ParseRule(`alert tcp any any -> any any (dsize:>0; stream_size:client,>,10; sid:1;)`)
	assert.Error(t, err)
}

// Quantified invariant: a mandatory-quoted option is rejected unquoted.
func TestInvariantQuotesMandatoryRejectsUnquoted(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.ParseRule(`alert tcp any any -> any any (msg:unquoted; sid:1;)`)
	assert.Error(t, err)
}

// Boundary: a rule with 63 options is accepted.
func TestBoundary63OptionsAccepted(t *testing.T) {
	e := newTestEngine(t)
	var refs []string
	for i := 0; i < 61; i++ {
		refs = append(refs, fmt.Sprintf(`reference:cve,2020-%04d`, i))
	}
	line := fmt.Sprintf(`alert tcp any any -> any any (sid:1; %s;)`, strings.Join(refs, "; "))
	// 1 (sid) + 61 (reference) + trailing semicolon accounted for by
	// SplitOptions = 62 options; add one more to reach 63.
	line = fmt.Sprintf(`alert tcp any any -> any any (sid:1; classtype:trojan-activity; %s;)`, strings.Join(refs, "; "))

	primary, _, err := e.ParseRule(line)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.Len(t, primary.References, 61)
}

// Boundary: the 65th distinct buffer id overflows the buffer vector cap.
func TestBoundaryBufferVectorCapOverflow(t *testing.T) {
	sig := NewSignature()
	for i := 0; i < BufferCap; i++ {
		_, err := sig.AppendMatch(listMax+i, 1, nil, "b", BufferKindApp, false)
		require.NoError(t, err)
	}
	_, err := sig.AppendMatch(listMax+BufferCap, 1, nil, "overflow", BufferKindApp, false)
	assert.Error(t, err)
}

// Boundary: sid absent is a parse error (after the requires-only pass).
func TestBoundaryMissingSidErrors(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.ParseRule(`alert tcp any any -> any any (msg:"no sid";)`)
	assert.Error(t, err)
}

// Boundary: an out-of-range port literal is rejected.
func TestBoundaryOutOfRangePort(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.ParseRule(`alert tcp any any -> any 1024:65536 (sid:1;)`)
	assert.Error(t, err)
}

// Round-trip: parsing the same rule text through two independent engines
// produces structurally equivalent signatures.
func TestRoundTripStructuralEquivalence(t *testing.T) {
	line := `alert tcp any any -> any any (content:"abc"; nocase; sid:1; rev:3;)`
	e1 := NewEngineCtx(nil, nil)
	e2 := NewEngineCtx(nil, nil)

	s1, _, err := e1.ParseRule(line)
	require.NoError(t, err)
	s2, _, err := e2.ParseRule(line)
	require.NoError(t, err)

	assert.Equal(t, s1.Flags, s2.Flags)
	assert.Equal(t, s1.Action, s2.Action)
	assert.Equal(t, s1.Rev, s2.Rev)

	c1 := s1.legacy[ListPMatch].head.Ctx.(*ContentCtx)
	c2 := s2.legacy[ListPMatch].head.Ctx.(*ContentCtx)
	assert.Equal(t, c1.Pattern, c2.Pattern)
	assert.Equal(t, c1.Nocase, c2.Nocase)
}
