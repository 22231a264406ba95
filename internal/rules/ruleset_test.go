// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReaderParsesMultipleRules(t *testing.T) {
	e := newTestEngine(t)
	rs := NewRuleset(e)
	input := strings.Join([]string{
		`alert tcp any any -> any any (msg:"one"; sid:1;)`,
		`alert tcp any any -> any any (msg:"two"; sid:2;)`,
	}, "\n")

	stats, lineErrs, err := rs.LoadReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, lineErrs)
	assert.Equal(t, 2, stats.Parsed)
	assert.Len(t, rs.Signatures(), 2)
}

func TestLoadReaderSkipsBlankLinesAndComments(t *testing.T) {
	e := newTestEngine(t)
	rs := NewRuleset(e)
	input := strings.Join([]string{
		"",
		"# a genuine comment, not a disabled rule",
		`alert tcp any any -> any any (sid:1;)`,
	}, "\n")

	stats, _, err := rs.LoadReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Parsed)
}

func TestLoadReaderTreatsDisabledRuleSeparately(t *testing.T) {
	e := newTestEngine(t)
	rs := NewRuleset(e)
	input := `# alert tcp any any -> any any (sid:1;)`

	stats, _, err := rs.LoadReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Disabled)
	assert.Equal(t, 0, stats.Parsed)
}

func TestLoadReaderRecordsLineErrors(t *testing.T) {
	e := newTestEngine(t)
	rs := NewRuleset(e)
	input := strings.Join([]string{
		`alert tcp any any -> any any (sid:1;)`,
		`not a valid rule at all`,
	}, "\n")

	stats, lineErrs, err := rs.LoadReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Parsed)
	assert.Equal(t, 1, stats.Rejected)
	require.Len(t, lineErrs, 1)
	assert.Equal(t, 2, lineErrs[0].Line)
}

func TestLoadReaderDuplicateRevisionWins(t *testing.T) {
	e := newTestEngine(t)
	rs := NewRuleset(e)
	input := strings.Join([]string{
		`alert tcp any any -> any any (msg:"old"; sid:1; rev:1;)`,
		`alert tcp any any -> any any (msg:"new"; sid:1; rev:2;)`,
	}, "\n")

	stats, _, err := rs.LoadReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Duplicate, "a higher-revision insert replaces rather than duplicate-drops")
	assert.Equal(t, 2, stats.Parsed, "both the original parse and its replacement count toward Parsed")
	sigs := rs.Signatures()
	require.Len(t, sigs, 1)
	assert.Equal(t, "new", sigs[0].Msg)
}

func TestLoadReaderLowerRevisionDuplicateDropped(t *testing.T) {
	e := newTestEngine(t)
	rs := NewRuleset(e)
	input := strings.Join([]string{
		`alert tcp any any -> any any (msg:"keep"; sid:1; rev:5;)`,
		`alert tcp any any -> any any (msg:"drop"; sid:1; rev:1;)`,
	}, "\n")

	stats, _, err := rs.LoadReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Duplicate)
	sigs := rs.Signatures()
	require.Len(t, sigs, 1)
	assert.Equal(t, "keep", sigs[0].Msg)
}

func TestLooksLikeRule(t *testing.T) {
	assert.True(t, looksLikeRule(`alert tcp any any -> any any (sid:1;)`))
	assert.False(t, looksLikeRule("just a comment"))
}
