// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexBasicRule(t *testing.T) {
	tokens, opts, err := Lex(`alert tcp any any -> any 80 (msg:"test"; sid:1;)`)
	require.NoError(t, err)
	require.Len(t, tokens, HeaderFieldCount)
	assert.Equal(t, []string{"alert", "tcp", "any", "any", "->", "any", "80"}, tokens)
	assert.Equal(t, `msg:"test"; sid:1;`, opts)
}

func TestLexBracketedAddressField(t *testing.T) {
	tokens, _, err := Lex(`alert tcp [10.0.0.0/8, 192.168.0.0/16] any -> any any (sid:1;)`)
	require.NoError(t, err)
	assert.Equal(t, "[10.0.0.0/8, 192.168.0.0/16]", tokens[2])
}

func TestLexMissingOpenParen(t *testing.T) {
	_, _, err := Lex(`alert tcp any any -> any any sid:1;`)
	assert.Error(t, err)
}

func TestLexUnterminatedOptionList(t *testing.T) {
	_, _, err := Lex(`alert tcp any any -> any any (sid:1;`)
	assert.Error(t, err)
}

func TestLexWrongFieldCount(t *testing.T) {
	_, _, err := Lex(`alert tcp any -> any any (sid:1;)`)
	assert.Error(t, err)
}

func TestLexRejectsInvalidUTF8(t *testing.T) {
	bad := "alert tcp any any -> any any (sid:1;)" + string([]byte{0xff, 0xfe})
	_, _, err := Lex(bad)
	assert.Error(t, err)
}

func TestLexRejectsControlChar(t *testing.T) {
	bad := "alert tcp any any -> any any (msg:\"x\x01y\"; sid:1;)"
	_, _, err := Lex(bad)
	assert.Error(t, err)
}

func TestLexAllowsTabAndCR(t *testing.T) {
	_, _, err := Lex("alert\ttcp any any -> any any (sid:1;)\r\n")
	assert.NoError(t, err)
}

func TestSplitOptionsBasic(t *testing.T) {
	opts, err := SplitOptions(`msg:"hello"; sid:1; rev:2;`)
	require.NoError(t, err)
	assert.Equal(t, []string{`msg:"hello"`, "sid:1", "rev:2"}, opts)
}

func TestSplitOptionsEscapedSemicolon(t *testing.T) {
	opts, err := SplitOptions(`msg:"a\;b"; sid:1;`)
	require.NoError(t, err)
	assert.Equal(t, []string{`msg:"a\;b"`, "sid:1"}, opts)
}

func TestSplitOptionsUnterminatedTrailing(t *testing.T) {
	_, err := SplitOptions(`msg:"hello"; sid:1`)
	assert.Error(t, err)
}

func TestSplitOptionsDanglingEscape(t *testing.T) {
	_, err := SplitOptions(`msg:"hello\`)
	assert.Error(t, err)
}

func TestSplitOptionsEmpty(t *testing.T) {
	opts, err := SplitOptions("")
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestTokenizeFieldsUnbalancedBracket(t *testing.T) {
	_, err := tokenizeFields("alert tcp [10.0.0.0/8 any -> any any")
	assert.Error(t, err)
}
