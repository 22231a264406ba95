// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaybeCloneNoBidirecFlagIsNoop(t *testing.T) {
	e := newTestEngine(t)
	sig := NewSignature()
	clone, err := e.MaybeClone(sig)
	require.NoError(t, err)
	assert.Nil(t, clone)
}

func TestMaybeCloneEqualEndpointsSuppressesClone(t *testing.T) {
	e := newTestEngine(t)
	line := `alert tcp 10.0.0.1 80 <> 10.0.0.1 80 (sid:1;)`
	primary, clone, err := e.ParseRule(line)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.Nil(t, clone, "equal src/dst endpoint sets must suppress the clone")
	assert.False(t, primary.HasFlag(FlagInitBidirec))
}

func TestMaybeCloneProducesSwappedSibling(t *testing.T) {
	e := newTestEngine(t)
	line := `alert tcp 10.0.0.1 any <> 10.0.0.2 any (sid:1;)`
	primary, clone, err := e.ParseRule(line)
	require.NoError(t, err)
	require.NotNil(t, primary)
	require.NotNil(t, clone)

	assert.True(t, primary.Src.Addr.Equal(clone.Dst.Addr))
	assert.True(t, primary.Dst.Addr.Equal(clone.Src.Addr))
}
