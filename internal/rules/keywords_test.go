// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	id := reg.Register(&KeywordTableEntry{Name: "foo", Alias: "bar"})
	assert.Equal(t, 0, id)

	entry, ok := reg.Lookup("FOO")
	require.True(t, ok)
	assert.Equal(t, "foo", entry.Name)

	aliasEntry, ok := reg.Lookup("BAR")
	require.True(t, ok)
	assert.Same(t, entry, aliasEntry)
}

func TestRegistryIndexStable(t *testing.T) {
	reg := NewRegistry()
	e1 := &KeywordTableEntry{Name: "a"}
	e2 := &KeywordTableEntry{Name: "b"}
	id1 := reg.Register(e1)
	id2 := reg.Register(e2)
	assert.Equal(t, id1, reg.Index(e1))
	assert.Equal(t, id2, reg.Index(e2))
	assert.NotEqual(t, id1, id2)
}

func TestRegistryEntryByTypeID(t *testing.T) {
	reg := NewRegistry()
	e1 := &KeywordTableEntry{Name: "a"}
	id := reg.Register(e1)
	got := reg.entryByTypeID(uint16(id))
	assert.Same(t, e1, got)

	assert.Nil(t, reg.entryByTypeID(999))
}

func TestRegistryApplyStrictSingleKeyword(t *testing.T) {
	reg := NewRegistry()
	e1 := &KeywordTableEntry{Name: "content"}
	e2 := &KeywordTableEntry{Name: "pcre"}
	reg.Register(e1)
	reg.Register(e2)
	reg.ApplyStrict("content")
	assert.True(t, e1.Flags.has(STRICT_PARSING))
	assert.False(t, e2.Flags.has(STRICT_PARSING))
}

func TestKeywordFlagHas(t *testing.T) {
	f := NOOPT | QUOTES_MANDATORY
	assert.True(t, f.has(NOOPT))
	assert.True(t, f.has(QUOTES_MANDATORY))
	assert.False(t, f.has(HANDLE_NEGATION))
}
