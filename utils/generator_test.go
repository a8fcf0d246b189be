package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var encounterCodePattern = regexp.MustCompile(`^ENC-[A-HJ-NP-Z2-9]{8}$`)

func TestGenerateEncounterCodeFormat(t *testing.T) {
	g := NewCodeGenerator()

	code, err := g.GenerateEncounterCode()
	require.NoError(t, err)
	assert.Regexp(t, encounterCodePattern, code)
}

func TestGenerateEncounterCodeOmitsConfusableCharacters(t *testing.T) {
	g := NewCodeGenerator()

	for i := 0; i < 200; i++ {
		code, err := g.GenerateEncounterCode()
		require.NoError(t, err)
		assert.NotContains(t, code[4:], "0")
		assert.NotContains(t, code[4:], "O")
		assert.NotContains(t, code[4:], "1")
		assert.NotContains(t, code[4:], "I")
	}
}

func TestGenerateEncounterCodeIsUnique(t *testing.T) {
	g := NewCodeGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := g.GenerateEncounterCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestCleanupOldCodesResetsWhenOverLimit(t *testing.T) {
	g := NewCodeGenerator()

	for i := 0; i < 50; i++ {
		_, err := g.GenerateEncounterCode()
		require.NoError(t, err)
	}

	g.CleanupOldCodes(10)
	assert.Empty(t, g.usedCodes)

	// Under the limit nothing is discarded.
	_, err := g.GenerateEncounterCode()
	require.NoError(t, err)
	g.CleanupOldCodes(10)
	assert.Len(t, g.usedCodes, 1)
}
