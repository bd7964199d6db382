package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID_Format(t *testing.T) {
	id := GenerateID(PrefixApproval)

	require.True(t, strings.HasPrefix(id, "APR-"))
	parts := strings.Split(id, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 8)
}

func TestGenerateID_UniqueUnderBurst(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := GenerateID(PrefixBudget)
		require.False(t, seen[id], "duplicate id generated: %s", id)
		seen[id] = true
	}
}

func TestGenerateID_DistinctPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(GenerateID(PrefixDepartment), "DEPT-"))
	assert.True(t, strings.HasPrefix(GenerateID(PrefixBudget), "BUD-"))
}
