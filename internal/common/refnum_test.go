package common

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewReferenceShape(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC+7", 7*3600))
	seen := map[string]bool{}
	for range 200 {
		ref, err := NewReference("PK", now)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(ref, "PK-20260301-"), ref)
		require.True(t, IsReference(ref), ref)
		for _, c := range "ILOU" {
			require.NotContains(t, ref[12:], string(c))
		}
		seen[ref] = true
	}
	require.Greater(t, len(seen), 190)
}

func TestIsReferenceRejects(t *testing.T) {
	for _, s := range []string{"", "PK-2026031-ABCDEF", "PK-20260301-ABCDEI", "pk-20260301-ABCDEF", "PK-20260301-ABCDEFG"} {
		require.False(t, IsReference(s), s)
	}
}
