package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccountNumber(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^CR-202603-[2-9A-HJ-NP-Z]{6}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		n, err := GenerateAccountNumber(now, 6)
		require.NoError(t, err)
		assert.Regexp(t, pattern, n)
		seen[n] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)

	_, err := GenerateAccountNumber(now, 0)
	assert.Error(t, err)
}
