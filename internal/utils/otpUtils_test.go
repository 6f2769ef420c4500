package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOTPStaysInRange(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 10000; i++ {
		code, err := GenerateOTP()
		assert.NoError(t, err)
		assert.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)

		seen[code] = struct{}{}
	}

	// crude spread check: 10k draws from a 900k space should rarely
	// collide more than a handful of times
	assert.Greater(t, len(seen), 9800)
}
