package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		name     string
		balance  int64
		expected string
	}{
		{name: "zero", balance: 0, expected: "0"},
		{name: "small", balance: 950, expected: "950"},
		{name: "thousands", balance: 12345, expected: "12,345"},
		{name: "millions", balance: 1234567, expected: "1,234,567"},
		{name: "negative", balance: -12345, expected: "-12,345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBalance(tt.balance))
		})
	}
}

func TestFormatXPProgress(t *testing.T) {
	t.Run("empty bar at level start", func(t *testing.T) {
		// Level 3 needs 300 xp
		assert.Equal(t, "░░░░░░░░░░ 0/300 xp", FormatXPProgress(0, 3, 50))
	})

	t.Run("half full", func(t *testing.T) {
		assert.Equal(t, "█████░░░░░ 150/300 xp", FormatXPProgress(150, 3, 50))
	})

	t.Run("max level banks xp", func(t *testing.T) {
		assert.Equal(t, "MAX (level 50, 123 xp banked)", FormatXPProgress(123, 50, 50))
	})
}
