package common

import (
	"fmt"
	"strings"
	"time"

	"steward/models"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	str := fmt.Sprintf("%d", balance)
	if balance < 0 {
		str = str[1:]
	}

	n := len(str)
	var result strings.Builder
	if balance < 0 {
		result.WriteRune('-')
	}
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays
// in the reader's local timezone. Format types: "t" short time, "R" relative,
// "f" short date/time.
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatXPProgress renders a text progress bar toward the next level
func FormatXPProgress(xp, level, maxLevel int) string {
	if level >= maxLevel {
		return fmt.Sprintf("MAX (level %d, %d xp banked)", level, xp)
	}

	needed := models.XPForNextLevel(level)
	const width = 10
	filled := xp * width / needed
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d/%d xp", bar, xp, needed)
}
