package audio

import (
	"fmt"
	"strings"
)

// Speech rate and size constants.
const (
	wordsPerSecond  = 2.5
	secondsInMinute = 60
	kilobyte        = 1024
	formatKB        = "%.1f KB"
	formatClock     = "%d:%02d"
)

const invalidCharReplacement = "_"

var filenameReplacer = strings.NewReplacer(
	"<", invalidCharReplacement,
	">", invalidCharReplacement,
	":", invalidCharReplacement,
	"\"", invalidCharReplacement,
	"/", invalidCharReplacement,
	"\\", invalidCharReplacement,
	"|", invalidCharReplacement,
	"?", invalidCharReplacement,
	"*", invalidCharReplacement,
)

// FormatKilobytes formats a byte count as kilobytes with one decimal
// (e.g. "12.3 KB").
func FormatKilobytes(size int64) string {
	return fmt.Sprintf(formatKB, float64(size)/kilobyte)
}

// FormatClock formats whole seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf(formatClock, seconds/secondsInMinute, seconds%secondsInMinute)
}

// EstimateSpeechSeconds estimates the spoken length of words at the given
// speed multiplier: words / 2.5 per second / speed, truncated. A
// non-positive speed is treated as 1.
func EstimateSpeechSeconds(words int, speed float64) int {
	if speed <= 0 {
		speed = 1
	}

	return int(float64(words) / wordsPerSecond / speed)
}

// SanitizeFilename replaces characters that are invalid in most filesystems.
func SanitizeFilename(filename string) string {
	return filenameReplacer.Replace(filename)
}
