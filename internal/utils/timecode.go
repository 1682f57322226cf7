package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

var firstTimecode = regexp.MustCompile(`(?:\bA\s*|\b)\d{2}:\d{2}(?::\d{2})?`)

// TimecodeSeconds converts the first timecode of a timecode field into seconds.
// HH:MM:SS and MM:SS are accepted; an optional leading "A" marker and the end of
// a range are ignored. Anything else yields 0.
func TimecodeSeconds(raw string, logger zerolog.Logger) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	code := firstTimecode.FindString(raw)
	if code == "" {
		logger.Warn().Str("timecode", raw).Msg("unrecognized timecode")
		return 0
	}
	code = strings.TrimSpace(strings.TrimPrefix(code, "A"))

	parts := strings.Split(code, ":")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			logger.Warn().Str("timecode", raw).Err(err).Msg("invalid timecode component")
			return 0
		}
		nums = append(nums, n)
	}

	switch len(nums) {
	case 3:
		return float64(nums[0]*3600 + nums[1]*60 + nums[2])
	case 2:
		return float64(nums[0]*60 + nums[1])
	default:
		logger.Warn().Str("timecode", raw).Msg("unexpected timecode shape")
		return 0
	}
}
