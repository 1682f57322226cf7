package scheduler

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/dubplan/backend/internal/models"
	"github.com/dubplan/backend/internal/utils"
)

const (
	DefaultRecordingDays   = 6
	DefaultRecordingWindow = "09:00-17:00"
)

// ParseAvailability converts per-speaker slot strings into intervals. Malformed
// entries are dropped; a speaker whose entries are all malformed keeps an empty list.
func ParseAvailability(raw map[string][]string, logger zerolog.Logger) models.Availability {
	out := make(models.Availability, len(raw))
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out[name] = utils.ParseTimeSlots(raw[name], logger.With().Str("speaker", name).Logger())
	}
	return out
}

func ParseSlots(raw []string, logger zerolog.Logger) []models.Interval {
	return utils.ParseTimeSlots(raw, logger)
}

// DefaultRecordingSlots builds one window per day starting at from.
func DefaultRecordingSlots(from time.Time, days int, window string, logger zerolog.Logger) []models.Interval {
	if days <= 0 {
		days = DefaultRecordingDays
	}
	if window == "" {
		window = DefaultRecordingWindow
	}
	raw := make([]string, 0, days)
	for i := 0; i < days; i++ {
		raw = append(raw, from.AddDate(0, 0, i).Format(utils.SlotDateLayout)+" "+window)
	}
	return utils.ParseTimeSlots(raw, logger)
}
