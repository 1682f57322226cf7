package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dubplan/backend/internal/models"
)

const (
	SlotDateLayout = "2006-01-02"
	SlotTimeLayout = "15:04"
)

var slotPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (\d{2}:\d{2})-(\d{2}:\d{2})$`)

// ParseTimeSlot parses "YYYY-MM-DD HH:MM-HH:MM" in UTC. An end before the start
// is read as crossing midnight.
func ParseTimeSlot(raw string, logger zerolog.Logger) (models.Interval, error) {
	m := slotPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return models.Interval{}, fmt.Errorf("time slot %q: expected YYYY-MM-DD HH:MM-HH:MM", raw)
	}
	start, err := time.ParseInLocation(SlotDateLayout+" "+SlotTimeLayout, m[1]+" "+m[2], time.UTC)
	if err != nil {
		return models.Interval{}, fmt.Errorf("time slot %q: %w", raw, err)
	}
	end, err := time.ParseInLocation(SlotDateLayout+" "+SlotTimeLayout, m[1]+" "+m[3], time.UTC)
	if err != nil {
		return models.Interval{}, fmt.Errorf("time slot %q: %w", raw, err)
	}
	if end.Equal(start) {
		return models.Interval{}, fmt.Errorf("time slot %q: empty interval", raw)
	}
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
		logger.Warn().Str("slot", raw).Time("end", end).Msg("slot crosses midnight, end moved to next day")
	}
	return models.Interval{Start: start, End: end}, nil
}

// ParseTimeSlots parses every entry and drops the malformed ones.
func ParseTimeSlots(raw []string, logger zerolog.Logger) []models.Interval {
	out := make([]models.Interval, 0, len(raw))
	for _, s := range raw {
		iv, err := ParseTimeSlot(s, logger)
		if err != nil {
			logger.Error().Err(err).Msg("dropping time slot")
			continue
		}
		out = append(out, iv)
	}
	return out
}

func FormatTimeSlot(iv models.Interval) string {
	return iv.Start.Format(SlotDateLayout+" "+SlotTimeLayout) + "-" + iv.End.Format(SlotTimeLayout)
}
