package scheduler

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/dubplan/backend/internal/models"
)

// Summarize groups assigned intervals per speaker. Idle time is the sum of the
// gaps between consecutive intervals ordered by start.
func Summarize(assignments []models.Assignment, logger zerolog.Logger) []models.SpeakerSummary {
	type acc struct {
		total  float64
		ranges []models.Interval
	}
	bySpeaker := map[string]*acc{}

	for _, a := range assignments {
		if a.Start == nil || a.End == nil || !a.End.After(*a.Start) {
			if a.Status == models.StatusAssigned {
				logger.Warn().Int("segment", a.SegmentID).Msg("assignment without usable interval, skipped")
			}
			continue
		}
		iv := models.Interval{Start: *a.Start, End: *a.End}
		for _, sp := range a.Speakers {
			s, ok := bySpeaker[sp]
			if !ok {
				s = &acc{}
				bySpeaker[sp] = s
			}
			s.total += a.DurationSeconds
			s.ranges = append(s.ranges, iv)
		}
	}

	out := make([]models.SpeakerSummary, 0, len(bySpeaker))
	for sp, s := range bySpeaker {
		sort.SliceStable(s.ranges, func(i, j int) bool {
			return s.ranges[i].Start.Before(s.ranges[j].Start)
		})
		sum := models.SpeakerSummary{
			Speaker:               sp,
			TotalScheduledSeconds: s.total,
			SegmentCount:          len(s.ranges),
			RangeStart:            s.ranges[0].Start,
			RangeEnd:              s.ranges[0].End,
			Ranges:                s.ranges,
		}
		for i := 1; i < len(s.ranges); i++ {
			if gap := s.ranges[i].Start.Sub(s.ranges[i-1].End); gap > 0 {
				sum.IdleSeconds += gap.Seconds()
			}
			if s.ranges[i].End.After(sum.RangeEnd) {
				sum.RangeEnd = s.ranges[i].End
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Speaker < out[j].Speaker })
	return out
}
