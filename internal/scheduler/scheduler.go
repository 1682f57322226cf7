package scheduler

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/dubplan/backend/internal/models"
)

type Result struct {
	Assignments    []models.Assignment `json:"assignments"`
	Unassigned     []int               `json:"unassigned"`
	RemainingSlots []models.Interval   `json:"remaining_slots"`
}

// Counts returns the number of assigned and unassigned segments.
func (r Result) Counts() (assigned, unassigned int) {
	for _, a := range r.Assignments {
		if a.Status == models.StatusAssigned {
			assigned++
		}
	}
	return assigned, len(r.Unassigned)
}

type SegmentEvaluation struct {
	SlotIndex  int      `json:"slot_index"`
	Fits       bool     `json:"fits"`
	Missing    []string `json:"missing_speakers"`
	ReasonCode string   `json:"reason_code"`
}

// Schedule places segments into recording slots with a single greedy pass.
// Segments with more speakers go first, longer ones breaking ties. A slot is
// eligible when its remaining length covers the segment and every speaker has an
// availability interval overlapping the slot as a whole; the segment then takes
// the head of the slot.
func Schedule(segments []models.Segment, availability models.Availability, slots []models.Interval, logger zerolog.Logger) Result {
	queue := schedulable(segments)
	pool := NewSlotPool(slots)

	res := Result{Unassigned: []int{}}
	for _, seg := range queue {
		d := secondsToDuration(seg.TotalSeconds)
		assignment := models.Assignment{
			SegmentID:       seg.ID,
			Speakers:        seg.Speakers,
			DurationSeconds: seg.TotalSeconds,
			Status:          models.StatusUnassigned,
		}

		for i := 0; i < pool.Len(); i++ {
			eval := EvaluateSlot(seg, pool.At(i), availability)
			if !eval.Fits {
				logger.Debug().
					Int("segment", seg.ID).
					Int("slot", i).
					Str("reason", eval.ReasonCode).
					Strs("missing", eval.Missing).
					Msg("slot rejected")
				continue
			}
			used := pool.Consume(i, d)
			pool.Sort()
			start, end := used.Start, used.End
			assignment.Start = &start
			assignment.End = &end
			assignment.Status = models.StatusAssigned
			logOutsideAvailability(logger, seg, used, availability)
			logger.Debug().Int("segment", seg.ID).Time("start", start).Time("end", end).Msg("segment assigned")
			break
		}

		if assignment.Status == models.StatusUnassigned {
			res.Unassigned = append(res.Unassigned, seg.ID)
			logger.Warn().Int("segment", seg.ID).Strs("speakers", seg.Speakers).Msg("segment could not be assigned")
		}
		res.Assignments = append(res.Assignments, assignment)
	}
	res.RemainingSlots = pool.Slots()

	assigned, unassigned := res.Counts()
	logger.Info().Int("assigned", assigned).Int("unassigned", unassigned).Msg("schedule computed")
	return res
}

// EvaluateSlot checks a single segment against a single slot without consuming it.
func EvaluateSlot(seg models.Segment, slot models.Interval, availability models.Availability) SegmentEvaluation {
	eval := SegmentEvaluation{Fits: true}
	if slot.Duration() < secondsToDuration(seg.TotalSeconds) {
		eval.Fits = false
		eval.ReasonCode = "SLOT_TOO_SHORT"
		return eval
	}
	for _, sp := range seg.Speakers {
		if _, ok := overlappingWindow(availability[sp], slot); !ok {
			eval.Missing = append(eval.Missing, sp)
		}
	}
	if len(eval.Missing) > 0 {
		eval.Fits = false
		eval.ReasonCode = "SPEAKER_UNAVAILABLE"
	}
	return eval
}

func schedulable(segments []models.Segment) []models.Segment {
	out := make([]models.Segment, 0, len(segments))
	for _, seg := range segments {
		if len(seg.Speakers) == 0 || seg.TotalSeconds <= 0 {
			continue
		}
		if seg.NumSpeakers == 0 {
			seg.NumSpeakers = len(seg.Speakers)
		}
		out = append(out, seg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NumSpeakers != out[j].NumSpeakers {
			return out[i].NumSpeakers > out[j].NumSpeakers
		}
		return out[i].TotalSeconds > out[j].TotalSeconds
	})
	return out
}

func overlappingWindow(windows []models.Interval, slot models.Interval) (models.Interval, bool) {
	for _, w := range windows {
		if w.Overlaps(slot) {
			return w, true
		}
	}
	return models.Interval{}, false
}

// logOutsideAvailability reports assignments that start or end outside a
// speaker's window. Eligibility is judged against the whole slot, so this can
// happen for slots wider than the speaker's availability.
func logOutsideAvailability(logger zerolog.Logger, seg models.Segment, used models.Interval, availability models.Availability) {
	for _, sp := range seg.Speakers {
		inside := false
		for _, w := range availability[sp] {
			if !used.Start.Before(w.Start) && !used.End.After(w.End) {
				inside = true
				break
			}
		}
		if !inside {
			logger.Debug().
				Int("segment", seg.ID).
				Str("speaker", sp).
				Time("start", used.Start).
				Time("end", used.End).
				Msg("assignment extends beyond speaker availability")
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
