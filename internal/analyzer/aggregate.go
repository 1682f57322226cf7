package analyzer

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/dubplan/backend/internal/models"
	"github.com/dubplan/backend/internal/utils"
)

const (
	// MaxSpeakerBucket is the "5 or more speakers" bucket.
	MaxSpeakerBucket = 5

	defaultNominalSmall = 60
	defaultNominalLarge = 200
)

// NominalDurations maps a segment's speaker count to the seconds allotted per line.
type NominalDurations map[int]float64

func DefaultNominalDurations() NominalDurations {
	return NominalDurations{1: 60, 2: 90, 3: 120, 4: 150, 5: 200}
}

func (d NominalDurations) For(numSpeakers int) float64 {
	switch {
	case numSpeakers >= MaxSpeakerBucket:
		if v, ok := d[MaxSpeakerBucket]; ok {
			return v
		}
		return defaultNominalLarge
	case numSpeakers > 0:
		if v, ok := d[numSpeakers]; ok {
			return v
		}
		return defaultNominalSmall
	default:
		return 0
	}
}

type Aggregation struct {
	Lines    []models.AnnotatedLine `json:"lines"`
	Segments []models.Segment       `json:"segments"`
}

// Aggregate groups classified lines by segment. Segments without any speaker are
// left out of Segments but their lines are still annotated.
func Aggregate(lines []models.ScriptLine, durations NominalDurations, logger zerolog.Logger) Aggregation {
	if durations == nil {
		durations = DefaultNominalDurations()
	}

	bySegment := map[int]*models.Segment{}
	seen := map[int]map[string]struct{}{}
	for _, l := range lines {
		seg, ok := bySegment[l.Segment]
		if !ok {
			seg = &models.Segment{ID: l.Segment}
			bySegment[l.Segment] = seg
			seen[l.Segment] = map[string]struct{}{}
		}
		if l.Speaker == "" {
			continue
		}
		seg.Lines++
		if _, dup := seen[l.Segment][l.Speaker]; !dup {
			seen[l.Segment][l.Speaker] = struct{}{}
			seg.Speakers = append(seg.Speakers, l.Speaker)
		}
	}

	ids := make([]int, 0, len(bySegment))
	for id, seg := range bySegment {
		seg.NumSpeakers = len(seg.Speakers)
		seg.NominalSeconds = durations.For(seg.NumSpeakers)
		seg.TotalSeconds = seg.NominalSeconds * float64(seg.Lines)
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := Aggregation{Lines: make([]models.AnnotatedLine, 0, len(lines))}
	for _, id := range ids {
		seg := bySegment[id]
		if seg.NumSpeakers == 0 {
			logger.Debug().Int("segment", id).Msg("segment has no speakers, excluded")
			continue
		}
		out.Segments = append(out.Segments, *seg)
	}
	for _, l := range lines {
		seg := bySegment[l.Segment]
		out.Lines = append(out.Lines, models.AnnotatedLine{
			ScriptLine:           l,
			TimeInSeconds:        utils.TimecodeSeconds(l.Timecode, logger),
			NumSpeakersInSegment: seg.NumSpeakers,
			NominalSeconds:       seg.NominalSeconds,
		})
	}

	logger.Info().
		Int("segments", len(out.Segments)).
		Int("lines", len(out.Lines)).
		Msg("segments aggregated")
	return out
}
