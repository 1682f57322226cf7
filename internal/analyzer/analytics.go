package analyzer

import (
	"sort"
	"strconv"

	"github.com/dubplan/backend/internal/models"
)

type SpeakerCountBucket struct {
	NumSpeakers  int     `json:"num_speakers"`
	Label        string  `json:"label"`
	Segments     int     `json:"segments"`
	TotalSeconds float64 `json:"total_seconds"`
}

type SpeakerTime struct {
	Speaker      string  `json:"speaker"`
	Segments     int     `json:"segments"`
	TotalSeconds float64 `json:"total_seconds"`
}

// TimeBySpeakerCount buckets segment durations by speaker count, 1 through 5+.
// Every bucket is present even when empty.
func TimeBySpeakerCount(segments []models.Segment) []SpeakerCountBucket {
	out := make([]SpeakerCountBucket, MaxSpeakerBucket)
	for i := range out {
		n := i + 1
		out[i] = SpeakerCountBucket{NumSpeakers: n, Label: strconv.Itoa(n)}
	}
	out[MaxSpeakerBucket-1].Label = strconv.Itoa(MaxSpeakerBucket) + "+"

	for _, seg := range segments {
		if seg.NumSpeakers <= 0 {
			continue
		}
		idx := seg.NumSpeakers
		if idx > MaxSpeakerBucket {
			idx = MaxSpeakerBucket
		}
		out[idx-1].Segments++
		out[idx-1].TotalSeconds += seg.TotalSeconds
	}
	return out
}

// TimePerSpeaker sums, for every speaker, the full duration of each segment the
// speaker takes part in. Ordered by total time, longest first.
func TimePerSpeaker(segments []models.Segment) []SpeakerTime {
	totals := map[string]*SpeakerTime{}
	for _, seg := range segments {
		for _, sp := range seg.Speakers {
			st, ok := totals[sp]
			if !ok {
				st = &SpeakerTime{Speaker: sp}
				totals[sp] = st
			}
			st.Segments++
			st.TotalSeconds += seg.TotalSeconds
		}
	}

	out := make([]SpeakerTime, 0, len(totals))
	for _, st := range totals {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSeconds != out[j].TotalSeconds {
			return out[i].TotalSeconds > out[j].TotalSeconds
		}
		return out[i].Speaker < out[j].Speaker
	})
	return out
}

// UniqueSpeakers lists every non-empty speaker name, sorted.
func UniqueSpeakers(lines []models.ScriptLine) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, l := range lines {
		if l.Speaker == "" {
			continue
		}
		if _, ok := seen[l.Speaker]; ok {
			continue
		}
		seen[l.Speaker] = struct{}{}
		out = append(out, l.Speaker)
	}
	sort.Strings(out)
	return out
}
