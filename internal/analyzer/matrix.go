package analyzer

import (
	"sort"

	"github.com/dubplan/backend/internal/models"
)

type MatrixRow struct {
	Speaker  string `json:"speaker"`
	Segments []int  `json:"segments"`
}

// SpeakerMatrix records which segments each speaker appears in. The header
// section before the first boundary (segment 0) is not part of it.
type SpeakerMatrix struct {
	Segments []int       `json:"segments"`
	Rows     []MatrixRow `json:"rows"`
}

func BuildSpeakerMatrix(lines []models.ScriptLine) SpeakerMatrix {
	bySpeaker := map[string]map[int]struct{}{}
	segSet := map[int]struct{}{}
	for _, l := range lines {
		if l.Segment <= 0 {
			continue
		}
		segSet[l.Segment] = struct{}{}
		if l.Speaker == "" {
			continue
		}
		if bySpeaker[l.Speaker] == nil {
			bySpeaker[l.Speaker] = map[int]struct{}{}
		}
		bySpeaker[l.Speaker][l.Segment] = struct{}{}
	}

	m := SpeakerMatrix{Segments: sortedKeys(segSet)}
	for sp, segs := range bySpeaker {
		m.Rows = append(m.Rows, MatrixRow{Speaker: sp, Segments: sortedKeys(segs)})
	}
	sort.Slice(m.Rows, func(i, j int) bool { return m.Rows[i].Speaker < m.Rows[j].Speaker })
	return m
}

// Has reports whether speaker appears in segment.
func (m SpeakerMatrix) Has(speaker string, segment int) bool {
	for _, r := range m.Rows {
		if r.Speaker != speaker {
			continue
		}
		i := sort.SearchInts(r.Segments, segment)
		return i < len(r.Segments) && r.Segments[i] == segment
	}
	return false
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
