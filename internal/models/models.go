package models

import (
	"encoding/json"
	"strconv"
	"time"
)

const (
	StatusAssigned   = "ASSIGNED"
	StatusUnassigned = "UNASSIGNED"
)

type ScriptLine struct {
	Segment           int    `json:"segment"`
	Speaker           string `json:"speaker"`
	Timecode          string `json:"timecode"`
	Text              string `json:"text"`
	SceneMarker       string `json:"scene_marker"`
	IsSegmentBoundary bool   `json:"is_segment_boundary"`
	Method            string `json:"method,omitempty"`
}

// SegmentMarker is the segment id rendered as text on boundary lines and empty elsewhere.
func (l ScriptLine) SegmentMarker() string {
	if !l.IsSegmentBoundary {
		return ""
	}
	return strconv.Itoa(l.Segment)
}

type AnnotatedLine struct {
	ScriptLine
	TimeInSeconds        float64 `json:"time_in_seconds"`
	NumSpeakersInSegment int     `json:"num_speakers_in_segment"`
	NominalSeconds       float64 `json:"nominal_seconds"`
}

type Segment struct {
	ID             int      `json:"id"`
	Speakers       []string `json:"speakers"`
	NumSpeakers    int      `json:"num_speakers"`
	Lines          int      `json:"lines"`
	NominalSeconds float64  `json:"nominal_seconds"`
	TotalSeconds   float64  `json:"total_seconds"`
}

type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the two intervals share a non-empty span.
func (i Interval) Overlaps(o Interval) bool {
	start := i.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := i.End
	if o.End.Before(end) {
		end = o.End
	}
	return start.Before(end)
}

type Availability map[string][]Interval

type Assignment struct {
	SegmentID       int        `json:"segment_id"`
	Speakers        []string   `json:"speakers"`
	DurationSeconds float64    `json:"duration_seconds"`
	Start           *time.Time `json:"start"`
	End             *time.Time `json:"end"`
	Status          string     `json:"status"`
}

type SpeakerSummary struct {
	Speaker               string     `json:"speaker"`
	TotalScheduledSeconds float64    `json:"total_scheduled_seconds"`
	SegmentCount          int        `json:"segment_count"`
	RangeStart            time.Time  `json:"range_start"`
	RangeEnd              time.Time  `json:"range_end"`
	IdleSeconds           float64    `json:"idle_seconds"`
	Ranges                []Interval `json:"ranges"`
}

type Run struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Fingerprint string          `json:"fingerprint"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at"`
	Summary     json.RawMessage `json:"summary,omitempty"`
}
