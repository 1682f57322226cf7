package scheduler

import (
	"time"

	"github.com/dubplan/backend/internal/models"
)

const (
	DefaultCalendarDays        = 7
	DefaultCalendarStartHour   = 8
	DefaultCalendarEndHour     = 20
	DefaultCalendarGranularity = 30 * time.Minute
)

type CalendarOptions struct {
	From        time.Time
	Days        int
	StartHour   int
	EndHour     int
	Granularity time.Duration
}

func (o CalendarOptions) withDefaults() CalendarOptions {
	if o.Days <= 0 {
		o.Days = DefaultCalendarDays
	}
	if o.StartHour <= 0 && o.EndHour <= 0 {
		o.StartHour, o.EndHour = DefaultCalendarStartHour, DefaultCalendarEndHour
	}
	if o.EndHour <= o.StartHour {
		o.EndHour = DefaultCalendarEndHour
	}
	if o.Granularity <= 0 {
		o.Granularity = DefaultCalendarGranularity
	}
	return o
}

type CalendarCell struct {
	models.Interval
	Available []string `json:"available"`
	Recording bool     `json:"recording"`
}

type Calendar struct {
	Speakers []string       `json:"speakers"`
	Cells    []CalendarCell `json:"cells"`
}

// BuildCalendar lays a fixed grid over the given days and marks, for every cell,
// the speakers whose availability overlaps it and whether a recording slot does.
func BuildCalendar(speakers []string, availability models.Availability, recording []models.Interval, opts CalendarOptions) Calendar {
	opts = opts.withDefaults()
	day := time.Date(opts.From.Year(), opts.From.Month(), opts.From.Day(), 0, 0, 0, 0, opts.From.Location())

	cal := Calendar{Speakers: speakers}
	for d := 0; d < opts.Days; d++ {
		date := day.AddDate(0, 0, d)
		cur := date.Add(time.Duration(opts.StartHour) * time.Hour)
		limit := date.Add(time.Duration(opts.EndHour) * time.Hour)
		for cur.Before(limit) {
			cell := CalendarCell{Interval: models.Interval{Start: cur, End: cur.Add(opts.Granularity)}, Available: []string{}}
			for _, sp := range speakers {
				if _, ok := overlappingWindow(availability[sp], cell.Interval); ok {
					cell.Available = append(cell.Available, sp)
				}
			}
			_, cell.Recording = overlappingWindow(recording, cell.Interval)
			cal.Cells = append(cal.Cells, cell)
			cur = cell.End
		}
	}
	return cal
}
