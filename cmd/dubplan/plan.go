package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dubplan/backend/internal/convert"
	"github.com/dubplan/backend/internal/service"
)

// planFile is the YAML description of speaker availability and studio time.
//
//	start_date: "2024-05-06"
//	recording_slots:
//	  - "2024-05-06 09:00-17:00"
//	availability:
//	  EVA:
//	    - "2024-05-06 09:00-12:00"
type planFile struct {
	StartDate      string              `yaml:"start_date"`
	Days           int                 `yaml:"days"`
	RecordingSlots []string            `yaml:"recording_slots"`
	Availability   map[string][]string `yaml:"availability"`
}

func loadPlan(path string) (planFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return planFile{}, fmt.Errorf("read plan: %w", err)
	}
	var plan planFile
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return planFile{}, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if len(plan.Availability) == 0 {
		return planFile{}, fmt.Errorf("plan %s: availability is empty", path)
	}
	return plan, nil
}

func (p planFile) scheduleRequest() service.ScheduleRequest {
	return service.ScheduleRequest{
		Availability:   p.Availability,
		RecordingSlots: p.RecordingSlots,
		StartDate:      p.StartDate,
	}
}

func (p planFile) calendarRequest(speakers []string) service.CalendarRequest {
	return service.CalendarRequest{
		Speakers:       speakers,
		Availability:   p.Availability,
		RecordingSlots: p.RecordingSlots,
		StartDate:      p.StartDate,
		Days:           p.Days,
	}
}

// readScripts converts every file into chunks, in argument order.
func readScripts(ctx context.Context, conv convert.Converter, paths []string) ([]string, error) {
	var chunks []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		c, err := conv.Convert(ctx, filepath.Base(path), data)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
		chunks = append(chunks, c...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no script text found")
	}
	return chunks, nil
}
