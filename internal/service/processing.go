package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dubplan/backend/internal/analyzer"
	"github.com/dubplan/backend/internal/events"
	"github.com/dubplan/backend/internal/metrics"
	"github.com/dubplan/backend/internal/models"
	"github.com/dubplan/backend/internal/parser"
	"github.com/dubplan/backend/internal/scheduler"
	"github.com/dubplan/backend/internal/utils"
)

const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"

	tracerName = "dubplan/service"
)

// RunStore persists parse runs and their schedules. *db.Store implements it.
type RunStore interface {
	CreateRun(ctx context.Context, status, fingerprint string) (string, error)
	FinishRun(ctx context.Context, runID string, status string, summary []byte) error
	GetRun(ctx context.Context, runID string) (models.Run, error)
	SaveParse(ctx context.Context, runID string, lines []models.ScriptLine, segments []models.Segment) error
	ListSegments(ctx context.Context, runID string) ([]models.Segment, error)
	ReplaceSchedule(ctx context.Context, runID string, assignments []models.Assignment) error
}

type Options struct {
	Roster          parser.RosterOptions
	Durations       analyzer.NominalDurations
	RecordingDays   int
	RecordingWindow string
	Calendar        scheduler.CalendarOptions
}

// ProcessingService runs the parse and scheduling pipelines. Store may be nil,
// in which case nothing is persisted and run lookups fail with ErrNoStore.
type ProcessingService struct {
	Store     RunStore
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Options   Options
	Logger    zerolog.Logger
	Now       func() time.Time
}

type RunSummary struct {
	Events []map[string]any `json:"events"`
	Counts map[string]any   `json:"counts"`
}

func newRunSummary() RunSummary {
	return RunSummary{Events: []map[string]any{}, Counts: map[string]any{}}
}

func (r *RunSummary) event(kind, message string, fields map[string]any) {
	e := map[string]any{"type": kind, "message": message, "time": time.Now().UTC()}
	for k, v := range fields {
		e[k] = v
	}
	r.Events = append(r.Events, e)
}

type ParseReport struct {
	RunID          string                        `json:"run_id,omitempty"`
	Fingerprint    string                        `json:"fingerprint"`
	Roster         parser.Roster                 `json:"roster"`
	Lines          []models.AnnotatedLine        `json:"lines"`
	Segments       []models.Segment              `json:"segments"`
	BySpeakerCount []analyzer.SpeakerCountBucket `json:"by_speaker_count"`
	PerSpeaker     []analyzer.SpeakerTime        `json:"per_speaker"`
	UniqueSpeakers []string                      `json:"unique_speakers"`
	Matrix         analyzer.SpeakerMatrix        `json:"matrix"`
	Summary        RunSummary                    `json:"summary"`
}

// ParseScript classifies the chunks, aggregates segments and derives analytics.
func (s *ProcessingService) ParseScript(ctx context.Context, chunks []string) (ParseReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dubplan.parse_script",
		trace.WithAttributes(attribute.Int("chunks", len(chunks))))
	defer span.End()
	started := time.Now()

	report := ParseReport{Fingerprint: utils.ScriptFingerprint(chunks), Summary: newRunSummary()}
	logger := s.Logger.With().Str("fingerprint", report.Fingerprint).Logger()

	if s.Store != nil {
		runID, err := s.Store.CreateRun(ctx, StatusRunning, report.Fingerprint)
		if err != nil {
			s.fail(span, "parse", err)
			return ParseReport{}, fmt.Errorf("create run: %w", err)
		}
		report.RunID = runID
		logger = logger.With().Str("run_id", runID).Logger()
		span.SetAttributes(attribute.String("run_id", runID))
	}

	parsed := parser.Parse(chunks, s.Options.Roster, logger)
	report.Roster = parsed.Roster
	report.Summary.event("parse", "Script classified", map[string]any{
		"lines":    len(parsed.Lines),
		"segments": parsed.Segments,
		"roster":   len(parsed.Roster),
	})
	if len(parsed.Roster) == 0 {
		report.Summary.event("roster_missing", "No roster found, speakers detected by pattern only", nil)
	}

	agg := analyzer.Aggregate(parsed.Lines, s.durations(), logger)
	report.Lines = agg.Lines
	report.Segments = agg.Segments
	report.BySpeakerCount = analyzer.TimeBySpeakerCount(agg.Segments)
	report.PerSpeaker = analyzer.TimePerSpeaker(agg.Segments)
	report.UniqueSpeakers = analyzer.UniqueSpeakers(parsed.Lines)
	report.Matrix = analyzer.BuildSpeakerMatrix(parsed.Lines)

	methods := map[string]int{}
	for _, l := range parsed.Lines {
		methods[l.Method]++
	}
	var total float64
	for _, seg := range agg.Segments {
		total += seg.TotalSeconds
	}
	report.Summary.Counts["lines"] = len(parsed.Lines)
	report.Summary.Counts["segments"] = len(agg.Segments)
	report.Summary.Counts["speakers"] = len(report.UniqueSpeakers)
	report.Summary.Counts["total_seconds"] = total
	report.Summary.Counts["methods"] = methods

	if s.Store != nil {
		if err := s.Store.SaveParse(ctx, report.RunID, parsed.Lines, agg.Segments); err != nil {
			s.finish(ctx, report.RunID, StatusFailed, report.Summary)
			s.fail(span, "parse", err)
			return ParseReport{}, fmt.Errorf("save parse: %w", err)
		}
		s.finish(ctx, report.RunID, StatusSuccess, report.Summary)
	}

	if s.Metrics != nil {
		for m, n := range methods {
			s.Metrics.LinesClassified.WithLabelValues(m).Add(float64(n))
		}
		s.Metrics.RunsTotal.WithLabelValues("parse", StatusSuccess).Inc()
		s.Metrics.RunSeconds.WithLabelValues("parse").Observe(time.Since(started).Seconds())
	}
	if err := s.publisher().PublishScriptParsed(ctx, events.ScriptParsedEvent{
		RunID:       report.RunID,
		Fingerprint: report.Fingerprint,
		Lines:       len(parsed.Lines),
		Segments:    len(agg.Segments),
		Speakers:    len(report.UniqueSpeakers),
	}); err != nil {
		logger.Warn().Err(err).Msg("script parsed event not published")
	}

	span.SetAttributes(attribute.Int("lines", len(parsed.Lines)), attribute.Int("segments", len(agg.Segments)))
	logger.Info().Int("lines", len(parsed.Lines)).Int("segments", len(agg.Segments)).Msg("parse run finished")
	return report, nil
}

type ScheduleRequest struct {
	Availability   map[string][]string `json:"availability" validate:"required"`
	RecordingSlots []string            `json:"recording_slots"`
	StartDate      string              `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

type ScheduleReport struct {
	RunID string `json:"run_id,omitempty"`
	scheduler.Result
	Summaries      []models.SpeakerSummary `json:"summaries"`
	RecordingSlots []models.Interval       `json:"recording_slots"`
}

// ScheduleRun schedules the segments stored for a parse run and stores the result.
func (s *ProcessingService) ScheduleRun(ctx context.Context, runID string, req ScheduleRequest) (ScheduleReport, error) {
	if s.Store == nil {
		return ScheduleReport{}, models.ErrNoStore
	}
	if _, err := s.Store.GetRun(ctx, runID); err != nil {
		return ScheduleReport{}, err
	}
	segments, err := s.Store.ListSegments(ctx, runID)
	if err != nil {
		return ScheduleReport{}, fmt.Errorf("load segments: %w", err)
	}

	report, err := s.schedule(ctx, runID, segments, req)
	if err != nil {
		return ScheduleReport{}, err
	}
	if err := s.Store.ReplaceSchedule(ctx, runID, report.Assignments); err != nil {
		return ScheduleReport{}, fmt.Errorf("save schedule: %w", err)
	}
	return report, nil
}

// ScheduleSegments runs the scheduler and summarizer without touching storage.
func (s *ProcessingService) ScheduleSegments(ctx context.Context, segments []models.Segment, req ScheduleRequest) (ScheduleReport, error) {
	return s.schedule(ctx, "", segments, req)
}

func (s *ProcessingService) schedule(ctx context.Context, runID string, segments []models.Segment, req ScheduleRequest) (ScheduleReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dubplan.schedule",
		trace.WithAttributes(attribute.Int("segments", len(segments))))
	defer span.End()
	started := time.Now()

	from, err := s.startDate(req.StartDate)
	if err != nil {
		s.fail(span, "schedule", err)
		return ScheduleReport{}, err
	}

	availability := scheduler.ParseAvailability(req.Availability, s.Logger)
	var slots []models.Interval
	if len(req.RecordingSlots) == 0 {
		slots = scheduler.DefaultRecordingSlots(from, s.Options.RecordingDays, s.Options.RecordingWindow, s.Logger)
	} else {
		slots = scheduler.ParseSlots(req.RecordingSlots, s.Logger)
	}

	res := scheduler.Schedule(segments, availability, slots, s.Logger)
	report := ScheduleReport{
		RunID:          runID,
		Result:         res,
		Summaries:      scheduler.Summarize(res.Assignments, s.Logger),
		RecordingSlots: slots,
	}
	assigned, unassigned := res.Counts()

	if s.Metrics != nil {
		s.Metrics.SegmentsScheduled.WithLabelValues(models.StatusAssigned).Add(float64(assigned))
		s.Metrics.SegmentsScheduled.WithLabelValues(models.StatusUnassigned).Add(float64(unassigned))
		for _, a := range res.Assignments {
			if a.Status == models.StatusAssigned {
				s.Metrics.ScheduledSeconds.Add(a.DurationSeconds)
			}
		}
		s.Metrics.RunsTotal.WithLabelValues("schedule", StatusSuccess).Inc()
		s.Metrics.RunSeconds.WithLabelValues("schedule").Observe(time.Since(started).Seconds())
	}
	if err := s.publisher().PublishScheduleGenerated(ctx, events.ScheduleGeneratedEvent{
		RunID:      runID,
		Assigned:   assigned,
		Unassigned: res.Unassigned,
	}); err != nil {
		s.Logger.Warn().Err(err).Msg("schedule event not published")
	}

	span.SetAttributes(attribute.Int("assigned", assigned), attribute.Int("unassigned", unassigned))
	return report, nil
}

type CalendarRequest struct {
	Speakers       []string            `json:"speakers"`
	Availability   map[string][]string `json:"availability"`
	RecordingSlots []string            `json:"recording_slots"`
	StartDate      string              `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Days           int                 `json:"days" validate:"omitempty,min=1,max=31"`
}

// Calendar renders availability and recording slots on a fixed time grid.
func (s *ProcessingService) Calendar(req CalendarRequest) (scheduler.Calendar, error) {
	from, err := s.startDate(req.StartDate)
	if err != nil {
		return scheduler.Calendar{}, err
	}
	availability := scheduler.ParseAvailability(req.Availability, s.Logger)
	speakers := req.Speakers
	if len(speakers) == 0 {
		for name := range req.Availability {
			speakers = append(speakers, name)
		}
		sort.Strings(speakers)
	}
	var slots []models.Interval
	if len(req.RecordingSlots) == 0 {
		slots = scheduler.DefaultRecordingSlots(from, s.Options.RecordingDays, s.Options.RecordingWindow, s.Logger)
	} else {
		slots = scheduler.ParseSlots(req.RecordingSlots, s.Logger)
	}

	opts := s.Options.Calendar
	opts.From = from
	if req.Days > 0 {
		opts.Days = req.Days
	}
	return scheduler.BuildCalendar(speakers, availability, slots, opts), nil
}

func (s *ProcessingService) startDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		t := now().UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation(utils.SlotDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("start date %q: %w", raw, models.ErrValidation)
	}
	return t, nil
}

func (s *ProcessingService) durations() analyzer.NominalDurations {
	if s.Options.Durations == nil {
		return analyzer.DefaultNominalDurations()
	}
	return s.Options.Durations
}

func (s *ProcessingService) publisher() events.Publisher {
	if s.Publisher == nil {
		return events.NopPublisher{}
	}
	return s.Publisher
}

func (s *ProcessingService) finish(ctx context.Context, runID, status string, summary RunSummary) {
	b, err := json.Marshal(summary)
	if err != nil {
		s.Logger.Error().Err(err).Str("run_id", runID).Msg("failed to encode run summary")
		b = nil
	}
	if err := s.Store.FinishRun(ctx, runID, status, b); err != nil {
		s.Logger.Error().Err(err).Str("run_id", runID).Msg("failed to finish run")
	}
}

func (s *ProcessingService) fail(span trace.Span, kind string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.Metrics != nil {
		s.Metrics.RunsTotal.WithLabelValues(kind, StatusFailed).Inc()
	}
}
