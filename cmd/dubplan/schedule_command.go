package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dubplan/backend/internal/models"
	"github.com/dubplan/backend/internal/service"
	"github.com/dubplan/backend/internal/utils"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "schedule <script>... --plan plan.yaml",
		Short: "Assign script segments to recording slots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if planPath == "" {
				return errors.New("--plan is required")
			}
			plan, err := loadPlan(planPath)
			if err != nil {
				return err
			}
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			chunks, err := readScripts(cmd.Context(), ctx.converter(), args)
			if err != nil {
				return err
			}
			parsed, err := svc.ParseScript(cmd.Context(), chunks)
			if err != nil {
				return err
			}
			report, err := svc.ScheduleSegments(cmd.Context(), parsed.Segments, plan.scheduleRequest())
			if err != nil {
				return err
			}
			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, report)
			}
			return writeTables(cmd, renderAssignments(report), renderSummaries(report))
		},
	}
	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "YAML file with availability and recording slots")
	return cmd
}

func renderAssignments(r service.ScheduleReport) string {
	rows := make([][]string, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		slot := "-"
		if a.Start != nil && a.End != nil {
			slot = utils.FormatTimeSlot(models.Interval{Start: *a.Start, End: *a.End})
		}
		rows = append(rows, []string{
			strconv.Itoa(a.SegmentID),
			strings.Join(a.Speakers, ", "),
			formatSeconds(a.DurationSeconds),
			slot,
			a.Status,
		})
	}
	return renderTable("Assignments", []string{"Segment", "Speakers", "Duration", "Slot", "Status"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight})
}

func renderSummaries(r service.ScheduleReport) string {
	rows := make([][]string, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		rows = append(rows, []string{
			s.Speaker,
			strconv.Itoa(s.SegmentCount),
			formatSeconds(s.TotalScheduledSeconds),
			formatSeconds(s.IdleSeconds),
		})
	}
	return renderTable("Speakers", []string{"Speaker", "Segments", "Scheduled", "Idle"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight})
}
