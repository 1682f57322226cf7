package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dubplan/backend/internal/scheduler"
	"github.com/dubplan/backend/internal/utils"
)

func newCalendarCommand(ctx *commandContext) *cobra.Command {
	var (
		planPath string
		speakers []string
		showAll  bool
	)

	cmd := &cobra.Command{
		Use:   "calendar --plan plan.yaml",
		Short: "Show speaker availability on a time grid",
		Args:  cobra.NoArgs,
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
			cal, err := svc.Calendar(plan.calendarRequest(speakers))
			if err != nil {
				return err
			}
			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, cal)
			}
			return writeTables(cmd, renderCalendar(cal, showAll))
		},
	}
	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "YAML file with availability and recording slots")
	cmd.Flags().StringSliceVar(&speakers, "speaker", nil, "Limit the grid to these speakers")
	cmd.Flags().BoolVar(&showAll, "all", false, "Include cells nobody is available in")
	return cmd
}

func renderCalendar(cal scheduler.Calendar, showAll bool) string {
	var rows [][]string
	for _, cell := range cal.Cells {
		if !showAll && len(cell.Available) == 0 && !cell.Recording {
			continue
		}
		rec := ""
		if cell.Recording {
			rec = "studio"
		}
		rows = append(rows, []string{utils.FormatTimeSlot(cell.Interval), rec, strings.Join(cell.Available, ", ")})
	}
	return renderTable("Calendar", []string{"Slot", "Recording", "Available"}, rows, nil)
}
