package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dubplan/backend/internal/service"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var showLines bool

	cmd := &cobra.Command{
		Use:   "parse <script>...",
		Short: "Classify script lines and report segment timing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			chunks, err := readScripts(cmd.Context(), ctx.converter(), args)
			if err != nil {
				return err
			}
			report, err := svc.ParseScript(cmd.Context(), chunks)
			if err != nil {
				return err
			}
			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, report)
			}
			tables := []string{
				renderRoster(report),
				renderSegments(report),
				renderSpeakerTime(report),
				renderSpeakerCounts(report),
			}
			if showLines {
				tables = append(tables, renderLines(report))
			}
			return writeTables(cmd, tables...)
		},
	}
	cmd.Flags().BoolVar(&showLines, "lines", false, "Also print every classified line")
	return cmd
}

func renderRoster(r service.ParseReport) string {
	rows := make([][]string, 0, len(r.UniqueSpeakers))
	for _, name := range r.UniqueSpeakers {
		rows = append(rows, []string{name, yesNo(contains(r.Roster, name))})
	}
	return renderTable("Speakers", []string{"Speaker", "In roster"}, rows, nil)
}

func renderSegments(r service.ParseReport) string {
	rows := make([][]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		rows = append(rows, []string{
			strconv.Itoa(seg.ID),
			strings.Join(seg.Speakers, ", "),
			strconv.Itoa(seg.Lines),
			formatSeconds(seg.TotalSeconds),
		})
	}
	return renderTable("Segments", []string{"Segment", "Speakers", "Lines", "Duration"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight})
}

func renderSpeakerTime(r service.ParseReport) string {
	rows := make([][]string, 0, len(r.PerSpeaker))
	for _, st := range r.PerSpeaker {
		rows = append(rows, []string{st.Speaker, strconv.Itoa(st.Segments), formatSeconds(st.TotalSeconds)})
	}
	return renderTable("Time per speaker", []string{"Speaker", "Segments", "Duration"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight})
}

func renderSpeakerCounts(r service.ParseReport) string {
	rows := make([][]string, 0, len(r.BySpeakerCount))
	for _, b := range r.BySpeakerCount {
		rows = append(rows, []string{b.Label, strconv.Itoa(b.Segments), formatSeconds(b.TotalSeconds)})
	}
	return renderTable("Time by speaker count", []string{"Speakers", "Segments", "Duration"}, rows,
		[]columnAlignment{alignRight, alignRight, alignRight})
}

func renderLines(r service.ParseReport) string {
	rows := make([][]string, 0, len(r.Lines))
	for _, l := range r.Lines {
		rows = append(rows, []string{
			strconv.Itoa(l.Segment),
			l.Timecode,
			l.Speaker,
			l.Method,
			l.SceneMarker,
			l.Text,
		})
	}
	return renderTable("Lines", []string{"Segment", "Timecode", "Speaker", "Method", "Marker", "Text"}, rows,
		[]columnAlignment{alignRight})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
