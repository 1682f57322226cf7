package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dubplan/backend/internal/config"
	"github.com/dubplan/backend/internal/convert"
	"github.com/dubplan/backend/internal/parser"
	"github.com/dubplan/backend/internal/scheduler"
	"github.com/dubplan/backend/internal/service"
)

type commandContext struct {
	jsonOutput   bool
	logLevel     string
	rosterHeader string
	converterURL string

	cfg *config.Config
}

func (c *commandContext) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	return cfg, nil
}

func (c *commandContext) logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.logLevel)
	if err != nil || c.logLevel == "" {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

// service builds a memory-only pipeline configured from the environment.
func (c *commandContext) service() (*service.ProcessingService, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	header := cfg.RosterHeader
	if c.rosterHeader != "" {
		header = c.rosterHeader
	}
	return &service.ProcessingService{
		Logger: c.logger(),
		Options: service.Options{
			Roster:          parser.RosterOptions{Header: header, MaxLines: cfg.RosterMaxLines},
			Durations:       cfg.NominalDurations(),
			RecordingDays:   cfg.RecordingDays,
			RecordingWindow: cfg.RecordingWindow,
			Calendar: scheduler.CalendarOptions{
				Days:        cfg.CalendarDays,
				StartHour:   cfg.CalendarStartHour,
				EndHour:     cfg.CalendarEndHour,
				Granularity: time.Duration(cfg.CalendarGranularityMin) * time.Minute,
			},
		},
	}, nil
}

func (c *commandContext) converter() convert.Converter {
	d := convert.Dispatcher{Text: convert.PlainTextConverter{}}
	url := c.converterURL
	if url == "" && c.cfg != nil {
		url = c.cfg.ConverterURL
	}
	if url != "" {
		d.Remote = convert.HTTPConverter{BaseURL: url}
	}
	return d
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "dubplan",
		Short:         "Dubbing script analysis and recording planner",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOutput, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "warn", "Log level written to stderr")
	rootCmd.PersistentFlags().StringVar(&ctx.rosterHeader, "roster-header", "", "Line that opens the character roster")
	rootCmd.PersistentFlags().StringVar(&ctx.converterURL, "converter-url", "", "Document conversion service for non-text scripts")

	rootCmd.AddCommand(newParseCommand(ctx))
	rootCmd.AddCommand(newScheduleCommand(ctx))
	rootCmd.AddCommand(newCalendarCommand(ctx))

	return rootCmd
}
