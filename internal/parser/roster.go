package parser

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	DefaultRosterHeader   = "Postavy:"
	DefaultRosterMaxLines = 500

	minRosterNameLen = 3
	maxRosterNameLen = 50
)

// Roster is the cast list declared in a script header, longest names first.
type Roster []string

type RosterOptions struct {
	Header   string
	MaxLines int
}

func (o RosterOptions) withDefaults() RosterOptions {
	if o.Header == "" {
		o.Header = DefaultRosterHeader
	}
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultRosterMaxLines
	}
	return o
}

// ExtractRoster collects the names listed after the roster header up to the first
// script start marker. A missing header yields an empty roster.
func ExtractRoster(chunks []string, opts RosterOptions, logger zerolog.Logger) Roster {
	opts = opts.withDefaults()

	var (
		names     []string
		inSection bool
		checked   int
	)

scan:
	for _, chunk := range chunks {
		for _, line := range splitLines(chunk) {
			checked++
			trimmed := strings.TrimSpace(line)

			if !inSection {
				if strings.Contains(line, opts.Header) {
					inSection = true
					logger.Debug().Str("header", opts.Header).Msg("roster section found")
					continue
				}
			} else {
				if scriptStartPattern.MatchString(trimmed) {
					logger.Debug().Int("names", len(names)).Msg("roster section ended at script start")
					break scan
				}
				if name, ok := rosterCandidate(trimmed); ok {
					names = append(names, name)
				} else if trimmed != "" {
					logger.Debug().Str("line", trimmed).Msg("skipping roster line")
				}
			}

			if checked > opts.MaxLines {
				logger.Warn().Int("max_lines", opts.MaxLines).Msg("roster scan limit reached")
				break scan
			}
		}
	}

	if !inSection {
		logger.Warn().Str("header", opts.Header).Msg("roster header not found, using pattern detection only")
	}

	roster := newRoster(names)
	logger.Info().Int("speakers", len(roster)).Strs("roster", roster).Msg("roster extracted")
	return roster
}

func rosterCandidate(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsUpper(first) || dialogueGapPattern.MatchString(line) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimRight(line, ":"))
	if words := strings.Fields(name); len(words) > 1 && utf8.RuneCountInString(words[len(words)-1]) == 1 {
		name = strings.Join(words[:len(words)-1], " ")
	}
	n := utf8.RuneCountInString(name)
	if n < minRosterNameLen || n > maxRosterNameLen {
		return "", false
	}
	return name, true
}

func newRoster(names []string) Roster {
	seen := make(map[string]struct{}, len(names))
	out := make(Roster, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

func splitLines(chunk string) []string {
	chunk = strings.ReplaceAll(chunk, "\r\n", "\n")
	return strings.Split(chunk, "\n")
}
