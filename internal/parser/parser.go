package parser

import (
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/dubplan/backend/internal/models"
)

type Result struct {
	Roster   Roster              `json:"roster"`
	Lines    []models.ScriptLine `json:"lines"`
	Segments int                 `json:"segments"`
}

// Parse extracts the roster and classifies every line of the given chunks.
func Parse(chunks []string, opts RosterOptions, logger zerolog.Logger) Result {
	normalized := make([]string, len(chunks))
	for i, c := range chunks {
		normalized[i] = norm.NFC.String(c)
	}

	roster := ExtractRoster(normalized, opts, logger)
	classifier := NewClassifier(roster, logger)
	lines := classifier.Classify(normalized)

	logger.Info().
		Int("lines", len(lines)).
		Int("segments", classifier.Segment()).
		Msg("script parsed")

	return Result{Roster: roster, Lines: lines, Segments: classifier.Segment()}
}
