package parser

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/dubplan/backend/internal/models"
)

// Classifier turns script lines into ScriptLine records. It owns the running
// segment counter, so one Classifier serves exactly one pass over a script and
// must not be shared between goroutines.
type Classifier struct {
	matchers []matcher
	segment  int
	logger   zerolog.Logger
}

func NewClassifier(roster Roster, logger zerolog.Logger) *Classifier {
	return &Classifier{
		matchers: buildMatchers(roster),
		logger:   logger,
	}
}

// Segment returns the current segment id.
func (c *Classifier) Segment() int {
	return c.segment
}

// Classify processes chunks in order, line by line. Chunks are expected in NFC
// form; Parse normalizes them.
func (c *Classifier) Classify(chunks []string) []models.ScriptLine {
	var out []models.ScriptLine
	for ci, chunk := range chunks {
		for li, raw := range splitLines(chunk) {
			rows := c.ClassifyLine(raw)
			if len(rows) == 0 {
				continue
			}
			c.logger.Debug().
				Int("chunk", ci).
				Int("line", li).
				Int("segment", rows[0].Segment).
				Str("method", rows[0].Method).
				Int("rows", len(rows)).
				Msg("line classified")
			out = append(out, rows...)
		}
	}
	return out
}

// ClassifyLine classifies a single physical line. Blank lines produce nothing;
// any other line produces at least one record.
func (c *Classifier) ClassifyLine(raw string) []models.ScriptLine {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}
	canvas := []byte(line)

	row := models.ScriptLine{Method: MethodNone}
	if locs := boundaryPattern.FindAllStringIndex(line, -1); len(locs) > 0 {
		c.segment++
		row.IsSegmentBoundary = true
		for _, loc := range locs {
			mask(canvas, loc[0], loc[1])
		}
	}
	row.Segment = c.segment

	var timecodes []string
	for _, loc := range findTimecodes(string(canvas)) {
		timecodes = append(timecodes, string(canvas[loc[0]:loc[1]]))
		mask(canvas, loc[0], loc[1])
	}
	row.Timecode = strings.Join(timecodes, " ")

	names := c.detectSpeakers(canvas, &row)
	row.SceneMarker = extractMarkers(canvas)
	row.Text = residualText(canvas)

	if len(names) == 0 {
		return []models.ScriptLine{row}
	}
	out := make([]models.ScriptLine, 0, len(names))
	for _, name := range names {
		r := row
		r.Speaker = name
		out = append(out, r)
	}
	return out
}

// detectSpeakers runs the strategies in priority order. The first strategy that
// matches decides the outcome, even when name cleaning rejects every candidate.
func (c *Classifier) detectSpeakers(canvas []byte, row *models.ScriptLine) []string {
	search := string(canvas)
	trimmed := strings.TrimLeftFunc(search, unicode.IsSpace)
	offset := len(search) - len(trimmed)

	for _, m := range c.matchers {
		sm, ok := m.match(trimmed)
		if !ok {
			continue
		}
		if len(sm.Names) == 0 {
			c.logger.Debug().Str("method", sm.Method).Str("line", trimmed).Msg("speaker candidate rejected")
			return nil
		}
		row.Method = sm.Method
		mask(canvas, offset+sm.Start, offset+sm.End)
		return sm.Names
	}
	return nil
}

func extractMarkers(canvas []byte) string {
	var markers []string
	seen := map[string]struct{}{}
	add := func(m string) {
		m = strings.Join(strings.Fields(m), " ")
		if m == "" {
			return
		}
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		markers = append(markers, m)
	}

	rest := string(canvas)
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if sceneKeywordPattern.MatchString(trimmed) {
		start := len(rest) - len(trimmed)
		add(rest[start:])
		mask(canvas, start, len(canvas))
	}

	for _, loc := range parentheticalPattern.FindAllStringIndex(string(canvas), -1) {
		add(string(canvas[loc[0]:loc[1]]))
		mask(canvas, loc[0], loc[1])
	}
	return strings.Join(markers, " ")
}

func residualText(canvas []byte) string {
	text := strings.Join(strings.Fields(string(canvas)), " ")
	if loc := leadingParenPattern.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	return strings.TrimSpace(text)
}

func mask(canvas []byte, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(canvas) {
		end = len(canvas)
	}
	for i := start; i < end; i++ {
		canvas[i] = ' '
	}
}
