package parser

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

const (
	upperLetters = `A-ZÁČĎÉÍĹĽŇÓŔŠŤÚÝŽ`
	lowerLetters = `a-záčďéíĺľňóŕšťúýž`

	// speakerBase matches an uppercase name-like run such as "PETER KOLAR" or "JAN4".
	speakerBase = `(?:[` + upperLetters + `]{2,}[` + upperLetters + lowerLetters + `]*\s*)+\d?`
)

var (
	boundaryPattern      = regexp.MustCompile(`[-–—]{5,}`)
	timecodePattern      = regexp.MustCompile(`(?:\bA\s*|\b)\d{2}:\d{2}(?::\d{2})?(?:-\s*\d{2}:\d{2}(?::\d{2})?)?\b`)
	sceneKeywordPattern  = regexp.MustCompile(`^(?:INT\.|EXT\.|TITULOK)`)
	parentheticalPattern = regexp.MustCompile(`\(.*?\)`)
	leadingParenPattern  = regexp.MustCompile(`^\s*\(.*?\)\s*`)
	scriptStartPattern   = regexp.MustCompile(`^\d{2}:\d{2}|^-{5,}|^A\s*\d{2}:\d{2}`)
	dialogueGapPattern   = regexp.MustCompile(`\t|\s{2,}`)
	dashSeparatorPattern = regexp.MustCompile(`^\s*[-–—]\s*`)

	multiFallbackPattern = regexp.MustCompile(`^((?:` + speakerBase + `):*(?:,\s*(?:` + speakerBase + `):*)+)\s+(.*)$`)
	markerPattern        = regexp.MustCompile(`^(` + speakerBase + `):*\s*\(.*?\)\s*\t(.*)$`)
	dashPattern          = regexp.MustCompile(`^(` + speakerBase + `):*\s*[-–—]\s*(.*)$`)
	colonPattern         = regexp.MustCompile(`^(` + speakerBase + `):*:\s+(.*)$`)
	simplePattern        = regexp.MustCompile(`^(` + speakerBase + `):*(\s+)(.*)$`)
)

var reservedKeywords = map[string]struct{}{
	"INT":     {},
	"INT.":    {},
	"EXT":     {},
	"EXT.":    {},
	"TITULOK": {},
}

// findTimecodes returns the timecode spans of s. The "A" marker must start its own
// token; \b is ASCII-only, so a name like "MIŠA" needs the extra rune check.
func findTimecodes(s string) [][]int {
	locs := timecodePattern.FindAllStringIndex(s, -1)
	for _, loc := range locs {
		if loc[0] == 0 || s[loc[0]] != 'A' {
			continue
		}
		prev, _ := utf8.DecodeLastRuneInString(s[:loc[0]])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			continue
		}
		loc[0]++
		for loc[0] < loc[1] && (s[loc[0]] == ' ' || s[loc[0]] == '\t') {
			loc[0]++
		}
	}
	return locs
}
