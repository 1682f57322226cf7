package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MethodRosterMulti   = "roster_multi"
	MethodRosterSingle  = "roster_single"
	MethodPatternMulti  = "pattern_multi"
	MethodPatternMarker = "pattern_marker"
	MethodPatternDash   = "pattern_dash"
	MethodPatternColon  = "pattern_colon"
	MethodPatternSimple = "pattern_simple"
	MethodNone          = "none"
)

// speakerMatch is the result of one detection strategy. Start and End delimit the
// speaker span in the searched text; Names may be empty when every candidate was
// rejected by name cleaning.
type speakerMatch struct {
	Method string
	Names  []string
	Start  int
	End    int
}

type matcher struct {
	method string
	match  func(line string) (speakerMatch, bool)
}

// buildMatchers returns the detection strategies in priority order.
func buildMatchers(roster Roster) []matcher {
	var out []matcher
	if len(roster) > 0 {
		alt := rosterAlternation(roster)
		multi := regexp.MustCompile(`^((?:` + alt + `):*(?:\s*,\s*(?:` + alt + `):*)+)\s+`)
		out = append(out,
			matcher{method: MethodRosterMulti, match: rosterMulti(multi)},
			matcher{method: MethodRosterSingle, match: rosterSingle(roster)},
		)
	}
	out = append(out,
		matcher{method: MethodPatternMulti, match: patternMulti},
		matcher{method: MethodPatternMarker, match: patternSingle(MethodPatternMarker, markerPattern, false)},
		matcher{method: MethodPatternDash, match: patternSingle(MethodPatternDash, dashPattern, true)},
		matcher{method: MethodPatternColon, match: patternSingle(MethodPatternColon, colonPattern, true)},
		matcher{method: MethodPatternSimple, match: patternSingle(MethodPatternSimple, simplePattern, true)},
	)
	return out
}

func rosterAlternation(roster Roster) string {
	quoted := make([]string, 0, len(roster))
	for _, name := range roster {
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	return strings.Join(quoted, "|")
}

func rosterMulti(re *regexp.Regexp) func(string) (speakerMatch, bool) {
	return func(line string) (speakerMatch, bool) {
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil {
			return speakerMatch{}, false
		}
		list := line[loc[2]:loc[3]]
		return speakerMatch{
			Method: MethodRosterMulti,
			Names:  cleanList(list, CleanName),
			Start:  loc[2],
			End:    loc[3],
		}, true
	}
}

func rosterSingle(roster Roster) func(string) (speakerMatch, bool) {
	return func(line string) (speakerMatch, bool) {
		for _, name := range roster {
			if !strings.HasPrefix(line, name) {
				continue
			}
			end := len(name)
			if end < len(line) {
				next, _ := utf8.DecodeRuneInString(line[end:])
				if unicode.IsLetter(next) || unicode.IsDigit(next) {
					continue
				}
			}
			for end < len(line) && line[end] == ':' {
				end++
			}
			if loc := dashSeparatorPattern.FindStringIndex(line[end:]); loc != nil {
				end += loc[1]
			}
			var names []string
			if cleaned := CleanName(name); cleaned != "" {
				names = []string{cleaned}
			}
			return speakerMatch{Method: MethodRosterSingle, Names: names, Start: 0, End: end}, true
		}
		return speakerMatch{}, false
	}
}

func patternMulti(line string) (speakerMatch, bool) {
	loc := multiFallbackPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return speakerMatch{}, false
	}
	return speakerMatch{
		Method: MethodPatternMulti,
		Names:  cleanList(line[loc[2]:loc[3]], acceptFallbackName),
		Start:  loc[2],
		End:    loc[3],
	}, true
}

// patternSingle wraps a single-speaker pattern whose first group is the name and
// whose last group is the dialogue. With throughSeparator the span runs up to the
// dialogue; otherwise it covers the name and any colons glued to it, leaving a
// marker between name and dialogue in place.
func patternSingle(method string, re *regexp.Regexp, throughSeparator bool) func(string) (speakerMatch, bool) {
	return func(line string) (speakerMatch, bool) {
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil {
			return speakerMatch{}, false
		}
		end := loc[len(loc)-2]
		if !throughSeparator {
			end = loc[3]
			for end < len(line) && line[end] == ':' {
				end++
			}
		}
		m := speakerMatch{Method: method, Start: loc[2], End: end}
		if name := acceptFallbackName(line[loc[2]:loc[3]]); name != "" {
			m.Names = []string{name}
		}
		return m, true
	}
}

func cleanList(list string, clean func(string) string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := clean(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
