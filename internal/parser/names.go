package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSpeakerNameLen = 50

// CleanName normalizes a raw speaker token. It returns "" when the token is not
// an acceptable speaker name. CleanName(CleanName(x)) == CleanName(x).
func CleanName(raw string) string {
	name := strings.TrimRight(strings.TrimSpace(raw), ": \t")
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	if isReserved(strings.Join(words, " ")) {
		return ""
	}
	if len(words) > 1 && isSingleUpper(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	for _, w := range words {
		if countUpper(w) < 2 {
			return ""
		}
	}
	name = strings.TrimRight(strings.Join(words, " "), ":")
	if utf8.RuneCountInString(name) < 3 || isReserved(name) {
		return ""
	}
	return name
}

// acceptFallbackName applies the extra limits used for names found without a roster.
func acceptFallbackName(raw string) string {
	name := CleanName(raw)
	if name == "" || utf8.RuneCountInString(name) >= maxSpeakerNameLen {
		return ""
	}
	return name
}

func isReserved(name string) bool {
	_, ok := reservedKeywords[name]
	return ok
}

func isSingleUpper(w string) bool {
	r, size := utf8.DecodeRuneInString(w)
	return size == len(w) && unicode.IsUpper(r)
}

func countUpper(w string) int {
	n := 0
	for _, r := range w {
		if unicode.IsUpper(r) {
			n++
		}
	}
	return n
}
