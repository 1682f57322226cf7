package convert

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// PlainTextConverter reads UTF-8 text. Form feeds split the text into chunks.
type PlainTextConverter struct{}

func (PlainTextConverter) Convert(ctx context.Context, filename string, data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w: not valid UTF-8", filename, ErrUnsupportedFormat)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = norm.NFC.String(text)

	var chunks []string
	for _, c := range strings.Split(text, "\f") {
		if strings.TrimSpace(c) != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}
