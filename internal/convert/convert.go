package convert

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// Converter turns an uploaded document into raw text chunks.
type Converter interface {
	Convert(ctx context.Context, filename string, data []byte) ([]string, error)
}

// Dispatcher converts plain text locally and hands every other format to Remote.
type Dispatcher struct {
	Text   Converter
	Remote Converter
}

func (d Dispatcher) Convert(ctx context.Context, filename string, data []byte) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", "":
		return d.text().Convert(ctx, filename, data)
	}
	if d.Remote == nil {
		return nil, ErrUnsupportedFormat
	}
	return d.Remote.Convert(ctx, filename, data)
}

func (d Dispatcher) text() Converter {
	if d.Text == nil {
		return PlainTextConverter{}
	}
	return d.Text
}
