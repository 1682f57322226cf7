package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// wantJSON reports whether output should be JSON: either requested, or stdout
// is not a terminal.
func (c *commandContext) wantJSON(cmd *cobra.Command) bool {
	return c.jsonOutput || !isTerminal(cmd.OutOrStdout())
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func writeTables(cmd *cobra.Command, tables ...string) error {
	var b strings.Builder
	for i, t := range tables {
		if t == "" {
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t)
		b.WriteString("\n")
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}

func formatSeconds(s float64) string {
	total := int(s + 0.5)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}
