// Package cmdutils holds small formatting helpers for CLI output.
package cmdutils

import (
	"fmt"
	"io"
	"strings"
)

const Logo = "💤"

// Mark renders a boolean as a check or a cross.
func Mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// SecretHint shows enough of a token to recognize it without leaking it.
func SecretHint(s string) string {
	if s == "" {
		return "(not configured)"
	}
	if len(s) > 10 {
		return s[:6] + "..."
	}
	return "set"
}

// Table prints rows as left-aligned columns with a dashed rule under the
// header.
func Table(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len([]rune(h))
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			if n := len([]rune(r[i])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = cell + strings.Repeat(" ", widths[i]-len([]rune(cell)))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(header)
	total := 0
	for _, n := range widths {
		total += n
	}
	fmt.Fprintln(w, strings.Repeat("-", total+2*(len(widths)-1)))
	for _, r := range rows {
		line(r)
	}
}
