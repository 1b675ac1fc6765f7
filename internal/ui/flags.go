package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 or a bare local date and time. Times without
// an offset are read in loc, or UTC when loc is nil.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or YYYY-MM-DD[THH:MM[:SS]]", s)
}

// PrinterFor builds the printer for output, honoring the global --query flag.
func PrinterFor(cmd *cobra.Command, output string) (*Printer, error) {
	query, _ := cmd.Flags().GetString("query")
	return NewPrinter(output, query)
}
