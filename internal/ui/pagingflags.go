package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Paging holds the pagination flags of a listing command.
type Paging struct {
	Top  int
	All  bool
	Next string
}

// AddPagingFlags adds the standard pagination flags to a command.
func AddPagingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("top", 0, "Maximum number of items per page")
	cmd.Flags().Bool("all", false, "Fetch all items across all pages")
	cmd.Flags().String("next", "", "Continue from this next link URL")
}

// ParsePagingFlags extracts pagination settings from command flags.
func ParsePagingFlags(cmd *cobra.Command) (Paging, error) {
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing top flag: %w", err)
	}
	if top < 0 {
		return Paging{}, errors.New("--top must not be negative")
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing all flag: %w", err)
	}

	next, err := cmd.Flags().GetString("next")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing next flag: %w", err)
	}

	return Paging{
		Top:  top,
		All:  all,
		Next: next,
	}, nil
}

// HandleNextPageInfo tells the user how to fetch the following page. It
// writes to stderr so JSON and YAML output stay machine readable.
func HandleNextPageInfo(nextLink string, fetchAll bool) {
	if nextLink != "" && !fetchAll {
		fmt.Fprintf(os.Stderr, "\nNext page available. Use --next '%s' to continue.\n", nextLink)
	}
}
