package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mtlprog/pageserve/internal/domain"
)

// printSummary writes hit counts as an aligned table.
func printSummary(out io.Writer, summary []domain.HitSummary) error {
	if len(summary) == 0 {
		_, err := fmt.Fprintln(out, "no hits recorded")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSTATUS\tHITS\tBYTES\tLAST SEEN")
	for _, s := range summary {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n",
			s.Path, s.Status, s.Count, s.TotalBytes, s.LastSeen.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
