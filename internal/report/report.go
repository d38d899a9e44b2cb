// Package report renders the end-of-run summary.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Clark-Hu/movie-etl/internal/pipeline"
)

// Render writes summary as a two-column table. A non-nil runErr marks the run
// as failed and is shown in the status row.
func Render(w io.Writer, summary pipeline.Summary, runErr error) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("movie-etl run " + summary.RunID)
	tw.AppendHeader(table.Row{"Metric", "Value"})

	status := "success"
	if runErr != nil {
		status = fmt.Sprintf("failed at %s: %v", summary.Stage, runErr)
	}

	tw.AppendRows([]table.Row{
		{"Status", status},
		{"Catalog records", summary.Movies},
		{"Rating records", summary.Ratings},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"Resolved first try", summary.Enrichment.FirstTry},
		{"Resolved via fallback", summary.Enrichment.Fallback},
		{"Unresolved", summary.Enrichment.Unresolved},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"Ratings loaded", summary.RatingsLoaded},
		{"Movies loaded", summary.MoviesLoaded},
		{"Duration", summary.Duration.Round(time.Millisecond).String()},
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}
