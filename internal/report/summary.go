// =============================================================================
// Upload Reconciler - Console Summary
// =============================================================================
//
// This module renders the end-of-run table printed to the console: one row
// per section with a count for each identifier status, and a total row.
//
// =============================================================================

package report

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ginjaninja78/upload-reconciler/internal/reconciler"
)

// summaryColumns are the statuses shown in the console summary, in order.
var summaryColumns = []reconciler.Status{
	reconciler.Extracted,
	reconciler.Removed,
	reconciler.Planned,
	reconciler.SkippedMissing,
	reconciler.SkippedExists,
	reconciler.FailedExtract,
	reconciler.FailedRemove,
	reconciler.FailedCopy,
	reconciler.SkippedInvalid,
}

// RenderSummary renders one line per section with per-status counts.
// Sections that stopped early are marked in the last column.
func RenderSummary(outcomes []reconciler.Outcome) string {
	if len(outcomes) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	header := table.Row{"Folder"}
	for _, s := range summaryColumns {
		header = append(header, s.String())
	}
	header = append(header, "Section")
	tw.AppendHeader(header)

	totals := make([]int, len(summaryColumns))
	for _, out := range outcomes {
		row := table.Row{out.Folder}
		for i, s := range summaryColumns {
			n := out.Count(s)
			totals[i] += n
			row = append(row, strconv.Itoa(n))
		}
		state := "ok"
		if out.Err != nil {
			state = "stopped"
		}
		row = append(row, state)
		tw.AppendRow(row)
	}

	footer := table.Row{"Total"}
	for _, n := range totals {
		footer = append(footer, strconv.Itoa(n))
	}
	footer = append(footer, "")
	tw.AppendFooter(footer)

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i := range summaryColumns {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 2,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
