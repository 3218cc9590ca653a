// =============================================================================
// Upload Reconciler - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which parses the roster and the
// section list and reports what a run would work on, without creating,
// copying or removing anything.
//
// COMMAND USAGE:
//   reconciler validate FILE
//   reconciler validate STUD_FILE FILE
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/upload-reconciler/internal/config"
	"github.com/ginjaninja78/upload-reconciler/internal/roster"
	"github.com/ginjaninja78/upload-reconciler/internal/sections"
)

var validateCmd = &cobra.Command{
	Use:   "validate [STUD_FILE] FILE",
	Short: "Check the roster and section list without touching any files",
	Long: `Parse the roster and the section list and print one line per section:
its destination folder, how many identifiers it lists, and how many of them
are missing from the roster.

A malformed line in either file is reported with its line number.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 2 {
			cfg.StudentsFile = args[0]
		}
		return runValidate(cmd.OutOrStdout(), cfg, args[len(args)-1])
	},
}

// runValidate prints the section overview for sectionsPath.
func runValidate(out io.Writer, cfg *config.Config, sectionsPath string) error {
	students, err := roster.Load(cfg.StudentsFile, cfg.Encoding)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	entries, err := sections.Load(sectionsPath, cfg.Encoding)
	if err != nil {
		return fmt.Errorf("failed to load section list: %w", err)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Line", "Term code", "Date code", "Folder", "Identifiers", "Unknown"})

	total, unknown := 0, 0
	for _, e := range entries {
		missing := 0
		for _, id := range e.IDs {
			if _, ok := students.Lookup(id); !ok {
				missing++
			}
		}
		total += len(e.IDs)
		unknown += missing
		tw.AppendRow(table.Row{
			strconv.Itoa(e.Line), e.TermCode, e.DateCode, e.Folder,
			strconv.Itoa(len(e.IDs)), strconv.Itoa(missing),
		})
	}

	fmt.Fprintf(out, "Roster:   %s (%d students)\n", cfg.StudentsFile, students.Len())
	fmt.Fprintf(out, "Sections: %s (%d sections, %d identifiers, %d unknown)\n",
		sectionsPath, len(entries), total, unknown)
	if len(entries) > 0 {
		fmt.Fprintln(out, tw.Render())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
