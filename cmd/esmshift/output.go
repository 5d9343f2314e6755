package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/gnana997/esmshift/pkg/transform"
	"github.com/gnana997/esmshift/pkg/workspace"
)

// newTable returns a borderless, left-aligned table.
func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// printRunSummary renders one row per file followed by the totals.
func printRunSummary(w io.Writer, stats *workspace.RunStats) {
	table := newTable(w, "File", "Status", "Imports", "Exports", "Skipped")
	for _, f := range stats.Files {
		status := "unchanged"
		if f.Changed {
			status = "converted"
		}
		if f.Cached {
			status += " (cached)"
		}
		table.Append([]string{
			f.Rel,
			status,
			strconv.Itoa(f.ImportsRewritten),
			strconv.Itoa(f.ExportsExpanded),
			strconv.Itoa(f.ImportsSkipped + f.ExportsSkipped),
		})
	}
	for _, e := range stats.Errors {
		table.Append([]string{e.Rel, "failed", "-", "-", "-"})
	}
	table.Render()

	fmt.Fprintf(w, "\n%d converted, %d unchanged, %d failed in %s\n",
		stats.FilesConverted, stats.FilesUnchanged, stats.FilesFailed,
		stats.Duration.Round(time.Millisecond))

	for _, e := range stats.Errors {
		fmt.Fprintf(w, "  %s\n", (&sourceError{Path: e.Rel, Err: e.Error}).Error())
	}
}

// printDeclarations renders an Inspect report.
func printDeclarations(w io.Writer, decls []transform.Declaration) {
	if len(decls) == 0 {
		fmt.Fprintln(w, "No import or export declarations.")
		return
	}
	table := newTable(w, "Line", "Kind", "Shape", "Source", "Bindings", "Status")
	for _, d := range decls {
		status := "convert"
		if !d.Supported {
			status = "keep: " + d.Reason
		}
		table.Append([]string{
			strconv.Itoa(d.Line),
			d.Kind,
			d.Shape,
			d.Source,
			strings.Join(d.Bindings, ", "),
			status,
		})
	}
	table.Render()
}
