package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/embdr/embdr-go/pkg/processr"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const (
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderResourceTable lays out a resource and its processors, one row per
// artifact. Status cells are colored when w is an interactive terminal.
func renderResourceTable(w io.Writer, resource *processr.Resource) string {
	colorize := shouldColorize(w)

	rows := make([][]string, 0, 1+len(resource.Thumbnails)+len(resource.Images))
	rows = append(rows, []string{"resource", "", statusCell(resource.Status, colorize), resource.URL})
	for _, p := range resource.Thumbnails {
		rows = append(rows, []string{"thumbnail", p.Size, statusCell(p.Status, colorize), p.URL})
	}
	for _, p := range resource.Images {
		rows = append(rows, []string{"image", p.Size, statusCell(p.Status, colorize), p.URL})
	}

	return renderTable([]string{"Kind", "Size", "Status", "URL"}, rows, nil)
}

func statusCell(status processr.Status, colorize bool) string {
	value := string(status)
	if !colorize {
		return value
	}
	switch status {
	case processr.StatusComplete:
		return ansiGreen + value + ansiReset
	case processr.StatusError:
		return ansiRed + value + ansiReset
	case processr.StatusPending:
		return ansiYellow + value + ansiReset
	default:
		return value
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
