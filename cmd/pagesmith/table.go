package main

import (
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/systemstart/pagesmith/pkg/pipeline"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
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

	return tw.Render() + "\n"
}

// renderTimings lists every step of items in declaration order with the
// outcome the run recorded for it.
func renderTimings(items []pipeline.Item, st *pipeline.State) string {
	failed := make(map[string]bool)
	var se *pipeline.StepError
	if errors.As(st.Err, &se) {
		if se.Group {
			for _, m := range se.Members {
				failed[m] = true
			}
		} else {
			failed[se.Step] = true
		}
	}

	var rows [][]string
	reached := true
	for _, it := range items {
		for _, s := range it.Steps() {
			name := s.Name()
			status, duration := "skipped", ""
			switch d, ok := st.Timings[name]; {
			case ok:
				status, duration = "ok", d.Round(time.Millisecond).String()
			case failed[name]:
				status = "failed"
			case !reached || (se == nil && st.Status != pipeline.StatusSucceeded):
				status = "not run"
			}
			if it.IsGroup() {
				name = "  " + name
			}
			rows = append(rows, []string{name, status, duration})
		}
		if se != nil && it.Name() == se.Step {
			reached = false
		}
	}

	total := ""
	if !st.Finished.IsZero() {
		total = st.Finished.Sub(st.Started).Round(time.Millisecond).String()
	}
	rows = append(rows, []string{"total", st.Status.String(), total})

	return renderTable([]string{"Step", "Status", "Duration"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}
