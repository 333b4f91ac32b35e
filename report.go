package stocklens

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/plot"
)

const dateLayout = "2006-01-02"

// Summary writes the status line followed by a table of the last rows
// sessions of the rendered window
func Summary(w io.Writer, render plot.Render, rows int) error {
	if _, err := fmt.Fprintln(w, render.Status.String()); err != nil {
		return err
	}
	if render.Status.Failed || render.Layout.Sessions() == 0 {
		return nil
	}

	columns := summaryColumns(render.Layout)

	header := []string{"Date"}
	for _, column := range columns {
		header = append(header, column.name)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	times := core.Trailing(render.Layout.Time, rows)
	offset := render.Layout.Sessions() - len(times)
	for i, session := range times {
		line := []string{session.Format(dateLayout)}
		for _, column := range columns {
			line = append(line, column.format(column.values[offset+i]))
		}
		table.Append(line)
	}

	table.Render()
	return nil
}

type summaryColumn struct {
	name   string
	values []core.Value
	format func(core.Value) string
}

// summaryColumns picks the drawn series in panel order; the band edges
// come from the fill
func summaryColumns(layout plot.PanelLayout) []summaryColumn {
	price := func(v core.Value) string {
		if f, ok := v.Float64(); ok {
			return strconv.FormatFloat(f, 'f', 2, 64)
		}
		return "-"
	}
	volume := func(v core.Value) string {
		if f, ok := v.Float64(); ok {
			return strconv.FormatInt(int64(f), 10)
		}
		return "-"
	}

	columns := make([]summaryColumn, 0, 8)
	for _, panel := range layout.Panels {
		for _, series := range panel.Series {
			switch {
			case series.Style == core.StyleFill:
				columns = append(columns,
					summaryColumn{name: plot.SeriesBandUpper, values: series.Upper, format: price},
					summaryColumn{name: plot.SeriesBandLower, values: series.Lower, format: price},
				)
			case series.Name == plot.SeriesBandUpper || series.Name == plot.SeriesBandLower:
			case panel.Kind == plot.PanelVolume:
				columns = append(columns, summaryColumn{name: series.Name, values: series.Values, format: volume})
			default:
				columns = append(columns, summaryColumn{name: series.Name, values: series.Values, format: price})
			}
		}
	}
	return columns
}
