package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Report is the result of one benchmark run.
type Report struct {
	RunID  string
	Title  string
	Phases []Phase
}

// Render writes the report to w as a table, markdown or csv.
func (r Report) Render(w io.Writer, format string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s (run %s)", r.Title, r.RunID))
	t.AppendHeader(table.Row{"Phase", "Threads", "Items", "Duration", "Ops/s"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	for _, p := range r.Phases {
		t.AppendRow(table.Row{
			p.Name,
			p.Threads,
			p.Items,
			p.Duration().Round(time.Microsecond),
			fmt.Sprintf("%.0f", p.OpsPerSecond()),
		})
	}

	switch format {
	case "table":
		t.Render()
	case "markdown":
		t.RenderMarkdown()
	case "csv":
		t.RenderCSV()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
