package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
)

var storedColumns = append([]string{"serial_no"}, entity.FieldNames...)

func printRecords(w io.Writer, records []entity.WorkOrder) {
	if len(records) == 0 {
		return
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = cells(r, entity.PreferredColumns)
	}
	render(w, entity.PreferredColumns, rows)
}

func printStored(w io.Writer, records []entity.StoredWorkOrder) {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = append([]string{strconv.Itoa(r.SerialNo)}, cells(r, entity.FieldNames)...)
	}
	render(w, storedColumns, rows)
}

func printFailures(w io.Writer, failures []pipeline.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "%d item(s) failed:\n", len(failures))
	rows := make([][]string, len(failures))
	for i, f := range failures {
		page := ""
		if f.Page > 0 {
			page = strconv.Itoa(f.Page)
		}
		rows[i] = []string{f.Name, page, string(f.Stage), f.Error}
	}
	render(w, []string{"file", "page", "stage", "error"}, rows)
}

func render(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()
}

func cells(row interface{ Column(string) (any, bool) }, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		v, _ := row.Column(c)
		out[i] = formatCell(v)
	}
	return out
}

// formatCell renders a column value for the terminal; nil is blank.
func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
