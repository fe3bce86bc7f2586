package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/xraph/asyncjobs/job"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJobsTable renders one row per job with a column per status
// timestamp.
func writeJobsTable(w io.Writer, jobs []*job.Job) {
	table := tablewriter.NewWriter(w)
	header := []any{"ID", "NAME", "STATUS", "ERROR"}
	for _, s := range job.Statuses {
		header = append(header, string(s))
	}
	table.Header(header...)

	for _, j := range jobs {
		row := []any{j.ID, j.Name, string(j.Status), j.Error}
		for _, s := range job.Statuses {
			row = append(row, formatTimestamp(j, s))
		}
		table.Append(row...)
	}

	table.Render()
}

func formatTimestamp(j *job.Job, s job.Status) string {
	ts, ok := j.Timestamp(s)
	if !ok {
		return "-"
	}
	return time.UnixMilli(ts).UTC().Format("2006-01-02T15:04:05.000Z")
}
