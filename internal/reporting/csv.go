package reporting

import (
	"bufio"
	"io"
	"strings"
	"time"

	"eventmis/internal/audit"
)

var csvHeader = []string{"Action", "Entity", "Details", "User", "Timestamp"}

// WriteCSV writes entries as CSV with every cell quoted.
func WriteCSV(w io.Writer, entries []audit.Entry) error {
	bw := bufio.NewWriter(w)
	writeRow(bw, csvHeader)
	for _, e := range entries {
		writeRow(bw, []string{
			string(e.Action),
			e.Entity,
			e.Details,
			e.User,
			e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return bw.Flush()
}

// ExportFilename is the attachment name for an export made at t.
func ExportFilename(t time.Time) string {
	return "reports-" + t.UTC().Format("2006-01-02") + ".csv"
}

func writeRow(w *bufio.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(c, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteString("\r\n")
}
