package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/getsentry/perfmetrics/internal/timeutil"
)

const (
	categoryHeader = "Name;Samples;Total;Self;Min;Max;Avg\n"
	pointHeader    = "Name;Samples;Total;Self;Min;Max;Avg;Category\n"
)

// WriteCategoryTable writes the category rollup as semicolon separated text.
// Rows without samples are skipped.
func WriteCategoryTable(w io.Writer, rows []CategoryRow) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(categoryHeader)
	for _, r := range rows {
		if r.Samples == 0 {
			continue
		}
		writeStatsRow(bw, r.Name, r.Stats)
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WritePointTable writes the point rollup as semicolon separated text, in the
// order given. Rows without samples are skipped.
func WritePointTable(w io.Writer, rows []PointRow) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(pointHeader)
	for _, r := range rows {
		if r.Samples == 0 {
			continue
		}
		writeStatsRow(bw, r.Name, r.Stats)
		_, _ = fmt.Fprintf(bw, ";%s\n", r.Category)
	}
	return bw.Flush()
}

func writeStatsRow(w io.Writer, name string, s Stats) {
	_, _ = fmt.Fprintf(w, "%s;%d;%.3f;%.3f;%.3f;%.3f;%.3f",
		name,
		s.Samples,
		timeutil.Milliseconds(s.Total),
		timeutil.Milliseconds(s.Self),
		timeutil.Milliseconds(s.Min),
		timeutil.Milliseconds(s.Max),
		timeutil.Milliseconds(s.Avg),
	)
}
