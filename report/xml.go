package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/getsentry/perfmetrics/internal/timeutil"
)

const (
	xmlProlog = "<?xml version='1.0' encoding='utf-8' standalone='no'?>\n"
	xmlIndent = "   "
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&apos;",
	"<", "&lt;",
	">", "&gt;",
)

// WriteTreeXML writes one Thread element per thread with nested Entry
// elements mirroring the call tree.
func WriteTreeXML(w io.Writer, threads []Thread) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(xmlProlog)
	_, _ = bw.WriteString("<TreeReport>\n")
	for _, t := range threads {
		_, _ = fmt.Fprintf(bw, "<Thread ID='%X'>\n", t.ID)
		for _, e := range t.Entries {
			writeXMLEntry(bw, e, 1)
		}
		_, _ = bw.WriteString("</Thread>\n")
	}
	_, _ = bw.WriteString("</TreeReport>\n")
	return bw.Flush()
}

func writeXMLEntry(w *bufio.Writer, e *Entry, depth int) {
	indent := strings.Repeat(xmlIndent, depth)
	_, _ = fmt.Fprintf(w, `%s<Entry Name="%s" Calls="%d" Total="%.3f" Self="%.3f" Max="%.3f" Min="%.3f" Avg="%.3f"`,
		indent,
		xmlEscaper.Replace(e.Name),
		e.Samples,
		timeutil.Milliseconds(e.Total),
		timeutil.Milliseconds(e.Self),
		timeutil.Milliseconds(e.Max),
		timeutil.Milliseconds(e.Min),
		timeutil.Milliseconds(e.Avg),
	)
	if len(e.Children) == 0 {
		_, _ = w.WriteString(" />\n")
		return
	}
	_, _ = w.WriteString(">\n")
	for _, c := range e.Children {
		writeXMLEntry(w, c, depth+1)
	}
	_, _ = w.WriteString(indent + "</Entry>\n")
}
