package urlgen

import (
	"io"
	"strings"
)

const (
	streamHeader = "----- Stream URLs:\n"
	ingestHeader = "\n----- Ingest URL:\n"
)

// WriteText renders the result as the plain-text block shown to operators.
// Every group is followed by an empty line.
func (r *Result) WriteText(w io.Writer) error {
	_, err := io.WriteString(w, r.Text())
	return err
}

func (r *Result) Text() string {
	var b strings.Builder
	b.WriteString(streamHeader)
	for _, g := range r.Groups {
		for _, u := range g.URLs {
			b.WriteString(u)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString(ingestHeader)
	b.WriteString(r.IngestURL)
	return b.String()
}
