package console

import (
	"fmt"
	"io"

	"github.com/ananthvk/filecabinet"
)

// Printer renders records for list and find
type Printer interface {
	Print(w io.Writer, records []filecabinet.Record)
}

// DefaultPrinter writes one line per record
//
//	#1, John, Smith, 1990-May-01, 5, 8.5, B
type DefaultPrinter struct{}

func (DefaultPrinter) Print(w io.Writer, records []filecabinet.Record) {
	for _, r := range records {
		fmt.Fprintln(w, r.String())
	}
}
