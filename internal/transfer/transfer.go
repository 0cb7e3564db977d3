package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/spf13/afero"
)

var (
	ErrUnknownFormat = errors.New("unknown file format")
	ErrHeader        = errors.New("missing column in header")
)

// Exporter writes records to w in a file format
type Exporter interface {
	Export(w io.Writer, records []record.Record) error
}

// Importer reads records written by the matching Exporter. Rows or elements that cannot be parsed
// are skipped and counted, they are not an error
type Importer interface {
	Import(r io.Reader) (records []record.Record, skipped int, err error)
}

// Format is an Exporter and Importer pair for one file format
type Format interface {
	Exporter
	Importer
	Name() string
}

// Formats lists the supported format names
var Formats = []string{"csv", "xml"}

// ForFormat returns the format with the given name, ignoring case
func ForFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV{}, nil
	case "xml":
		return XML{}, nil
	}
	return nil, fmt.Errorf("%w: %q, expected one of %s", ErrUnknownFormat, name, strings.Join(Formats, ", "))
}

// ExportFile writes the records to a new file at path, replacing any existing file
func ExportFile(fs afero.Fs, path string, format Format, records []record.Record) error {
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := format.Export(file, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ImportFile reads all records from the file at path
func ImportFile(fs afero.Fs, path string, format Format) ([]record.Record, int, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()
	return format.Import(file)
}
