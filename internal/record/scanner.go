package record

import (
	"bufio"
	"errors"
	"io"

	"github.com/spf13/afero"
)

const readerBufferSize = 1024 * BlockSize

// Scanner sequentially reads blocks from the start of a data file. It internally uses a buffered
// reader to improve performance. This is not meant to be used for point lookups, and is intended to
// be used for index rebuilds, listings and compaction
type Scanner struct {
	reader *bufio.Reader
	slot   uint32
	done   bool
	buf    [BlockSize]byte
}

// NewScanner returns a scanner over the bytes currently present in the file. Blocks appended after
// the scanner was created are not visited
func NewScanner(file afero.File) (*Scanner, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	section := io.NewSectionReader(file, 0, info.Size())
	return &Scanner{
		reader: bufio.NewReaderSize(section, readerBufferSize),
	}, nil
}

// Scan returns the slot and the raw bytes of the next block. It returns io.EOF after the last
// block. A trailing partial block is returned once with ErrShortBlock.
// Note: The block is backed by a shared buffer, and hence it'll be overwritten the next time Scan is
// called. If you need it later, make a copy
func (s *Scanner) Scan() (uint32, []byte, error) {
	if s.done {
		return 0, nil, io.EOF
	}
	slot := s.slot
	n, err := io.ReadFull(s.reader, s.buf[:])
	if err != nil {
		s.done = true
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return slot, s.buf[:n], ErrShortBlock
		}
		return 0, nil, err
	}
	s.slot++
	return slot, s.buf[:], nil
}
