package record

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Reader reads record blocks from a data file at slot granularity. There are no locks in this
// implementation, so it's unsafe to call Reader methods concurrently
type Reader struct {
	file  afero.File
	codec *Codec
	// Temporary fixed sized buffer to read a block into
	buf [BlockSize]byte
}

// NewReader creates a Reader on an already opened file. The file is owned by the caller
func NewReader(file afero.File, codec *Codec) *Reader {
	return &Reader{
		file:  file,
		codec: codec,
	}
}

// ReadBlockAt reads the raw block stored in the given slot. The returned slice is backed by an
// internal buffer and is overwritten by the next call
func (r *Reader) ReadBlockAt(slot uint32) ([]byte, error) {
	n, err := r.file.ReadAt(r.buf[:], Offset(slot))
	if n == BlockSize {
		return r.buf[:], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		if n == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: slot %d has %d bytes", ErrShortBlock, slot, n)
	}
	return nil, err
}

// ReadRecordAt reads and decodes the block stored in the given slot. Tombstoned blocks result in
// ErrDeleted
func (r *Reader) ReadRecordAt(slot uint32) (Record, error) {
	block, err := r.ReadBlockAt(slot)
	if err != nil {
		return Record{}, err
	}
	return r.codec.Decode(block)
}

// Slots returns the number of complete blocks in the file
func (r *Reader) Slots() (uint32, error) {
	info, err := r.file.Stat()
	if err != nil {
		return 0, err
	}
	return uint32(info.Size() / BlockSize), nil
}

// Offset converts a slot number into a byte offset from the start of the file
func Offset(slot uint32) int64 {
	return int64(slot) * BlockSize
}
