package record

import (
	"encoding/binary"
	"fmt"

	"github.com/spf13/afero"
)

// Writer writes record blocks to a data file. There are no locks in this implementation, so it's
// unsafe to call Writer methods concurrently. Writes are not synced; call Sync() when durability
// is needed
type Writer struct {
	file  afero.File
	codec *Codec
	// Internal buffer used to assemble a block before it's written
	buf   [BlockSize]byte
	slots uint32
}

// NewWriter creates a Writer on an already opened read-write file. The number of complete blocks in
// the file is taken as the append position, a trailing partial block gets overwritten by the next
// append
func NewWriter(file afero.File, codec *Codec) (*Writer, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return &Writer{
		file:  file,
		codec: codec,
		slots: uint32(info.Size() / BlockSize),
	}, nil
}

// Append writes the record at the end of the file and returns the slot it was written to
func (w *Writer) Append(r Record) (uint32, error) {
	slot := w.slots
	if err := w.WriteRecordAt(slot, r); err != nil {
		return 0, err
	}
	return slot, nil
}

// WriteRecordAt encodes the record with a clear status word and writes it to the given slot
func (w *Writer) WriteRecordAt(slot uint32, r Record) error {
	if err := w.codec.EncodeInto(w.buf[:], r); err != nil {
		return err
	}
	return w.WriteBlockAt(slot, w.buf[:])
}

// WriteBlockAt writes a raw block to the given slot
func (w *Writer) WriteBlockAt(slot uint32, block []byte) error {
	if len(block) != BlockSize {
		return fmt.Errorf("%w: block of %d bytes", ErrShortBlock, len(block))
	}
	if _, err := w.file.WriteAt(block, Offset(slot)); err != nil {
		return err
	}
	if slot >= w.slots {
		w.slots = slot + 1
	}
	return nil
}

// WriteDataAt overwrites the editable fields of the block in the given slot. Status and id are left
// untouched
func (w *Writer) WriteDataAt(slot uint32, data PersonalData) error {
	if slot >= w.slots {
		return fmt.Errorf("slot %d is past the end of the file (%d slots)", slot, w.slots)
	}
	region := w.buf[DataOffset:BlockSize]
	if err := w.codec.EncodeData(region, data); err != nil {
		return err
	}
	_, err := w.file.WriteAt(region, Offset(slot)+DataOffset)
	return err
}

// WriteStatusAt overwrites the status word of the block in the given slot
func (w *Writer) WriteStatusAt(slot uint32, status uint16) error {
	if slot >= w.slots {
		return fmt.Errorf("slot %d is past the end of the file (%d slots)", slot, w.slots)
	}
	var b [statusSize]byte
	binary.LittleEndian.PutUint16(b[:], status)
	_, err := w.file.WriteAt(b[:], Offset(slot)+statusOffset)
	return err
}

// Truncate shrinks (or grows) the file to hold exactly the given number of blocks
func (w *Writer) Truncate(slots uint32) error {
	if err := w.file.Truncate(Offset(slots)); err != nil {
		return err
	}
	w.slots = slots
	return nil
}

// Slots returns the number of blocks the writer considers part of the file
func (w *Writer) Slots() uint32 {
	return w.slots
}

// Sync flushes any buffered data to the underlying file. It calls sync() on the file
func (w *Writer) Sync() error {
	return w.file.Sync()
}

// Close closes the underlying file, it also syncs pending changes to the disk
func (w *Writer) Close() error {
	if err := w.file.Sync(); err != nil {
		return err
	}
	return w.file.Close()
}
