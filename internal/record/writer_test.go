package record

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// createTestFile opens a fresh read-write file and appends the given records to it
func createTestFile(t *testing.T, fs afero.Fs, codec *Codec, records []Record) (afero.File, *Writer) {
	t.Helper()
	fileName := uuid.NewString()
	file, err := fs.OpenFile(fileName, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		t.Fatalf("could not open file %s", fileName)
	}
	t.Cleanup(func() { file.Close() })

	writer, err := NewWriter(file, codec)
	if err != nil {
		t.Fatalf("could not create writer %s", fileName)
	}
	for i, r := range records {
		slot, err := writer.Append(r)
		if err != nil {
			t.Fatalf("could not write record %v: %v", r, err)
		}
		if slot != uint32(i) {
			t.Fatalf("expected slot %d, got %d", i, slot)
		}
	}
	return file, writer
}

func fileSize(t *testing.T, file afero.File) int64 {
	t.Helper()
	info, err := file.Stat()
	if err != nil {
		t.Fatalf("could not stat file: %v", err)
	}
	return info.Size()
}

func TestWriteRecord(t *testing.T) {
	file, _ := createTestFile(t, afero.NewMemMapFs(), newTestCodec(t, UTF8), testRecords[:1])
	if size := fileSize(t, file); size != BlockSize {
		t.Errorf("expected data length of %d, got %d", BlockSize, size)
	}
}

func TestWriteMultiple(t *testing.T) {
	codec := newTestCodec(t, UTF8)
	file, writer := createTestFile(t, afero.NewMemMapFs(), codec, nil)
	for range 100 {
		if _, err := writer.Append(testRecords[0]); err != nil {
			t.Fatalf("could not append: %v", err)
		}
	}
	if size := fileSize(t, file); size != 100*BlockSize {
		t.Errorf("expected data length of %d, got %d", 100*BlockSize, size)
	}
	if writer.Slots() != 100 {
		t.Errorf("expected 100 slots, got %d", writer.Slots())
	}
}

func TestWriteStatusAndData(t *testing.T) {
	codec := newTestCodec(t, UTF16)
	file, writer := createTestFile(t, afero.NewMemMapFs(), codec, testRecords)
	reader := NewReader(file, codec)

	if err := writer.WriteDataAt(1, testRecords[0].PersonalData); err != nil {
		t.Fatalf("could not write data: %v", err)
	}
	got, err := reader.ReadRecordAt(1)
	if err != nil {
		t.Fatalf("could not read record: %v", err)
	}
	if got.ID != testRecords[1].ID || !got.PersonalData.Equal(testRecords[0].PersonalData) {
		t.Errorf("expected id %d with data of record 0, got %v", testRecords[1].ID, got)
	}

	if err := writer.WriteStatusAt(2, StatusDeleted); err != nil {
		t.Fatalf("could not write status: %v", err)
	}
	if _, err := reader.ReadRecordAt(2); !errors.Is(err, ErrDeleted) {
		t.Errorf("expected ErrDeleted, got %v", err)
	}
	block, err := reader.ReadBlockAt(2)
	if err != nil {
		t.Fatalf("could not read block: %v", err)
	}
	if IDOf(block) != testRecords[2].ID {
		t.Errorf("expected tombstone to keep id %d, got %d", testRecords[2].ID, IDOf(block))
	}
	if size := fileSize(t, file); size != int64(len(testRecords))*BlockSize {
		t.Errorf("expected file size to be unchanged, got %d", size)
	}

	if err := writer.WriteStatusAt(uint32(len(testRecords)), StatusDeleted); err == nil {
		t.Errorf("expected error writing status past the end")
	}
}

func TestWriterTruncate(t *testing.T) {
	codec := newTestCodec(t, UTF8)
	file, writer := createTestFile(t, afero.NewMemMapFs(), codec, testRecords)
	if err := writer.Truncate(2); err != nil {
		t.Fatalf("could not truncate: %v", err)
	}
	if size := fileSize(t, file); size != 2*BlockSize {
		t.Errorf("expected %d bytes, got %d", 2*BlockSize, size)
	}
	slot, err := writer.Append(testRecords[4])
	if err != nil || slot != 2 {
		t.Fatalf("expected append to slot 2, got %d, %v", slot, err)
	}
	if _, err := NewReader(file, codec).ReadBlockAt(3); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF past the end, got %v", err)
	}
}

func TestWriterOverwritesPartialTail(t *testing.T) {
	fs := afero.NewMemMapFs()
	codec := newTestCodec(t, UTF8)
	file, writer := createTestFile(t, fs, codec, testRecords[:2])
	if _, err := file.WriteAt([]byte("garbage"), 2*BlockSize); err != nil {
		t.Fatalf("could not write garbage: %v", err)
	}

	reader := NewReader(file, codec)
	if _, err := reader.ReadBlockAt(2); !errors.Is(err, ErrShortBlock) {
		t.Errorf("expected ErrShortBlock, got %v", err)
	}
	slots, err := reader.Slots()
	if err != nil || slots != 2 {
		t.Errorf("expected 2 slots, got %d, %v", slots, err)
	}

	writer, err = NewWriter(file, codec)
	if err != nil {
		t.Fatalf("could not create writer: %v", err)
	}
	slot, err := writer.Append(testRecords[2])
	if err != nil || slot != 2 {
		t.Fatalf("expected append to slot 2, got %d, %v", slot, err)
	}
	got, err := reader.ReadRecordAt(2)
	if err != nil || !got.Equal(testRecords[2]) {
		t.Errorf("expected %v, got %v, %v", testRecords[2], got, err)
	}
}
