package filecabinet

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ananthvk/filecabinet/internal/index"
	"github.com/ananthvk/filecabinet/internal/metafile"
	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/ananthvk/filecabinet/internal/validation"
	"github.com/spf13/afero"
)

// FileStore keeps records as fixed size blocks in a single data file. Removing a record only sets
// the deleted bit of its block, Purge compacts the file. The field index is held in memory and
// rebuilt from the file on open.
//
// There are no locks, it's unsafe to use a FileStore from multiple goroutines or to open the same
// directory from multiple processes
type FileStore struct {
	fs        afero.Fs
	path      string
	metaInfo  *metafile.MetaData
	file      afero.File
	codec     *record.Codec
	reader    *record.Reader
	writer    *record.Writer
	index     *index.FieldIndex
	validator validation.Validator
	logger    *slog.Logger
	closed    bool
}

// Options configures a FileStore or a MemoryStore
type Options struct {
	// Validator checks data passed to Create, Edit and Restore. Defaults to the default rule set
	Validator validation.Validator
	// Encoding of names in the data file. It's only used when the store is created, an existing store
	// keeps the encoding it was created with. Empty means UTF-8
	Encoding record.TextEncoding
}

const (
	datastoreType = "filecabinet"
	version       = "1"
	dataFileName  = "cabinet-records.db"
)

func (o Options) validator() validation.Validator {
	if o.Validator == nil {
		return validation.Default()
	}
	return o.Validator
}

// Create creates a record store at the given path. If the path is a file, a non empty directory or an
// existing store, an error is returned. Otherwise, the directory is created (along with all its
// parents), and the store is initialized
func Create(fs afero.Fs, path string, opts Options) (*FileStore, error) {
	if valid, reason, err := metafile.IsValidPath(fs, path); err != nil || !valid {
		if err != nil {
			return nil, err
		}
		return nil, errors.New(reason)
	}

	encoding, err := record.ParseTextEncoding(string(opts.Encoding))
	if err != nil {
		return nil, err
	}

	if err := fs.MkdirAll(path, os.ModePerm); err != nil {
		return nil, err
	}

	metaInfo := &metafile.MetaData{
		Type:     datastoreType,
		Version:  version,
		Created:  time.Now().UTC().Format(time.RFC3339),
		Encoding: string(encoding),
	}
	if err := metafile.WriteMetaFile(fs, path, metaInfo); err != nil {
		return nil, err
	}

	return openStore(fs, path, metaInfo, opts)
}

// Open opens the record store at the specified location. If the store does not exist, ErrNotExist is
// returned
func Open(fs afero.Fs, path string, opts Options) (*FileStore, error) {
	exists, err := metafile.IsDatastore(fs, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotExist
	}

	metaInfo, err := metafile.ReadMetaFile(fs, path)
	if err != nil {
		return nil, err
	}
	if metaInfo.Type != datastoreType {
		return nil, fmt.Errorf("metafile corrupted, not a %s store", datastoreType)
	}
	if opts.Encoding != "" {
		requested, err := record.ParseTextEncoding(string(opts.Encoding))
		if err != nil {
			return nil, err
		}
		stored, err := record.ParseTextEncoding(metaInfo.Encoding)
		if err != nil {
			return nil, err
		}
		if requested != stored {
			return nil, fmt.Errorf("%w: store uses %s, requested %s", ErrEncodingMismatch, stored, requested)
		}
	}

	return openStore(fs, path, metaInfo, opts)
}

// OpenOrCreate opens the store at path, creating it first if there is none
func OpenOrCreate(fs afero.Fs, path string, opts Options) (*FileStore, error) {
	exists, err := metafile.IsDatastore(fs, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return Open(fs, path, opts)
	}
	return Create(fs, path, opts)
}

func openStore(fs afero.Fs, path string, metaInfo *metafile.MetaData, opts Options) (*FileStore, error) {
	encoding, err := record.ParseTextEncoding(metaInfo.Encoding)
	if err != nil {
		return nil, err
	}
	codec, err := record.NewCodec(encoding)
	if err != nil {
		return nil, err
	}

	file, err := fs.OpenFile(filepath.Join(path, dataFileName), os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}
	writer, err := record.NewWriter(file, codec)
	if err != nil {
		file.Close()
		return nil, err
	}

	store := &FileStore{
		fs:        fs,
		path:      path,
		metaInfo:  metaInfo,
		file:      file,
		codec:     codec,
		reader:    record.NewReader(file, codec),
		writer:    writer,
		index:     index.New(),
		validator: opts.validator(),
		logger:    slog.Default().With("store", path),
	}

	maxID, err := store.rebuildIndex()
	if err != nil {
		file.Close()
		return nil, err
	}
	if maxID > store.metaInfo.LastID {
		store.logger.Warn("id mark is behind the data file, raising it", "last_id", store.metaInfo.LastID, "max_id", maxID)
		store.metaInfo.LastID = maxID
		if err := metafile.WriteMetaFile(fs, path, store.metaInfo); err != nil {
			file.Close()
			return nil, err
		}
	}
	store.logger.Debug("opened record store", "records", writer.Slots(), "index_buckets", store.index.Len())
	return store, nil
}

// rebuildIndex indexes every live block of the data file and returns the largest id found in it,
// removed blocks included
func (s *FileStore) rebuildIndex() (int32, error) {
	s.index.Reset()
	var maxID int32
	err := s.scan(func(slot uint32, block []byte) error {
		if id := record.IDOf(block); id > maxID {
			maxID = id
		}
		if rec, ok := s.decodeLive(slot, block); ok {
			s.index.Add(&rec, slot)
		}
		return nil
	})
	return maxID, err
}

// scan calls fn for every complete block of the data file. A trailing partial block is ignored, the
// next append overwrites it
func (s *FileStore) scan(fn func(slot uint32, block []byte) error) error {
	scanner, err := record.NewScanner(s.file)
	if err != nil {
		return err
	}
	for {
		slot, block, err := scanner.Scan()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, record.ErrShortBlock) {
			s.logger.Warn("ignoring partial block at the end of the data file", "slot", slot, "bytes", len(block))
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(slot, block); err != nil {
			return err
		}
	}
}

// decodeLive decodes a block that is not marked as deleted. Malformed blocks are logged and skipped
func (s *FileStore) decodeLive(slot uint32, block []byte) (Record, bool) {
	if record.IsDeleted(block) {
		return Record{}, false
	}
	rec, err := s.codec.Decode(block)
	if err != nil {
		s.logger.Debug("skipping malformed block", "slot", slot, "error", err)
		return Record{}, false
	}
	return rec, true
}

// findSlot returns the slot and status word of the live block holding id
func (s *FileStore) findSlot(id int32) (uint32, uint16, bool, error) {
	errFound := errors.New("found")
	var slot uint32
	var status uint16
	err := s.scan(func(sl uint32, block []byte) error {
		if record.IsDeleted(block) || record.IDOf(block) != id {
			return nil
		}
		if _, ok := s.decodeLive(sl, block); !ok {
			return nil
		}
		slot, status = sl, record.Status(block)
		return errFound
	})
	if errors.Is(err, errFound) {
		return slot, status, true, nil
	}
	return 0, 0, false, err
}

func (s *FileStore) validate(data *PersonalData) error {
	if s.validator == nil {
		return nil
	}
	return s.validator.Validate(data)
}

func (s *FileStore) persistLastID(id int32) error {
	s.metaInfo.LastID = id
	if err := metafile.WriteMetaFile(s.fs, s.path, s.metaInfo); err != nil {
		return fmt.Errorf("failed to persist last id: %w", err)
	}
	return nil
}

// Create validates the data and appends it as a new record. The class letter is upper-cased by the
// default validators and names too long for their field are cut, the same way the codec stores them
func (s *FileStore) Create(data PersonalData) (int32, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if err := s.validate(&data); err != nil {
		return 0, err
	}
	if s.metaInfo.LastID == math.MaxInt32 {
		return 0, ErrIDExhausted
	}

	rec := record.New(s.metaInfo.LastID+1, s.codec.Fit(data))
	slot, err := s.writer.Append(rec)
	if err != nil {
		return 0, err
	}
	// The block is in the file from here on, index it even if the sync fails
	s.index.Add(&rec, slot)
	s.metaInfo.LastID = rec.ID
	if err := s.writer.Sync(); err != nil {
		return 0, err
	}
	if err := s.persistLastID(rec.ID); err != nil {
		return rec.ID, err
	}
	return rec.ID, nil
}

// Edit replaces the data of a live record in place, the id and the slot stay the same
func (s *FileStore) Edit(id int32, data PersonalData) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.validate(&data); err != nil {
		return err
	}
	data = s.codec.Fit(data)
	slot, _, found, err := s.findSlot(id)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{ID: id}
	}

	s.index.Remove(slot)
	if err := s.writer.WriteDataAt(slot, data); err != nil {
		// The block may be partially written, index whatever is there now
		if old, rerr := s.reader.ReadRecordAt(slot); rerr == nil {
			s.index.Add(&old, slot)
		}
		return err
	}
	rec := record.New(id, data)
	s.index.Add(&rec, slot)
	return s.writer.Sync()
}

// Remove marks the live record with the given id as deleted. The block stays in the file until the
// next Purge
func (s *FileStore) Remove(id int32) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	slot, status, found, err := s.findSlot(id)
	if err != nil || !found {
		return false, err
	}
	if err := s.writer.WriteStatusAt(slot, status|record.StatusDeleted); err != nil {
		return false, err
	}
	if err := s.writer.Sync(); err != nil {
		return false, err
	}
	s.index.Remove(slot)
	return true, nil
}

// Purge compacts the data file in a single forward pass: every live block is copied down to the
// write cursor, then the file is truncated after the last live block. Removed and malformed blocks
// are dropped. If the process dies half way, the file may hold a live block twice; the id mark
// in the metafile keeps new ids unique but the duplicate has to be removed by hand.
// It returns the number of dropped blocks
func (s *FileStore) Purge() (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	var cursor uint32
	removed := 0
	err := s.scan(func(slot uint32, block []byte) error {
		if _, ok := s.decodeLive(slot, block); !ok {
			removed++
			return nil
		}
		if cursor != slot {
			if err := s.writer.WriteBlockAt(cursor, block); err != nil {
				return err
			}
		}
		cursor++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := s.writer.Truncate(cursor); err != nil {
		return 0, err
	}
	if err := s.writer.Sync(); err != nil {
		return 0, err
	}
	if _, err := s.rebuildIndex(); err != nil {
		return removed, err
	}
	s.logger.Info("purged record store", "removed", removed, "remaining", cursor)
	return removed, nil
}

// FindByField looks up live records by the value of one field. The value is canonicalized the same
// way stored values are, "8.50" finds a mark of 8.5 and "05/01/1990" finds 1990-May-01
func (s *FileStore) FindByField(field, value string) ([]Record, error) {
	if s.closed {
		return nil, ErrClosed
	}
	f, ok := record.LookupField(field)
	if !ok {
		return []Record{}, nil
	}
	key, ok := f.Canonicalize(value)
	if !ok {
		return []Record{}, nil
	}
	slots := s.index.Lookup(f.Name, key)
	records := make([]Record, 0, len(slots))
	for _, slot := range slots {
		rec, err := s.reader.ReadRecordAt(slot)
		if err != nil {
			return nil, fmt.Errorf("index points to unreadable slot %d: %w", slot, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Records returns all live records in the order they are stored
func (s *FileStore) Records() ([]Record, error) {
	if s.closed {
		return nil, ErrClosed
	}
	records := []Record{}
	err := s.scan(func(slot uint32, block []byte) error {
		if rec, ok := s.decodeLive(slot, block); ok {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Stat counts the blocks in the data file. Total includes the removed blocks that Purge would drop
func (s *FileStore) Stat() (Stat, error) {
	if s.closed {
		return Stat{}, ErrClosed
	}
	var stat Stat
	err := s.scan(func(slot uint32, block []byte) error {
		stat.Total++
		if record.IsDeleted(block) {
			stat.Deleted++
		}
		return nil
	})
	return stat, err
}

// MakeSnapshot captures all live records
func (s *FileStore) MakeSnapshot() (*Snapshot, error) {
	records, err := s.Records()
	if err != nil {
		return nil, err
	}
	return NewSnapshot(records), nil
}

// Restore appends the records of the snapshot, keeping their ids. Records that fail validation are
// counted as invalid, records whose id is held by a live record are skipped. The id mark is raised
// to the largest restored id
func (s *FileStore) Restore(snapshot *Snapshot) (RestoreResult, error) {
	var result RestoreResult
	if s.closed {
		return result, ErrClosed
	}

	live := make(map[int32]struct{})
	err := s.scan(func(slot uint32, block []byte) error {
		if rec, ok := s.decodeLive(slot, block); ok {
			live[rec.ID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	lastID := s.metaInfo.LastID
	for _, rec := range snapshot.Records() {
		if rec.ID <= 0 {
			result.Invalid++
			result.Errors = append(result.Errors, &ValidationError{Field: "Id", Reason: fmt.Sprintf("must be positive, got %d", rec.ID)})
			continue
		}
		if err := s.validate(&rec.PersonalData); err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, fmt.Errorf("record #%d: %w", rec.ID, err))
			continue
		}
		if _, ok := live[rec.ID]; ok {
			result.Skipped++
			continue
		}
		rec.PersonalData = s.codec.Fit(rec.PersonalData)
		slot, err := s.writer.Append(rec)
		if err != nil {
			return result, err
		}
		s.index.Add(&rec, slot)
		live[rec.ID] = struct{}{}
		lastID = max(lastID, rec.ID)
		result.Imported++
	}

	if err := s.writer.Sync(); err != nil {
		return result, err
	}
	if lastID > s.metaInfo.LastID {
		if err := s.persistLastID(lastID); err != nil {
			return result, err
		}
	}
	s.logger.Debug("restored snapshot", "imported", result.Imported, "skipped", result.Skipped, "invalid", result.Invalid)
	return result, nil
}

// Close syncs and closes the data file. Other methods return ErrClosed afterwards
func (s *FileStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}
