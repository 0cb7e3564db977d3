package filecabinet

import (
	"fmt"
	"math"
	"slices"

	"github.com/ananthvk/filecabinet/internal/index"
	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/ananthvk/filecabinet/internal/validation"
)

// MemoryStore keeps records in memory. Removed records are dropped right away, so Purge has nothing to
// do. The field index uses record ids as locations
type MemoryStore struct {
	records   []Record
	byID      map[int32]int
	index     *index.FieldIndex
	validator validation.Validator
	lastID    int32
}

// NewMemoryStore returns an empty store. Options.Encoding is ignored
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		byID:      make(map[int32]int),
		index:     index.New(),
		validator: opts.validator(),
	}
}

func (m *MemoryStore) validate(data *PersonalData) error {
	if m.validator == nil {
		return nil
	}
	return m.validator.Validate(data)
}

func (m *MemoryStore) add(rec Record) {
	m.byID[rec.ID] = len(m.records)
	m.records = append(m.records, rec)
	m.index.Add(&rec, uint32(rec.ID))
	m.lastID = max(m.lastID, rec.ID)
}

func (m *MemoryStore) Create(data PersonalData) (int32, error) {
	if err := m.validate(&data); err != nil {
		return 0, err
	}
	if m.lastID == math.MaxInt32 {
		return 0, ErrIDExhausted
	}
	rec := record.New(m.lastID+1, data)
	m.add(rec)
	return rec.ID, nil
}

func (m *MemoryStore) Edit(id int32, data PersonalData) error {
	if err := m.validate(&data); err != nil {
		return err
	}
	i, ok := m.byID[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	m.index.Remove(uint32(id))
	m.records[i].PersonalData = data
	m.index.Add(&m.records[i], uint32(id))
	return nil
}

func (m *MemoryStore) Remove(id int32) (bool, error) {
	i, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	m.index.Remove(uint32(id))
	m.records = slices.Delete(m.records, i, i+1)
	delete(m.byID, id)
	for j := i; j < len(m.records); j++ {
		m.byID[m.records[j].ID] = j
	}
	return true, nil
}

// Purge is a no-op, removed records are never kept
func (m *MemoryStore) Purge() (int, error) {
	return 0, nil
}

func (m *MemoryStore) FindByField(field, value string) ([]Record, error) {
	f, ok := record.LookupField(field)
	if !ok {
		return []Record{}, nil
	}
	key, ok := f.Canonicalize(value)
	if !ok {
		return []Record{}, nil
	}
	ids := m.index.Lookup(f.Name, key)
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		i, ok := m.byID[int32(id)]
		if !ok {
			return nil, fmt.Errorf("index points to missing record #%d", id)
		}
		records = append(records, m.records[i])
	}
	// Lookup orders by id, keep creation order like Records does
	slices.SortFunc(records, func(a, b Record) int {
		return m.byID[a.ID] - m.byID[b.ID]
	})
	return records, nil
}

func (m *MemoryStore) Records() ([]Record, error) {
	return slices.Clone(m.records), nil
}

func (m *MemoryStore) Stat() (Stat, error) {
	return Stat{Total: len(m.records)}, nil
}

func (m *MemoryStore) MakeSnapshot() (*Snapshot, error) {
	return NewSnapshot(m.records), nil
}

func (m *MemoryStore) Restore(snapshot *Snapshot) (RestoreResult, error) {
	var result RestoreResult
	for _, rec := range snapshot.Records() {
		if rec.ID <= 0 {
			result.Invalid++
			result.Errors = append(result.Errors, &ValidationError{Field: "Id", Reason: fmt.Sprintf("must be positive, got %d", rec.ID)})
			continue
		}
		if err := m.validate(&rec.PersonalData); err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, fmt.Errorf("record #%d: %w", rec.ID, err))
			continue
		}
		if _, ok := m.byID[rec.ID]; ok {
			result.Skipped++
			continue
		}
		m.add(rec)
		result.Imported++
	}
	return result, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
