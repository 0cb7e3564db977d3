package filecabinet

import (
	"slices"
)

// Snapshot is a detached copy of a store's live records. Changes to the store after the snapshot
// was taken are not reflected in it
type Snapshot struct {
	records []Record
}

// NewSnapshot copies the records into a new snapshot
func NewSnapshot(records []Record) *Snapshot {
	return &Snapshot{records: slices.Clone(records)}
}

// Records returns a copy of the snapshot's records
func (s *Snapshot) Records() []Record {
	if s == nil {
		return nil
	}
	return slices.Clone(s.records)
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// RestoreResult reports what happened to each record of a restored snapshot
type RestoreResult struct {
	// Imported records were added to the store
	Imported int
	// Skipped records had an id that a live record already uses
	Skipped int
	// Invalid records were rejected by the validator, Errors holds the reasons
	Invalid int
	Errors  []error
}
