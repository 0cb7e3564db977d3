package filecabinet

import (
	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/ananthvk/filecabinet/internal/validation"
)

type (
	Record       = record.Record
	PersonalData = record.PersonalData
	Validator    = validation.Validator
)

// Service is implemented by both record stores and by the decorators wrapping them
type Service interface {
	// Create validates the data, assigns a new id and stores the record
	Create(data PersonalData) (int32, error)
	// Edit replaces the data of the live record with the given id. The id does not change
	Edit(id int32, data PersonalData) error
	// Remove deletes the live record with the given id, it returns false if there is none
	Remove(id int32) (bool, error)
	// Purge reclaims the space held by removed records and returns how many were dropped
	Purge() (int, error)
	// FindByField returns the live records whose field equals value. The value is converted to the
	// field's type first, an unknown field or an unparsable value gives an empty result
	FindByField(field, value string) ([]Record, error)
	// Records returns all live records in storage order
	Records() ([]Record, error)
	Stat() (Stat, error)
	MakeSnapshot() (*Snapshot, error)
	// Restore adds the snapshot's records, keeping their ids
	Restore(s *Snapshot) (RestoreResult, error)
	Close() error
}

// Stat counts the records held by a store. Total includes removed records that are still
// occupying space, Deleted counts only those
type Stat struct {
	Total   int
	Deleted int
}

// Live returns the number of records that are not removed
func (s Stat) Live() int {
	return s.Total - s.Deleted
}

var (
	_ Service = (*FileStore)(nil)
	_ Service = (*MemoryStore)(nil)
	_ Service = (*Meter)(nil)
	_ Service = (*Logger)(nil)
)
