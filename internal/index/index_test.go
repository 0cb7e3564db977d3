package index

import (
	"slices"
	"testing"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/shopspring/decimal"
)

func makeRecord(id int32, first, last string, grade int16, mark string, letter rune) record.Record {
	return record.New(id, record.PersonalData{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: record.Date(1990, 5, 1),
		SchoolGrade: grade,
		AverageMark: decimal.RequireFromString(mark),
		ClassLetter: letter,
	})
}

func TestIndexAddLookup(t *testing.T) {
	x := New()
	john := makeRecord(1, "John", "Smith", 5, "8.50", 'B')
	jane := makeRecord(2, "Jane", "Smith", 6, "8.5", 'C')
	x.Add(&john, 7)
	x.Add(&jane, 3)

	if got := x.Lookup("LastName", "Smith"); !slices.Equal(got, []uint32{3, 7}) {
		t.Errorf("expected [3 7], got %v", got)
	}
	if got := x.Lookup("LASTNAME", "Smith"); !slices.Equal(got, []uint32{3, 7}) {
		t.Errorf("expected field lookup to ignore case, got %v", got)
	}
	if got := x.Lookup("AverageMark", "8.5"); !slices.Equal(got, []uint32{3, 7}) {
		t.Errorf("expected 8.50 and 8.5 in the same bucket, got %v", got)
	}
	if got := x.Lookup("FirstName", "john"); len(got) != 0 {
		t.Errorf("expected values to be case sensitive, got %v", got)
	}
	if got := x.Lookup("Nickname", "John"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result for unknown field, got %v", got)
	}
	if got := x.Lookup("DateOfBirth", "1990-05-01"); !slices.Equal(got, []uint32{3, 7}) {
		t.Errorf("expected [3 7], got %v", got)
	}
}

func TestIndexRemove(t *testing.T) {
	x := New()
	john := makeRecord(1, "John", "Smith", 5, "8.5", 'B')
	jane := makeRecord(2, "Jane", "Smith", 6, "9", 'C')
	x.Add(&john, 0)
	x.Add(&jane, 1)
	before := x.Len()

	x.Remove(0)
	if got := x.Lookup("FirstName", "John"); len(got) != 0 {
		t.Errorf("expected John to be removed, got %v", got)
	}
	if got := x.Lookup("LastName", "Smith"); !slices.Equal(got, []uint32{1}) {
		t.Errorf("expected [1], got %v", got)
	}
	// John owned first name, grade, mark and letter buckets alone
	if x.Len() != before-4 {
		t.Errorf("expected %d buckets, got %d", before-4, x.Len())
	}

	x.Remove(42)
	x.Remove(1)
	if x.Len() != 0 {
		t.Errorf("expected empty index, got %d buckets", x.Len())
	}
}

func TestIndexReset(t *testing.T) {
	x := New()
	john := makeRecord(1, "John", "Smith", 5, "8.5", 'B')
	x.Add(&john, 0)
	x.Reset()
	if x.Len() != 0 {
		t.Errorf("expected empty index, got %d buckets", x.Len())
	}
	if got := x.Lookup("FirstName", "John"); len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}
