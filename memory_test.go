package filecabinet

import (
	"errors"
	"testing"

	"github.com/ananthvk/filecabinet/internal/record"
)

func TestMemoryStoreBasics(t *testing.T) {
	store := NewMemoryStore(Options{})

	id := mustCreate(t, store, john())
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}
	mustCreate(t, store, person("Anna", "Smith", 6, "9", 'c'))
	mustCreate(t, store, person("Boris", "Godunov", 6, "9", 'c'))

	if found, _ := store.FindByField("lastname", "Smith"); !equalIDs(found, 1, 2) {
		t.Errorf("expected [1 2], got %v", ids(found))
	}
	if found, _ := store.FindByField("ClassLetter", "c"); !equalIDs(found, 2, 3) {
		t.Errorf("expected [2 3], got %v", ids(found))
	}

	ok, err := store.Remove(1)
	if err != nil || !ok {
		t.Fatalf("expected remove to succeed, got %v, %v", ok, err)
	}
	if ok, _ := store.Remove(1); ok {
		t.Errorf("expected second remove to return false")
	}
	if stat, _ := store.Stat(); stat != (Stat{Total: 2}) {
		t.Errorf("expected (2, 0), got %+v", stat)
	}
	if n, _ := store.Purge(); n != 0 {
		t.Errorf("expected purge to be a no-op, got %d", n)
	}
	if found, _ := store.FindByField("FirstName", "John"); len(found) != 0 {
		t.Errorf("expected removed record to be gone, got %v", ids(found))
	}

	if err := store.Edit(3, person("Boris", "Smith", 7, "9", 'c')); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if found, _ := store.FindByField("lastname", "Smith"); !equalIDs(found, 2, 3) {
		t.Errorf("expected [2 3], got %v", ids(found))
	}
	if found, _ := store.FindByField("LastName", "Godunov"); len(found) != 0 {
		t.Errorf("expected old value to be gone, got %v", ids(found))
	}
	if err := store.Edit(1, john()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if id := mustCreate(t, store, john()); id != 4 {
		t.Errorf("expected ids not to be reused, got %d", id)
	}
	records, _ := store.Records()
	if !equalIDs(records, 2, 3, 4) {
		t.Errorf("expected [2 3 4], got %v", ids(records))
	}
}

func TestMemoryStoreRestore(t *testing.T) {
	store := NewMemoryStore(Options{})
	mustCreate(t, store, john())

	snapshot := NewSnapshot([]Record{
		record.New(1, john()),
		record.New(7, person("Anna", "Smith", 3, "3", 'A')),
		record.New(8, person("Anna", "Smith", 30, "3", 'A')),
	})
	result, err := store.Restore(snapshot)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 || result.Invalid != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	if result, _ := store.Restore(snapshot); result.Imported != 0 || result.Skipped != 2 {
		t.Errorf("expected second restore to skip, got %+v", result)
	}
	if id := mustCreate(t, store, john()); id != 8 {
		t.Errorf("expected id 8, got %d", id)
	}
}

// Both stores must behave the same for the same sequence of calls
func TestStoresAgree(t *testing.T) {
	_, _, file := createTestStore(t, Options{})
	memory := NewMemoryStore(Options{})

	for _, svc := range []Service{file, memory} {
		mustCreate(t, svc, john())
		mustCreate(t, svc, person("Anna", "Smith", 3, "3.5", 'a'))
		mustCreate(t, svc, person("Boris", "Smith", 4, "3.50", 'b'))
		svc.Remove(1)
		svc.Edit(2, person("Anna", "Karenina", 3, "3.5", 'a'))
		svc.Purge()
		mustCreate(t, svc, person("Clara", "Smith", 4, "4", 'd'))
	}

	for _, q := range [][2]string{
		{"LastName", "Smith"},
		{"AverageMark", "3.5"},
		{"SchoolGrade", "4"},
		{"FirstName", "John"},
	} {
		a, _ := file.FindByField(q[0], q[1])
		b, _ := memory.FindByField(q[0], q[1])
		if !equalIDs(a, ids(b)...) {
			t.Errorf("%s=%s: file store found %v, memory store found %v", q[0], q[1], ids(a), ids(b))
		}
	}
	a, _ := file.Records()
	b, _ := memory.Records()
	if len(a) != len(b) {
		t.Fatalf("expected the same number of records, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Errorf("record %d differs: %v and %v", i, a[i], b[i])
		}
	}
}
