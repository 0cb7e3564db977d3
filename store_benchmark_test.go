package filecabinet

import (
	"fmt"
	"testing"
)

func BenchmarkCreate(b *testing.B) {
	_, _, store := createTestStore(b, Options{})
	data := john()
	for b.Loop() {
		if _, err := store.Create(data); err != nil {
			b.Fatalf("Create failed: %v", err)
		}
	}
}

func BenchmarkFindByField(b *testing.B) {
	_, _, store := createTestStore(b, Options{})
	for i := range 1000 {
		data := john()
		data.SchoolGrade = int16(i%11 + 1)
		mustCreate(b, store, data)
	}

	b.ResetTimer()
	i := 0
	for b.Loop() {
		if _, err := store.FindByField("SchoolGrade", fmt.Sprint(i%11+1)); err != nil {
			b.Fatalf("FindByField failed: %v", err)
		}
		i++
	}
}

func BenchmarkPurge(b *testing.B) {
	_, _, store := createTestStore(b, Options{})
	for b.Loop() {
		b.StopTimer()
		for range 100 {
			id := mustCreate(b, store, john())
			if id%2 == 0 {
				store.Remove(id)
			}
		}
		b.StartTimer()
		if _, err := store.Purge(); err != nil {
			b.Fatalf("Purge failed: %v", err)
		}
	}
}
