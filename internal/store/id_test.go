package store_test

import (
	"testing"
	"time"

	"poker-platform/internal/store"
)

func TestNewIDAtSortsByTime(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	early := store.NewIDAt(t0)
	same := store.NewIDAt(t0)
	late := store.NewIDAt(t0.Add(time.Second))
	if !(early < same && same < late) {
		t.Fatalf("ids out of order: %s %s %s", early, same, late)
	}
	if len(early) != 26 {
		t.Fatalf("unexpected id length %d", len(early))
	}
}
