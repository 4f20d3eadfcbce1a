package resilience

import (
	"fmt"
	"testing"
	"time"

	"github.com/vietddude/faultline/internal/core/domain"
)

func recAt(ts time.Time, msg string) domain.ErrorRecord {
	return domain.ErrorRecord{ID: msg, Message: msg, Timestamp: ts, Kind: domain.KindUncaughtFault}
}

func TestErrorLog_EvictsOldest(t *testing.T) {
	log := NewErrorLog(3)
	for i := 0; i < 5; i++ {
		log.Append(recAt(t0, fmt.Sprintf("e%d", i)))
	}

	if log.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", log.Len())
	}
	got := log.Records()
	if got[0].Message != "e2" || got[2].Message != "e4" {
		t.Errorf("unexpected records after eviction: %v, %v", got[0].Message, got[2].Message)
	}
}

func TestErrorLog_Unbounded(t *testing.T) {
	log := NewErrorLog(0)
	for i := 0; i < 250; i++ {
		log.Append(recAt(t0, "e"))
	}
	if log.Len() != 250 {
		t.Errorf("expected 250 records, got %d", log.Len())
	}

	log.Clear()
	if log.Len() != 0 {
		t.Errorf("expected empty log after Clear, got %d", log.Len())
	}
}

func TestErrorLog_RecordsIsCopy(t *testing.T) {
	log := NewErrorLog(10)
	log.Append(recAt(t0, "a"))

	got := log.Records()
	got[0].Message = "mutated"

	if log.Records()[0].Message != "a" {
		t.Error("Records must not expose internal storage")
	}
}

func TestRecentErrors(t *testing.T) {
	now := t0.Add(10 * time.Minute)
	window := 60 * time.Second

	records := []domain.ErrorRecord{
		recAt(now.Add(-61*time.Second), "too old"),
		recAt(now.Add(-60*time.Second), "boundary"),
		recAt(now.Add(-30*time.Second), "recent"),
		recAt(now, "now"),
		recAt(now.Add(time.Second), "future"),
	}

	got := RecentErrors(records, window, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 recent errors, got %d", len(got))
	}
	want := []string{"boundary", "recent", "now"}
	for i, w := range want {
		if got[i].Message != w {
			t.Errorf("recent[%d] = %s, want %s", i, got[i].Message, w)
		}
	}
}
