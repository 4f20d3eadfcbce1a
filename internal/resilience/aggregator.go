package resilience

import (
	"time"

	"github.com/vietddude/faultline/internal/core/domain"
)

// ErrorLog is an ordered sequence of records. With a positive capacity the
// oldest records are evicted first.
type ErrorLog struct {
	records  []domain.ErrorRecord
	capacity int
}

// NewErrorLog creates a log. capacity <= 0 means unbounded.
func NewErrorLog(capacity int) *ErrorLog {
	return &ErrorLog{capacity: capacity}
}

// Append adds a record, evicting the oldest past capacity.
func (l *ErrorLog) Append(rec domain.ErrorRecord) {
	l.records = append(l.records, rec)
	if l.capacity > 0 && len(l.records) > l.capacity {
		excess := len(l.records) - l.capacity
		l.records = append([]domain.ErrorRecord(nil), l.records[excess:]...)
	}
}

// Len returns the number of records held.
func (l *ErrorLog) Len() int {
	return len(l.records)
}

// Records returns a copy of the records, oldest first.
func (l *ErrorLog) Records() []domain.ErrorRecord {
	return append([]domain.ErrorRecord(nil), l.records...)
}

// Clear drops every record.
func (l *ErrorLog) Clear() {
	l.records = nil
}

// RecentErrors returns the records whose timestamp lies in
// [now-window, now], preserving order.
func RecentErrors(records []domain.ErrorRecord, window time.Duration, now time.Time) []domain.ErrorRecord {
	cutoff := now.Add(-window)
	var out []domain.ErrorRecord
	for _, rec := range records {
		if rec.Timestamp.Before(cutoff) || rec.Timestamp.After(now) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
