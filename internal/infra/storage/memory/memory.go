package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/infra/storage"
)

// Archive keeps error records in memory, bounded to the newest capacity
// entries.
type Archive struct {
	mu       sync.RWMutex
	records  []domain.ErrorRecord
	ids      map[string]struct{}
	capacity int
}

// NewArchive creates an archive. capacity <= 0 means unbounded.
func NewArchive(capacity int) *Archive {
	return &Archive{
		ids:      make(map[string]struct{}),
		capacity: capacity,
	}
}

func (a *Archive) Save(ctx context.Context, rec domain.ErrorRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.ids[rec.ID]; ok {
		return nil
	}
	a.records = append(a.records, rec)
	a.ids[rec.ID] = struct{}{}

	if a.capacity > 0 && len(a.records) > a.capacity {
		drop := len(a.records) - a.capacity
		for _, old := range a.records[:drop] {
			delete(a.ids, old.ID)
		}
		a.records = append([]domain.ErrorRecord(nil), a.records[drop:]...)
	}
	return nil
}

func (a *Archive) List(ctx context.Context, filter storage.ArchiveFilter) ([]domain.ErrorRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []domain.ErrorRecord
	for _, rec := range a.records {
		if filter.Matches(rec) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (a *Archive) CountByRegion(ctx context.Context, since time.Time) (map[string]int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range a.records {
		if !since.IsZero() && rec.Timestamp.Before(since) {
			continue
		}
		counts[rec.SourceRegion]++
	}
	return counts, nil
}

// Len returns the number of stored records.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}
