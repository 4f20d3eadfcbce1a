package storage

import (
	"context"
	"time"

	"github.com/vietddude/faultline/internal/core/domain"
)

// ArchiveFilter narrows a history query. Zero fields match everything.
type ArchiveFilter struct {
	Region string
	Kind   domain.ErrorKind
	Since  time.Time
	Limit  int
}

// ErrorArchive stores error records for later diagnosis. The engine only
// writes to it; nothing reads it back into engine state.
type ErrorArchive interface {
	// Save stores a record. Saving the same ID twice is a no-op.
	Save(ctx context.Context, rec domain.ErrorRecord) error

	// List returns matching records, newest first.
	List(ctx context.Context, filter ArchiveFilter) ([]domain.ErrorRecord, error)

	// CountByRegion returns per-region totals. Global records use "".
	CountByRegion(ctx context.Context, since time.Time) (map[string]int, error)
}

// Matches reports whether rec passes filter, ignoring Limit.
func (f ArchiveFilter) Matches(rec domain.ErrorRecord) bool {
	if f.Region != "" && rec.SourceRegion != f.Region {
		return false
	}
	if f.Kind != "" && rec.Kind != f.Kind {
		return false
	}
	if !f.Since.IsZero() && rec.Timestamp.Before(f.Since) {
		return false
	}
	return true
}
