package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/infra/storage"
)

// ArchiveRepo implements storage.ErrorArchive using PostgreSQL.
type ArchiveRepo struct {
	db *DB
}

// NewArchiveRepo creates a new PostgreSQL error archive.
func NewArchiveRepo(db *DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

type recordRow struct {
	ID           string         `db:"id"`
	Message      string         `db:"message"`
	OccurredAt   time.Time      `db:"occurred_at"`
	SourceRegion string         `db:"source_region"`
	Kind         string         `db:"kind"`
	StackLines   pq.StringArray `db:"stack_lines"`
	ResourceKind sql.NullString `db:"resource_kind"`
	ResourceURL  sql.NullString `db:"resource_url"`
	Hint         string         `db:"hint"`
}

func (r recordRow) toDomain() domain.ErrorRecord {
	rec := domain.ErrorRecord{
		ID:           r.ID,
		Message:      r.Message,
		Timestamp:    r.OccurredAt.UTC(),
		SourceRegion: r.SourceRegion,
		Kind:         domain.ErrorKind(r.Kind),
		StackTrace:   strings.Join(r.StackLines, "\n"),
		Hint:         r.Hint,
	}
	if r.ResourceKind.Valid {
		rec.Resource = &domain.ResourceRef{
			Kind: domain.ResourceKind(r.ResourceKind.String),
			URL:  r.ResourceURL.String,
		}
	}
	return rec
}

func splitStack(stack string) []string {
	if stack == "" {
		return []string{}
	}
	return strings.Split(strings.TrimRight(stack, "\n"), "\n")
}

// Save archives a record.
func (r *ArchiveRepo) Save(ctx context.Context, rec domain.ErrorRecord) error {
	query := `
		INSERT INTO error_records
			(id, message, occurred_at, source_region, kind, stack_lines, resource_kind, resource_url, hint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	var resKind, resURL sql.NullString
	if rec.Resource != nil {
		resKind = sql.NullString{String: string(rec.Resource.Kind), Valid: true}
		resURL = sql.NullString{String: rec.Resource.URL, Valid: true}
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.Message,
		rec.Timestamp.UTC(),
		rec.SourceRegion,
		string(rec.Kind),
		pq.Array(splitStack(rec.StackTrace)),
		resKind,
		resURL,
		rec.Hint,
	)
	if err != nil {
		return fmt.Errorf("failed to archive error record: %w", err)
	}
	return nil
}

// List returns matching records, newest first.
func (r *ArchiveRepo) List(ctx context.Context, filter storage.ArchiveFilter) ([]domain.ErrorRecord, error) {
	query, args := buildListQuery(filter)

	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list error records: %w", err)
	}

	out := make([]domain.ErrorRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func buildListQuery(filter storage.ArchiveFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Region != "" {
		args = append(args, filter.Region)
		where = append(where, fmt.Sprintf("source_region = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since.UTC())
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT id, message, occurred_at, source_region, kind, stack_lines, resource_kind, resource_url, hint FROM error_records`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY occurred_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

// CountByRegion returns per-region totals since the given time.
func (r *ArchiveRepo) CountByRegion(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT source_region, COUNT(*) AS total
		FROM error_records
		WHERE occurred_at >= $1
		GROUP BY source_region
	`
	var rows []struct {
		Region string `db:"source_region"`
		Total  int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to count error records: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Region] = row.Total
	}
	return counts, nil
}
