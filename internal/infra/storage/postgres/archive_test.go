package postgres

import (
	"reflect"
	"testing"
	"time"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/infra/storage"
)

func TestBuildListQuery(t *testing.T) {
	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    storage.ArchiveFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:     "no filter",
			filter:   storage.ArchiveFilter{},
			wantArgs: nil,
		},
		{
			name:      "region and limit",
			filter:    storage.ArchiveFilter{Region: "tickets", Limit: 10},
			wantWhere: " WHERE source_region = $1 ORDER BY occurred_at DESC LIMIT $2",
			wantArgs:  []any{"tickets", 10},
		},
		{
			name:      "all fields",
			filter:    storage.ArchiveFilter{Region: "tickets", Kind: domain.KindHandlerFault, Since: since, Limit: 5},
			wantWhere: " WHERE source_region = $1 AND kind = $2 AND occurred_at >= $3 ORDER BY occurred_at DESC LIMIT $4",
			wantArgs:  []any{"tickets", "handler_fault", since, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			if tt.wantWhere != "" && !endsWith(query, tt.wantWhere) {
				t.Errorf("query %q does not end with %q", query, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func endsWith(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func TestSplitStack(t *testing.T) {
	if got := splitStack(""); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
	got := splitStack("goroutine 1\nmain.main()\n")
	if len(got) != 2 || got[1] != "main.main()" {
		t.Errorf("unexpected lines %v", got)
	}
}

func TestRecordRow_ToDomain(t *testing.T) {
	row := recordRow{
		ID:         "id-1",
		Message:    "failed to load script: /app.js",
		OccurredAt: time.Date(2024, 3, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600)),
		Kind:       string(domain.KindResourceLoadFault),
		StackLines: []string{"a", "b"},
	}
	row.ResourceKind.String, row.ResourceKind.Valid = "script", true
	row.ResourceURL.String, row.ResourceURL.Valid = "/app.js", true

	rec := row.toDomain()
	if rec.Timestamp.Location() != time.UTC {
		t.Error("expected UTC timestamp")
	}
	if rec.StackTrace != "a\nb" {
		t.Errorf("stack = %q", rec.StackTrace)
	}
	if rec.Resource == nil || rec.Resource.URL != "/app.js" || rec.Resource.Kind != domain.ResourceScript {
		t.Errorf("resource = %+v", rec.Resource)
	}
}

func TestPoolUsage(t *testing.T) {
	if poolUsage(5, 0) != 0 {
		t.Error("unlimited pool should report 0")
	}
	if poolUsage(5, 10) != 50 {
		t.Error("expected 50%")
	}
}
