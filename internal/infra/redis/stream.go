package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/faultline/internal/core/domain"
)

const recordField = "record"

// ErrorStream appends error records to a capped Redis stream.
type ErrorStream struct {
	rdb    redis.UniversalClient
	key    string
	maxLen int64
}

// NewErrorStream creates a stream writer. maxLen <= 0 leaves the stream
// uncapped.
func NewErrorStream(client *Client, key string, maxLen int64) *ErrorStream {
	return &ErrorStream{
		rdb:    client.rdb,
		key:    key,
		maxLen: maxLen,
	}
}

// Name identifies the sink in logs and metrics.
func (s *ErrorStream) Name() string {
	return "redis"
}

// Write appends one record.
func (s *ErrorStream) Write(ctx context.Context, rec domain.ErrorRecord) error {
	data, err := json.Marshal(rec.Export())
	if err != nil {
		return fmt.Errorf("failed to marshal error record: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.key,
		Values: map[string]any{
			recordField: data,
			"kind":      string(rec.Kind),
			"region":    rec.SourceRegion,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd failed: %w", err)
	}
	return nil
}

// Entry is one stream message.
type Entry struct {
	StreamID string
	Record   domain.ExportedRecord
}

// Tail returns the newest n records, oldest first.
func (s *ErrorStream) Tail(ctx context.Context, n int64) ([]Entry, error) {
	msgs, err := s.rdb.XRevRangeN(ctx, s.key, "+", "-", n).Result()
	if err != nil {
		return nil, fmt.Errorf("xrevrange failed: %w", err)
	}

	entries := make([]Entry, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		entry, ok := decode(msgs[i])
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Since returns records after the given stream ID ("0" for all), oldest
// first.
func (s *ErrorStream) Since(ctx context.Context, lastID string, count int64) ([]Entry, error) {
	start := "(" + lastID
	if lastID == "" || lastID == "0" {
		start = "-"
	}
	msgs, err := s.rdb.XRangeN(ctx, s.key, start, "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("xrange failed: %w", err)
	}

	entries := make([]Entry, 0, len(msgs))
	for _, msg := range msgs {
		if entry, ok := decode(msg); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Len returns the stream length.
func (s *ErrorStream) Len(ctx context.Context) (int64, error) {
	n, err := s.rdb.XLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("xlen failed: %w", err)
	}
	return n, nil
}

func decode(msg redis.XMessage) (Entry, bool) {
	raw, ok := msg.Values[recordField].(string)
	if !ok {
		return Entry{}, false
	}
	var rec domain.ExportedRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Entry{}, false
	}
	return Entry{StreamID: msg.ID, Record: rec}, true
}
