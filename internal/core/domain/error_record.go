package domain

import "time"

// ErrorKind classifies where a failure signal came from.
type ErrorKind string

const (
	KindHandlerFault      ErrorKind = "handler_fault"
	KindUncaughtFault     ErrorKind = "uncaught_fault"
	KindRejectedOperation ErrorKind = "rejected_operation"
	KindResourceLoadFault ErrorKind = "resource_load_fault"
)

// ResourceKind is the asset type behind a resource load failure.
type ResourceKind string

const (
	ResourceScript ResourceKind = "script"
	ResourceStyle  ResourceKind = "style"
	ResourceImage  ResourceKind = "image"
	ResourceOther  ResourceKind = "other"
)

// ResourceRef identifies the asset that failed to load.
type ResourceRef struct {
	Kind ResourceKind `json:"kind"`
	URL  string       `json:"url"`
}

// ErrorRecord is a classified failure. It is never mutated after creation.
type ErrorRecord struct {
	ID           string       `json:"id"`
	Message      string       `json:"message"`
	Timestamp    time.Time    `json:"timestamp"`
	SourceRegion string       `json:"source_region,omitempty"` // empty = global
	Kind         ErrorKind    `json:"kind"`
	StackTrace   string       `json:"stack_trace,omitempty"`
	Resource     *ResourceRef `json:"resource,omitempty"`
	Hint         string       `json:"hint,omitempty"`
}

// HasRegion reports whether the record is scoped to a region.
func (r ErrorRecord) HasRegion() bool {
	return r.SourceRegion != ""
}

// ExportedRecord is the serialisable form of an ErrorRecord.
type ExportedRecord struct {
	ID           string       `json:"id"`
	Message      string       `json:"message"`
	Timestamp    string       `json:"timestamp"`
	SourceRegion string       `json:"source_region,omitempty"`
	Kind         ErrorKind    `json:"kind"`
	StackTrace   string       `json:"stack_trace,omitempty"`
	Resource     *ResourceRef `json:"resource,omitempty"`
	Hint         string       `json:"hint,omitempty"`
}

// Export converts the record, rendering the timestamp as RFC 3339 in UTC.
func (r ErrorRecord) Export() ExportedRecord {
	return ExportedRecord{
		ID:           r.ID,
		Message:      r.Message,
		Timestamp:    r.Timestamp.UTC().Format(time.RFC3339Nano),
		SourceRegion: r.SourceRegion,
		Kind:         r.Kind,
		StackTrace:   r.StackTrace,
		Resource:     r.Resource,
		Hint:         r.Hint,
	}
}
