package resilience

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/faultline/internal/core/domain"
)

// Signal is a raw failure reported by one of the failure sources.
type Signal interface {
	kind() domain.ErrorKind
}

// HandlerFault is a failure inside an interaction handler owned by a region.
type HandlerFault struct {
	Region string
	Event  string
	Err    error
	Panic  any
	Stack  []byte
}

// UncaughtFault is a failure nothing else handled.
type UncaughtFault struct {
	Err   error
	Panic any
	Stack []byte
}

// RejectedOperation is an asynchronous operation that failed with no one
// waiting on its result.
type RejectedOperation struct {
	Operation string
	Reason    error
}

// ResourceLoadFault is a script, stylesheet or image that failed to load.
type ResourceLoadFault struct {
	Kind domain.ResourceKind
	URL  string
}

func (HandlerFault) kind() domain.ErrorKind      { return domain.KindHandlerFault }
func (UncaughtFault) kind() domain.ErrorKind     { return domain.KindUncaughtFault }
func (RejectedOperation) kind() domain.ErrorKind { return domain.KindRejectedOperation }
func (ResourceLoadFault) kind() domain.ErrorKind { return domain.KindResourceLoadFault }

var resourceHints = map[domain.ResourceKind]string{
	domain.ResourceScript: "script unavailable; reload the page to restore interactive features",
	domain.ResourceStyle:  "stylesheet unavailable; default styling is in effect",
	domain.ResourceImage:  "image unavailable; a placeholder is shown",
	domain.ResourceOther:  "resource unavailable",
}

// ResourceHint returns the remediation hint for a resource kind.
func ResourceHint(kind domain.ResourceKind) string {
	if hint, ok := resourceHints[kind]; ok {
		return hint
	}
	return resourceHints[domain.ResourceOther]
}

// Classify turns a signal into an ErrorRecord stamped with now.
func Classify(sig Signal, now time.Time) domain.ErrorRecord {
	rec := domain.ErrorRecord{
		ID:        uuid.NewString(),
		Timestamp: now,
		Kind:      sig.kind(),
	}

	switch s := sig.(type) {
	case HandlerFault:
		rec.SourceRegion = s.Region
		rec.Message = faultMessage(s.Err, s.Panic, "handler fault")
		if s.Event != "" {
			rec.Message = fmt.Sprintf("%s handler: %s", s.Event, rec.Message)
		}
		rec.StackTrace = string(s.Stack)
	case UncaughtFault:
		rec.Message = faultMessage(s.Err, s.Panic, "uncaught fault")
		rec.StackTrace = string(s.Stack)
	case RejectedOperation:
		reason := "no reason given"
		if s.Reason != nil {
			reason = s.Reason.Error()
		}
		if s.Operation != "" {
			rec.Message = fmt.Sprintf("unhandled rejection in %s: %s", s.Operation, reason)
		} else {
			rec.Message = "unhandled rejection: " + reason
		}
	case ResourceLoadFault:
		kind := s.Kind
		if _, ok := resourceHints[kind]; !ok {
			kind = domain.ResourceOther
		}
		rec.Message = fmt.Sprintf("failed to load %s: %s", kind, s.URL)
		rec.Resource = &domain.ResourceRef{Kind: kind, URL: s.URL}
		rec.Hint = ResourceHint(kind)
	}

	return rec
}

func faultMessage(err error, p any, fallback string) string {
	switch {
	case err != nil:
		return err.Error()
	case p != nil:
		if perr, ok := p.(error); ok {
			return "panic: " + perr.Error()
		}
		return fmt.Sprintf("panic: %v", p)
	default:
		return fallback
	}
}
