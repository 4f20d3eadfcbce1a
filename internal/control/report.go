package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vietddude/faultline/internal/core/domain"
	"github.com/vietddude/faultline/internal/resilience"
)

// ReportRequest is a failure reported by a remote front end.
type ReportRequest struct {
	Kind         domain.ErrorKind    `json:"kind"`
	Region       string              `json:"region,omitempty"`
	Event        string              `json:"event,omitempty"`
	Message      string              `json:"message,omitempty"`
	Operation    string              `json:"operation,omitempty"`
	Stack        string              `json:"stack,omitempty"`
	ResourceKind domain.ResourceKind `json:"resource_kind,omitempty"`
	URL          string              `json:"url,omitempty"`
}

var errMissingMessage = errors.New("message is required")

// Signal converts the request into an engine signal.
func (r ReportRequest) Signal() (resilience.Signal, error) {
	var cause error
	if r.Message != "" {
		cause = errors.New(r.Message)
	}
	var stack []byte
	if r.Stack != "" {
		stack = []byte(r.Stack)
	}

	switch r.Kind {
	case domain.KindHandlerFault:
		if r.Region == "" {
			return nil, errors.New("region is required for handler faults")
		}
		if cause == nil {
			return nil, errMissingMessage
		}
		return resilience.HandlerFault{Region: r.Region, Event: r.Event, Err: cause, Stack: stack}, nil
	case domain.KindUncaughtFault:
		if cause == nil {
			return nil, errMissingMessage
		}
		return resilience.UncaughtFault{Err: cause, Stack: stack}, nil
	case domain.KindRejectedOperation:
		return resilience.RejectedOperation{Operation: r.Operation, Reason: cause}, nil
	case domain.KindResourceLoadFault:
		if r.URL == "" {
			return nil, errors.New("url is required for resource faults")
		}
		return resilience.ResourceLoadFault{Kind: r.ResourceKind, URL: r.URL}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", r.Kind)
	}
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	sig, err := req.Signal()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.engine.ReportError(sig)
	w.WriteHeader(http.StatusAccepted)
}

// DispatchRequest drives an element of the hosted session.
type DispatchRequest struct {
	Element string `json:"element"`
	Event   string `json:"event"`
	Broken  *bool  `json:"broken,omitempty"`
}

func (a *App) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DispatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Broken != nil {
		if *req.Broken {
			a.session.Break(req.Element)
		} else {
			a.session.Fix(req.Element)
		}
	}
	if req.Event == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := a.session.Dispatch(r.Context(), req.Element, req.Event); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *App) handlePresentation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.presenter.View())
}
