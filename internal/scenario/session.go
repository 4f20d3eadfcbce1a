// Package scenario provides a scripted front end session: a ticket form, a
// session list and a checkout button whose handlers can be broken on demand.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vietddude/faultline/internal/core/config"
	"github.com/vietddude/faultline/internal/ui"
)

const (
	TicketForm  = "ticket-form"
	SessionList = "session-list"
	Checkout    = "checkout"
	PromoBanner = "promo-banner"

	EventSubmit  = "submit"
	EventRefresh = "refresh"
	EventClick   = "click"
)

var (
	errTicketSubmit = errors.New("ticket service returned 500")
	errCheckout     = errors.New("payment gateway timeout")
)

// Session is the scripted front end.
type Session struct {
	Surface *ui.Surface

	mu          sync.Mutex
	broken      map[string]bool
	reinitFails map[string]bool
	reinits     map[string]int
}

// NewSession mounts the elements and attaches their handlers.
func NewSession() *Session {
	s := &Session{
		Surface:     ui.NewSurface(),
		broken:      make(map[string]bool),
		reinitFails: make(map[string]bool),
		reinits:     make(map[string]int),
	}

	form := ui.NewElement(TicketForm, "form", "ticket-form")
	form.On(EventSubmit, func(ctx context.Context, ev ui.Event) error {
		if s.isBroken(TicketForm) {
			return errTicketSubmit
		}
		return nil
	})

	list := ui.NewElement(SessionList, "ul", "session-list")
	list.On(EventRefresh, func(ctx context.Context, ev ui.Event) error {
		if s.isBroken(SessionList) {
			panic("session store not initialised")
		}
		return nil
	})

	checkout := ui.NewElement(Checkout, "button", "primary")
	checkout.SetAttr("data-region", "checkout")
	checkout.On(EventClick, func(ctx context.Context, ev ui.Event) error {
		if s.isBroken(Checkout) {
			return errCheckout
		}
		return nil
	})

	promo := ui.NewElement(PromoBanner, "div", "decoration")

	s.Surface.Mount(form, list, checkout, promo)
	return s
}

// DefaultRegions declares the regions of the session.
func DefaultRegions() []config.RegionConfig {
	return []config.RegionConfig{
		{
			Name:      "tickets",
			Selector:  "#" + TicketForm,
			Fallback:  config.FallbackNotice,
			Message:   "Ticket submission is temporarily unavailable.",
			Retryable: true,
		},
		{
			Name:      "sessions",
			Selector:  ".session-list",
			Fallback:  config.FallbackNotice,
			Retryable: true,
		},
		{
			Name:     "checkout",
			Selector: "[data-region=checkout]",
			Fallback: config.FallbackRedirect,
			Path:     "/checkout/offline",
			Critical: true,
		},
	}
}

func (s *Session) isBroken(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken[id]
}

// Break makes the element's handler fail.
func (s *Session) Break(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken[id] = true
}

// Fix restores the element's handler.
func (s *Session) Fix(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.broken, id)
}

// FailReinit makes re-initialisation of region fail until fixed.
func (s *Session) FailReinit(region string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reinitFails[region] = fail
}

// Reinit re-initialises a region. It matches resilience.ReinitFunc.
func (s *Session) Reinit(ctx context.Context, region string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reinits[region]++
	if s.reinitFails[region] {
		return fmt.Errorf("re-initialising %s: dependencies still unavailable", region)
	}
	return nil
}

// Reinits returns how often region was re-initialised.
func (s *Session) Reinits(region string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reinits[region]
}

// Dispatch sends an event to the element with the given id.
func (s *Session) Dispatch(ctx context.Context, id, eventType string) error {
	el, ok := s.Surface.Get(id)
	if !ok {
		return fmt.Errorf("element %q not mounted", id)
	}
	return el.Dispatch(ctx, ui.Event{Type: eventType, Target: id})
}
