// Package ui models the interactive elements of the host front end that the
// resilience engine isolates faults for.
package ui

import (
	"context"
	"sync"
)

// Event is delivered to handlers when an element is interacted with.
type Event struct {
	Type    string
	Target  string
	Payload map[string]any
}

// Handler reacts to an event. A returned error or a panic is a fault.
type Handler func(ctx context.Context, ev Event) error

// Middleware decorates a handler at dispatch time.
type Middleware func(Handler) Handler

// ListenerID identifies an attached handler so it can be detached.
type ListenerID uint64

type listener struct {
	id      ListenerID
	handler Handler
}

// Element is an interactive node of the host surface.
type Element struct {
	id      string
	tag     string
	classes map[string]struct{}
	attrs   map[string]string

	mu         sync.RWMutex
	nextID     ListenerID
	listeners  map[string][]listener
	middleware []Middleware
}

// NewElement creates an element with the given id, tag and classes.
func NewElement(id, tag string, classes ...string) *Element {
	el := &Element{
		id:        id,
		tag:       tag,
		classes:   make(map[string]struct{}, len(classes)),
		attrs:     make(map[string]string),
		listeners: make(map[string][]listener),
	}
	for _, c := range classes {
		el.classes[c] = struct{}{}
	}
	return el
}

func (e *Element) ID() string  { return e.id }
func (e *Element) Tag() string { return e.tag }

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(class string) bool {
	_, ok := e.classes[class]
	return ok
}

// SetAttr sets an attribute. Returns the element for chaining.
func (e *Element) SetAttr(key, value string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[key] = value
	return e
}

// Attr returns an attribute value.
func (e *Element) Attr(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.attrs[key]
	return v, ok
}

// On attaches a handler for an event type.
func (e *Element) On(eventType string, h Handler) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners[eventType] = append(e.listeners[eventType], listener{id: id, handler: h})
	return id
}

// Off detaches a handler. Returns false if it was not attached.
func (e *Element) Off(eventType string, id ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ls := e.listeners[eventType]
	for i, l := range ls {
		if l.id == id {
			e.listeners[eventType] = append(ls[:i:i], ls[i+1:]...)
			return true
		}
	}
	return false
}

// ListenerCount returns the number of handlers attached for an event type.
func (e *Element) ListenerCount(eventType string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[eventType])
}

// Intercept installs middleware applied to every handler at dispatch,
// including handlers attached later.
func (e *Element) Intercept(m Middleware) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.middleware = append(e.middleware, m)
}

// Dispatch invokes the handlers attached for ev.Type in attach order.
// The first error stops dispatch and is returned.
func (e *Element) Dispatch(ctx context.Context, ev Event) error {
	e.mu.RLock()
	ls := append([]listener(nil), e.listeners[ev.Type]...)
	mw := append([]Middleware(nil), e.middleware...)
	e.mu.RUnlock()

	if ev.Target == "" {
		ev.Target = e.id
	}

	for _, l := range ls {
		h := l.handler
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](h)
		}
		if err := h(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
