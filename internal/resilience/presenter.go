package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/vietddude/faultline/internal/core/domain"
)

// ToastLevel is the severity of a transient notice.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
	ToastSuccess ToastLevel = "success"
)

// BannerAction is the call to action on the emergency banner.
type BannerAction struct {
	Label  string
	Reload bool
}

// Presenter is the user-facing surface the engine drives. Implementations
// own the markup; the engine only says what to show.
type Presenter interface {
	Toast(level ToastLevel, message string)
	ShowBanner(message string, action BannerAction)
	HideBanner()
	SetDecorations(enabled bool)
	ReplaceRegion(region, notice string)
	RestoreRegion(region string)
	Navigate(path string)
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) Toast(ToastLevel, string)         {}
func (NopPresenter) ShowBanner(string, BannerAction) {}
func (NopPresenter) HideBanner()                      {}
func (NopPresenter) SetDecorations(bool)              {}
func (NopPresenter) ReplaceRegion(string, string)     {}
func (NopPresenter) RestoreRegion(string)             {}
func (NopPresenter) Navigate(string)                  {}

var (
	// ErrNilRenderer is returned for a CustomRenderer without a function.
	ErrNilRenderer = errors.New("custom renderer has no render function")

	// ErrUnknownFallback is returned for an unsupported fallback strategy.
	ErrUnknownFallback = errors.New("unknown fallback strategy")
)

// FallbackStrategy is the degraded replacement shown when a region trips.
// It is one of StaticNotice, CustomRenderer or Redirect.
type FallbackStrategy interface {
	isFallback()
}

// StaticNotice replaces the region content with a fixed message.
type StaticNotice struct {
	Message string
}

// CustomRenderer renders replacement content itself.
type CustomRenderer struct {
	Render func(ctx context.Context, view RegionView) error
}

// Redirect navigates away from the failing region.
type Redirect struct {
	Path string
}

func (StaticNotice) isFallback()   {}
func (CustomRenderer) isFallback() {}
func (Redirect) isFallback()       {}

// RegionView is what a renderer gets to see about the failing region.
type RegionView struct {
	Name       string
	ErrorCount int
	LastError  *domain.ErrorRecord
	Presenter  Presenter
}

const defaultNotice = "This section is temporarily unavailable."

// render applies a fallback strategy. Panics are returned as errors.
func render(ctx context.Context, strategy FallbackStrategy, view RegionView) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("fallback renderer panicked: %v", p)
		}
	}()

	switch s := strategy.(type) {
	case nil:
		view.Presenter.ReplaceRegion(view.Name, defaultNotice)
	case StaticNotice:
		msg := s.Message
		if msg == "" {
			msg = defaultNotice
		}
		view.Presenter.ReplaceRegion(view.Name, msg)
	case CustomRenderer:
		if s.Render == nil {
			return ErrNilRenderer
		}
		return s.Render(ctx, view)
	case Redirect:
		view.Presenter.Navigate(s.Path)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownFallback, strategy)
	}
	return nil
}
