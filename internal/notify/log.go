// Package notify renders engine notices for hosts without a visual surface.
package notify

import (
	"log/slog"
	"sync"

	"github.com/vietddude/faultline/internal/resilience"
)

// LogPresenter implements resilience.Presenter by writing structured logs
// and tracking what a user would currently see.
type LogPresenter struct {
	log *slog.Logger

	mu          sync.Mutex
	banner      string
	decorations bool
	replaced    map[string]string
	location    string
}

var _ resilience.Presenter = (*LogPresenter)(nil)

// NewLogPresenter creates a presenter. A nil logger uses slog.Default().
func NewLogPresenter(log *slog.Logger) *LogPresenter {
	if log == nil {
		log = slog.Default()
	}
	return &LogPresenter{
		log:         log.With("component", "presenter"),
		decorations: true,
		replaced:    make(map[string]string),
		location:    "/",
	}
}

func (p *LogPresenter) Toast(level resilience.ToastLevel, msg string) {
	switch level {
	case resilience.ToastError:
		p.log.Error(msg, "toast", level)
	case resilience.ToastWarning:
		p.log.Warn(msg, "toast", level)
	default:
		p.log.Info(msg, "toast", level)
	}
}

func (p *LogPresenter) ShowBanner(msg string, action resilience.BannerAction) {
	p.mu.Lock()
	p.banner = msg
	p.mu.Unlock()
	p.log.Error("Banner shown", "message", msg, "action", action.Label)
}

func (p *LogPresenter) HideBanner() {
	p.mu.Lock()
	p.banner = ""
	p.mu.Unlock()
	p.log.Info("Banner hidden")
}

func (p *LogPresenter) SetDecorations(enabled bool) {
	p.mu.Lock()
	p.decorations = enabled
	p.mu.Unlock()
	p.log.Info("Decorative features toggled", "enabled", enabled)
}

func (p *LogPresenter) ReplaceRegion(region, notice string) {
	p.mu.Lock()
	p.replaced[region] = notice
	p.mu.Unlock()
	p.log.Warn("Region replaced", "region", region, "notice", notice)
}

func (p *LogPresenter) RestoreRegion(region string) {
	p.mu.Lock()
	delete(p.replaced, region)
	p.mu.Unlock()
	p.log.Info("Region restored", "region", region)
}

func (p *LogPresenter) Navigate(path string) {
	p.mu.Lock()
	p.location = path
	p.mu.Unlock()
	p.log.Warn("Navigated", "path", path)
}

// View is what the presenter currently shows.
type View struct {
	Banner      string            `json:"banner,omitempty"`
	Decorations bool              `json:"decorations"`
	Replaced    map[string]string `json:"replaced,omitempty"`
	Location    string            `json:"location"`
}

// View returns a copy of the current presentation state.
func (p *LogPresenter) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	replaced := make(map[string]string, len(p.replaced))
	for k, v := range p.replaced {
		replaced[k] = v
	}
	return View{
		Banner:      p.banner,
		Decorations: p.decorations,
		Replaced:    replaced,
		Location:    p.location,
	}
}
