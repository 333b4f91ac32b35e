package stocklens

import (
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/indicator"
	"github.com/raykavin/stocklens/pkg/logger"
)

// Option is a functional option for configuring an Analyzer instance
type Option func(*Analyzer)

// WithIndicators selects which indicators are computed and drawn, by default indicator.Full()
func WithIndicators(config indicator.Config) Option {
	return func(a *Analyzer) {
		a.indicators = config
	}
}

// WithWindowSize sets how many trailing sessions are drawn.
// A non-positive size falls back to the default of 60.
func WithWindowSize(size int) Option {
	return func(a *Analyzer) {
		a.windowSize = size
	}
}

// WithLogger replaces DefaultLog
func WithLogger(log logger.Logger) Option {
	return func(a *Analyzer) {
		a.log = log
	}
}

// WithStorage records every status, e.g. in a storage.StatusStorage
func WithStorage(storage core.StatusRecorder) Option {
	return func(a *Analyzer) {
		a.storage = storage
	}
}

// WithNotifier registers a notifier; it may be given several times
func WithNotifier(notifier core.Notifier) Option {
	return func(a *Analyzer) {
		a.notifiers = append(a.notifiers, notifier)
	}
}

// WithClock overrides the time stamped on statuses
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}
