package stocklens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/indicator"
	"github.com/raykavin/stocklens/pkg/logger"
	"github.com/raykavin/stocklens/pkg/metric"
	"github.com/raykavin/stocklens/pkg/plot"
)

// DefaultLog is the default logger instance
var DefaultLog logger.Logger

// Analyzer turns a ticker into a chart layout and a status line
type Analyzer struct {
	feeder     core.Feeder
	indicators indicator.Config
	windowSize int
	storage    core.StatusRecorder
	notifiers  []core.Notifier
	now        func() time.Time
	log        logger.Logger

	engine     *indicator.Engine
	compositor *plot.Compositor
}

// NewAnalyzer creates an analyzer reading history from feeder
func NewAnalyzer(feeder core.Feeder, options ...Option) (*Analyzer, error) {
	if feeder == nil {
		return nil, errors.New("history feeder is required")
	}

	analyzer := &Analyzer{
		feeder:     feeder,
		indicators: indicator.Full(),
		windowSize: plot.DefaultWindowSize,
		now:        time.Now,
		log:        DefaultLog,
	}

	for _, option := range options {
		option(analyzer)
	}

	engine, err := indicator.NewEngine(analyzer.indicators, indicator.WithLogger(analyzer.log))
	if err != nil {
		return nil, err
	}
	analyzer.engine = engine

	var panels []plot.Option
	if analyzer.indicators.Bands {
		panels = append(panels, plot.WithBands())
	}
	if analyzer.indicators.RSI {
		panels = append(panels, plot.WithOscillator())
	}
	analyzer.compositor = plot.NewCompositor(panels...)

	return analyzer, nil
}

// Analyze fetches the history of ticker, derives the indicators and lays out the panels.
// Any retrieval failure is reported as core.ErrNotFound together with a failed status.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (plot.Render, error) {
	render, err := a.analyze(ctx, ticker)
	metric.ObserveAnalysis(err)
	return render, err
}

func (a *Analyzer) analyze(ctx context.Context, raw string) (plot.Render, error) {
	ticker, err := core.NormalizeTicker(raw)
	if err != nil {
		return plot.Render{Status: core.FailedStatus("", a.now())}, err
	}

	log := a.log.WithField("ticker", ticker)

	started := time.Now()
	history, err := a.feeder.History(ctx, ticker)
	metric.ObserveFetch(started, history, err)
	if err == nil && history.IsEmpty() {
		err = core.ErrNotFound
	}
	if err != nil {
		log.WithError(err).Warn("history retrieval failed")
		if !errors.Is(err, core.ErrNotFound) {
			err = fmt.Errorf("%w: %v", core.ErrNotFound, err)
		}
		return plot.Render{Status: a.publish(core.FailedStatus(ticker, a.now()))}, err
	}

	profile := core.NewSecurityProfile(ticker, history.Profile.DisplayName)
	bars := core.NormalizeBars(history.Bars)
	enriched, err := a.engine.Compute(bars)
	if err != nil {
		return plot.Render{Status: a.publish(core.FailedStatus(ticker, a.now()))}, err
	}

	layout, err := a.compositor.Layout(enriched, profile, a.windowSize)
	if err != nil {
		return plot.Render{Status: a.publish(core.FailedStatus(ticker, a.now()))}, err
	}

	last := enriched[len(enriched)-1]
	status := a.publish(core.Status{
		Ticker:      profile.Ticker,
		DisplayName: profile.DisplayName,
		LatestClose: last.Close,
		LatestRSI:   last.RSI,
		ComputedAt:  a.now(),
	})

	log.WithFields(map[string]any{
		"sessions": len(enriched),
		"window":   layout.Sessions(),
	}).Debug("analysis completed")

	return plot.Render{Layout: layout, Status: status}, nil
}

// publish records the status and hands it to every notifier
func (a *Analyzer) publish(status core.Status) core.Status {
	if a.storage != nil {
		if err := a.storage.Save(status); err != nil {
			a.log.WithError(err).Error("failed to record status")
		}
	}

	for _, notifier := range a.notifiers {
		notifier.Notify(status)
	}

	return status
}
