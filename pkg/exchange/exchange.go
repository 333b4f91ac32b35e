package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/StudioSol/set"
	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/logger"
)

// Source is a named history provider
type Source struct {
	Name   string
	Feeder core.Feeder
}

// Fallback asks each source in turn until one returns the history
type Fallback struct {
	sources []Source
	names   *set.LinkedHashSetString
	log     logger.Logger
}

// NewFallback creates a fallback feeder; duplicate source names are rejected
func NewFallback(log logger.Logger, sources ...Source) (*Fallback, error) {
	if len(sources) == 0 {
		return nil, errors.New("no history source configured")
	}

	names := set.NewLinkedHashSetString()
	for _, source := range sources {
		before := names.Length()
		if names.Add(source.Name); names.Length() == before {
			return nil, fmt.Errorf("duplicate history source %q", source.Name)
		}
	}

	return &Fallback{sources: sources, names: names, log: log}, nil
}

// Sources returns the source names in the order they are asked
func (f *Fallback) Sources() []string {
	names := make([]string, 0, f.names.Length())
	for name := range f.names.Iter() {
		names = append(names, name)
	}
	return names
}

// History implements core.Feeder. The last error is returned when every
// source fails; it matches core.ErrNotFound only if all sources reported it.
func (f *Fallback) History(ctx context.Context, ticker string) (core.History, error) {
	var (
		lastErr  error
		notFound = true
	)

	for _, source := range f.sources {
		history, err := source.Feeder.History(ctx, ticker)
		if err == nil {
			return history, nil
		}
		if errors.Is(err, core.ErrEmptyTicker) || ctx.Err() != nil {
			return core.History{}, err
		}

		f.log.WithFields(map[string]any{
			"source": source.Name,
			"ticker": ticker,
		}).WithError(err).Debug("history source failed")

		notFound = notFound && errors.Is(err, core.ErrNotFound)
		lastErr = err
	}

	if notFound {
		return core.History{}, fmt.Errorf("%w: %s", core.ErrNotFound, ticker)
	}
	return core.History{}, lastErr
}
