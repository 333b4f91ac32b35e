package indicator

import (
	"fmt"
	"strings"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/logger"
	"github.com/raykavin/stocklens/pkg/logger/zerolog"
)

// Variant names accepted by ParseVariant
const (
	VariantMovingAverages = "moving_averages"
	VariantFull           = "full"
)

// Config selects the indicator set and its periods
type Config struct {
	ShortPeriod int // short moving average window
	MidPeriod   int // middle moving average and Bollinger window
	LongPeriod  int // long moving average window

	Bands         bool    // compute Bollinger Bands around the middle average
	BandDeviation float64 // band width in standard deviations

	RSI         bool    // compute the relative strength index
	RSIPeriod   int     // RSI window
	RSISentinel float64 // substitute value when the RSI window has no price changes
}

// MovingAverages returns the plain 5/25/75 moving-average set
func MovingAverages() Config {
	return Config{
		ShortPeriod: 5,
		MidPeriod:   25,
		LongPeriod:  75,
	}
}

// Full returns the moving averages plus Bollinger Bands (25, 2σ) and RSI(14)
func Full() Config {
	config := MovingAverages()
	config.Bands = true
	config.BandDeviation = 2
	config.RSI = true
	config.RSIPeriod = 14
	config.RSISentinel = 50
	return config
}

// ParseVariant maps a variant name to its configuration
func ParseVariant(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case VariantFull, "":
		return Full(), nil
	case VariantMovingAverages:
		return MovingAverages(), nil
	default:
		return Config{}, fmt.Errorf("unknown indicator variant %q", name)
	}
}

// Validate checks that every enabled window is positive
func (c Config) Validate() error {
	if c.ShortPeriod <= 0 || c.MidPeriod <= 0 || c.LongPeriod <= 0 {
		return fmt.Errorf("moving average periods must be positive: %d/%d/%d",
			c.ShortPeriod, c.MidPeriod, c.LongPeriod)
	}
	if c.Bands && (c.MidPeriod < 2 || c.BandDeviation <= 0) {
		return fmt.Errorf("bollinger bands need a period of at least 2 and a positive deviation")
	}
	if c.RSI && c.RSIPeriod <= 0 {
		return fmt.Errorf("rsi period must be positive: %d", c.RSIPeriod)
	}
	return nil
}

// Warmup returns the number of sessions needed before every enabled field is defined
func (c Config) Warmup() int {
	warmup := max(c.ShortPeriod, c.MidPeriod, c.LongPeriod)
	if c.RSI {
		warmup = max(warmup, c.RSIPeriod+1)
	}
	return warmup
}

// Engine derives indicator series from daily bars
type Engine struct {
	config Config
	log    logger.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for warm-up diagnostics
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine creates an engine for the given indicator set
func NewEngine(config Config, options ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config: config,
		log:    zerolog.Nop(),
	}
	for _, option := range options {
		option(engine)
	}

	return engine, nil
}

// Config returns the indicator set of the engine
func (e *Engine) Config() Config {
	return e.config
}

// Compute returns one enriched bar per input bar, in the same order.
// Every derived value depends only on sessions at or before its own.
// An empty input yields core.ErrNotFound.
func (e *Engine) Compute(bars []core.Bar) ([]core.EnrichedBar, error) {
	if len(bars) == 0 {
		return nil, core.ErrNotFound
	}

	if warmup := e.config.Warmup(); len(bars) < warmup {
		e.log.WithFields(map[string]any{
			"sessions": len(bars),
			"warmup":   warmup,
		}).Debug("insufficient history, longer windows stay undefined")
	}

	closes := core.NewDataframe(bars).Close

	short := MovingAverage(closes, e.config.ShortPeriod)
	mid := MovingAverage(closes, e.config.MidPeriod)
	long := MovingAverage(closes, e.config.LongPeriod)

	var upper, lower, rsi []core.Value
	if e.config.Bands {
		upper, lower = BollingerBands(mid, StdDev(closes, e.config.MidPeriod), e.config.BandDeviation)
	}
	if e.config.RSI {
		rsi = RSI(closes, e.config.RSIPeriod, e.config.RSISentinel)
	}

	enriched := make([]core.EnrichedBar, len(bars))
	for i, bar := range bars {
		enriched[i] = core.EnrichedBar{
			Bar:     bar,
			MAShort: short[i],
			MAMid:   mid[i],
			MALong:  long[i],
		}
		if upper != nil {
			enriched[i].BandUpper = upper[i]
			enriched[i].BandLower = lower[i]
		}
		if rsi != nil {
			enriched[i].RSI = rsi[i]
		}
	}

	return enriched, nil
}
