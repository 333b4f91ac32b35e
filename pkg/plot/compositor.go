package plot

import (
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/samber/lo"
)

// DefaultWindowSize is the number of trailing sessions drawn when none is given
const DefaultWindowSize = 60

// Compositor arranges enriched bars into the fixed panel stack
type Compositor struct {
	bands      bool
	oscillator bool
	maxTicks   int
}

// Option configures a Compositor
type Option func(*Compositor)

// WithBands draws the Bollinger Bands on the price panel
func WithBands() Option {
	return func(c *Compositor) {
		c.bands = true
	}
}

// WithOscillator adds the RSI panel between the price and volume panels
func WithOscillator() Option {
	return func(c *Compositor) {
		c.oscillator = true
	}
}

// WithMaxTicks lowers the number of time-axis ticks (never above MaxTicks)
func WithMaxTicks(n int) Option {
	return func(c *Compositor) {
		c.maxTicks = n
	}
}

// NewCompositor creates a compositor for the plain moving-average chart,
// extended by the given options
func NewCompositor(options ...Option) *Compositor {
	compositor := &Compositor{maxTicks: MaxTicks}
	for _, option := range options {
		option(compositor)
	}
	return compositor
}

// Layout builds the panel stack for the trailing windowSize sessions of bars.
// A non-positive windowSize falls back to DefaultWindowSize.
// Empty bars yield core.ErrNotFound.
func (c *Compositor) Layout(bars []core.EnrichedBar, profile core.SecurityProfile, windowSize int) (PanelLayout, error) {
	if len(bars) == 0 {
		return PanelLayout{}, core.ErrNotFound
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	window := core.Trailing(bars, windowSize)
	times := lo.Map(window, func(b core.EnrichedBar, _ int) time.Time { return b.Time })

	layout := PanelLayout{
		Title:   profile.DisplayName + " - Analysis",
		Profile: profile,
		Time:    times,
		Ticks:   ticks(times, c.maxTicks),
		Panels:  []Panel{c.pricePanel(window, profile)},
	}
	if c.oscillator {
		layout.Panels = append(layout.Panels, c.oscillatorPanel(window))
	}
	layout.Panels = append(layout.Panels, c.volumePanel(window))

	// shared axis: only the bottom panel carries time labels
	layout.Panels[len(layout.Panels)-1].TimeLabels = true

	return layout, nil
}

func (c *Compositor) pricePanel(window []core.EnrichedBar, profile core.SecurityProfile) Panel {
	panel := Panel{
		Kind:        PanelPrice,
		Title:       profile.DisplayName + " - Analysis",
		HeightRatio: 3,
		Legend:      true,
	}

	// the band region goes first so the price and averages draw over it
	if c.bands {
		lower := column(window, func(b core.EnrichedBar) core.Value { return b.BandLower })
		upper := column(window, func(b core.EnrichedBar) core.Value { return b.BandUpper })
		if anyDefined(lower) && anyDefined(upper) {
			panel.Series = append(panel.Series,
				Series{Name: SeriesBand, Style: core.StyleFill, Color: ColorBandFill, Alpha: 0.15, Lower: lower, Upper: upper},
				Series{Name: SeriesBandUpper, Style: core.StyleLine, Color: ColorBandEdge, LineWidth: 0.8, Alpha: 0.4, Values: upper},
				Series{Name: SeriesBandLower, Style: core.StyleLine, Color: ColorBandEdge, LineWidth: 0.8, Alpha: 0.4, Values: lower},
			)
		}
	}

	closes := column(window, func(b core.EnrichedBar) core.Value { return core.Some(b.Close) })
	panel.Series = append(panel.Series, Series{
		Name: SeriesPrice, Style: core.StyleLine, Color: ColorPrice, LineWidth: 2, Alpha: 0.8, Values: closes,
	})

	averages := []Series{
		{Name: SeriesMAShort, Color: ColorMAShort, LineWidth: 1.2,
			Values: column(window, func(b core.EnrichedBar) core.Value { return b.MAShort })},
		{Name: SeriesMAMid, Color: ColorMAMid, LineWidth: 1.5,
			Values: column(window, func(b core.EnrichedBar) core.Value { return b.MAMid })},
		{Name: SeriesMALong, Color: ColorMALong, LineWidth: 1.2,
			Values: column(window, func(b core.EnrichedBar) core.Value { return b.MALong })},
	}
	for _, average := range averages {
		if !anyDefined(average.Values) {
			continue
		}
		average.Style = core.StyleLine
		average.Alpha = 1
		panel.Series = append(panel.Series, average)
	}

	return panel
}

func (c *Compositor) oscillatorPanel(window []core.EnrichedBar) Panel {
	panel := Panel{
		Kind:        PanelOscillator,
		YLabel:      "RSI",
		HeightRatio: 1,
		YRange:      &Range{Min: 0, Max: 100},
		References: []Reference{
			{Name: "Overbought", Value: Overbought, Color: ColorReference},
			{Name: "Oversold", Value: Oversold, Color: ColorReference},
		},
	}

	// indeterminate sessions are drawn at their neutral sentinel
	rsi := column(window, func(b core.EnrichedBar) core.Value {
		if sentinel, ok := b.RSI.Sentinel(); ok {
			return core.Some(sentinel)
		}
		return b.RSI
	})
	if anyDefined(rsi) {
		panel.Series = append(panel.Series, Series{
			Name: SeriesRSI, Style: core.StyleLine, Color: ColorRSI, LineWidth: 1.2, Alpha: 1, Values: rsi,
		})
	}

	return panel
}

func (c *Compositor) volumePanel(window []core.EnrichedBar) Panel {
	return Panel{
		Kind:        PanelVolume,
		YLabel:      "Volume",
		HeightRatio: 1,
		Series: []Series{{
			Name:   SeriesVolume,
			Style:  core.StyleBar,
			Color:  ColorUp,
			Alpha:  0.7,
			Values: column(window, func(b core.EnrichedBar) core.Value { return core.Some(float64(b.Volume)) }),
			Colors: lo.Map(window, func(b core.EnrichedBar, _ int) string { return BarColor(b.Bar) }),
		}},
	}
}

// BarColor returns the volume bar colour of a session
func BarColor(bar core.Bar) string {
	if bar.IsUp() {
		return ColorUp
	}
	return ColorDown
}

func column(window []core.EnrichedBar, field func(core.EnrichedBar) core.Value) []core.Value {
	return lo.Map(window, func(b core.EnrichedBar, _ int) core.Value { return field(b) })
}

func anyDefined(values []core.Value) bool {
	return lo.SomeBy(values, core.Value.IsDefined)
}
