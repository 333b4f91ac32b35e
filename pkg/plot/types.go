package plot

import (
	"time"

	"github.com/raykavin/stocklens/pkg/core"
)

// PanelKind identifies a panel of the fixed stack
type PanelKind string

const (
	PanelPrice      PanelKind = "price"
	PanelOscillator PanelKind = "oscillator"
	PanelVolume     PanelKind = "volume"
)

// Series is one drawable series aligned with PanelLayout.Time.
// Line and bar series use Values; fill series use Lower and Upper.
type Series struct {
	Name      string           `json:"name"`
	Style     core.MetricStyle `json:"style"`
	Color     string           `json:"color"`
	LineWidth float64          `json:"line_width,omitempty"`
	Alpha     float64          `json:"alpha"`
	Values    []core.Value     `json:"values,omitempty"`
	Lower     []core.Value     `json:"lower,omitempty"`
	Upper     []core.Value     `json:"upper,omitempty"`
	Colors    []string         `json:"colors,omitempty"` // per session, bar series only
}

// Reference is a fixed horizontal line
type Reference struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Range is a fixed vertical axis extent
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Panel is one plotting region of the stack
type Panel struct {
	Kind        PanelKind   `json:"kind"`
	Title       string      `json:"title,omitempty"`
	YLabel      string      `json:"y_label,omitempty"`
	HeightRatio int         `json:"height_ratio"`
	YRange      *Range      `json:"y_range,omitempty"`
	TimeLabels  bool        `json:"time_labels"`
	Legend      bool        `json:"legend"`
	Series      []Series    `json:"series"`
	References  []Reference `json:"references,omitempty"`
}

// Find returns the series with the given name
func (p Panel) Find(name string) (Series, bool) {
	for _, s := range p.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// Tick is a labelled position on the shared time axis
type Tick struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Label string    `json:"label"`
}

// PanelLayout describes a full render: panels top to bottom sharing one time axis
type PanelLayout struct {
	Title   string               `json:"title"`
	Profile core.SecurityProfile `json:"profile"`
	Time    []time.Time          `json:"time"`
	Ticks   []Tick               `json:"ticks"`
	Panels  []Panel              `json:"panels"`
}

// Panel returns the panel of the given kind
func (l PanelLayout) Panel(kind PanelKind) (Panel, bool) {
	for _, p := range l.Panels {
		if p.Kind == kind {
			return p, true
		}
	}
	return Panel{}, false
}

// HeightRatios returns the relative panel heights, top to bottom
func (l PanelLayout) HeightRatios() []int {
	ratios := make([]int, len(l.Panels))
	for i, p := range l.Panels {
		ratios[i] = p.HeightRatio
	}
	return ratios
}

// Sessions returns the number of sessions on the time axis
func (l PanelLayout) Sessions() int {
	return len(l.Time)
}
