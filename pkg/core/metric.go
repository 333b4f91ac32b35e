package core

// MetricStyle is the drawing style of a plotted series
type MetricStyle string

const (
	StyleLine MetricStyle = "line"
	StyleBar  MetricStyle = "bar"
	StyleFill MetricStyle = "fill"
)
