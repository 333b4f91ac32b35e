package plot

// Fixed colours of the chart. Prior renders use the same values.
const (
	ColorPrice     = "#1f2937"
	ColorMAShort   = "#3b82f6"
	ColorMAMid     = "#ef4444"
	ColorMALong    = "#10b981"
	ColorBandFill  = "#a78bfa"
	ColorBandEdge  = "#8b5cf6"
	ColorRSI       = "#f59e0b"
	ColorReference = "#6b7280"
	ColorUp        = "#10b981"
	ColorDown      = "#ef4444"
)

// Series names
const (
	SeriesPrice     = "Price"
	SeriesMAShort   = "5MA"
	SeriesMAMid     = "25MA"
	SeriesMALong    = "75MA"
	SeriesBand      = "BB(25, 2)"
	SeriesBandUpper = "BB Upper"
	SeriesBandLower = "BB Lower"
	SeriesRSI       = "RSI(14)"
	SeriesVolume    = "Volume"
)

// RSI reference levels
const (
	Overbought = 70.0
	Oversold   = 30.0
)
