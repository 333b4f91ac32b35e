package indicator

import "github.com/markcheno/go-talib"

// ------------------------------------------
// Overlap Studies (Moving Averages)
// ------------------------------------------

// SMA calculates Simple Moving Average.
// The first period-1 outputs are zero; callers mask them as undefined.
// talib indexes past the input when it is shorter than the period, so that
// case returns nil instead of calling into it.
func SMA(input []float64, period int) []float64 {
	if period <= 0 || len(input) < period {
		return nil
	}
	return talib.Sma(input, period)
}
