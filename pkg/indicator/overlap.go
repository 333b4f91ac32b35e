package indicator

import (
	"github.com/raykavin/stocklens/pkg/core"
	"gonum.org/v1/gonum/stat"
)

// MovingAverage returns the trailing simple moving average of closes.
// Values before index period-1 are undefined.
func MovingAverage(closes core.Series[float64], period int) []core.Value {
	out := make([]core.Value, closes.Length())

	values := SMA(closes.Values(), period)
	if values == nil {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		out[i] = core.Some(values[i])
	}
	return out
}

// StdDev returns the trailing sample standard deviation (n-1 denominator) of closes.
// Values before index period-1 are undefined, as is every value when period < 2.
func StdDev(closes core.Series[float64], period int) []core.Value {
	out := make([]core.Value, closes.Length())
	if period < 2 {
		return out
	}

	for i := range out {
		window, ok := closes.Window(i, period)
		if !ok {
			continue
		}
		out[i] = core.Some(stat.StdDev(window, nil))
	}
	return out
}

// BollingerBands offsets the middle band by deviation times the standard deviation.
// A band is undefined wherever the middle band or the deviation is undefined.
func BollingerBands(middle, stdDev []core.Value, deviation float64) (upper, lower []core.Value) {
	upper = make([]core.Value, len(middle))
	lower = make([]core.Value, len(middle))

	for i := range middle {
		mid, ok := middle[i].Float64()
		if !ok || i >= len(stdDev) {
			continue
		}
		sd, ok := stdDev[i].Float64()
		if !ok {
			continue
		}

		upper[i] = core.Some(mid + deviation*sd)
		lower[i] = core.Some(mid - deviation*sd)
	}
	return upper, lower
}
