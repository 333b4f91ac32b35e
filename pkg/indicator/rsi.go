package indicator

import (
	"github.com/raykavin/stocklens/pkg/core"
	"gonum.org/v1/gonum/floats"
)

// RSI returns the relative strength index using plain trailing means of gains and losses.
//
// The first session has no predecessor, so its change is omitted rather than counted as
// zero: the first defined value sits at index period, the (period+1)-th session.
// With no losses in the window the index saturates at 100. With neither gains nor losses
// it is 0/0 and resolves to an indeterminate value carrying sentinel.
func RSI(closes core.Series[float64], period int, sentinel float64) []core.Value {
	out := make([]core.Value, closes.Length())
	if period <= 0 || closes.Length() <= period {
		return out
	}

	// index i holds the change from session i-1 to session i; index 0 stays unused
	gains := make([]float64, closes.Length())
	losses := make([]float64, closes.Length())
	for i := 1; i < closes.Length(); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	n := float64(period)
	for i := period; i < closes.Length(); i++ {
		avgGain := floats.Sum(gains[i-period+1:i+1]) / n
		avgLoss := floats.Sum(losses[i-period+1:i+1]) / n
		out[i] = relativeStrength(avgGain, avgLoss, sentinel)
	}
	return out
}

func relativeStrength(avgGain, avgLoss, sentinel float64) core.Value {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return core.IndeterminateValue(sentinel)
	case avgLoss == 0:
		return core.Some(100)
	}

	rs := avgGain / avgLoss
	return core.Some(100 - 100/(1+rs))
}
