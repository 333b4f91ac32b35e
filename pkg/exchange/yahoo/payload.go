package yahoo

import (
	"fmt"
	"math"
	"time"

	"github.com/raykavin/stocklens/pkg/core"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol       string `json:"symbol"`
		ShortName    string `json:"shortName"`
		LongName     string `json:"longName"`
		GMTOffset    int    `json:"gmtoffset"`
		ExchangeZone string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// history converts the payload into ascending bars. Sessions with a missing
// price are skipped; a missing volume counts as zero.
func (r chartResponse) history(ticker string) (core.History, error) {
	if r.Chart.Error != nil {
		return core.History{}, fmt.Errorf("%w: %s: %s", core.ErrNotFound, ticker, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return core.History{}, fmt.Errorf("%w: %s", core.ErrNotFound, ticker)
	}

	result := r.Chart.Result[0]
	name := result.Meta.ShortName
	if name == "" {
		name = result.Meta.LongName
	}
	profile := core.NewSecurityProfile(ticker, name)

	if len(result.Indicators.Quote) == 0 {
		return core.History{}, fmt.Errorf("%w: %s", core.ErrNotFound, ticker)
	}
	quote := result.Indicators.Quote[0]
	zone := time.FixedZone(result.Meta.ExchangeZone, result.Meta.GMTOffset)

	bars := make([]core.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		open, okOpen := at(quote.Open, i)
		high, okHigh := at(quote.High, i)
		low, okLow := at(quote.Low, i)
		closePrice, okClose := at(quote.Close, i)
		if !okOpen || !okHigh || !okLow || !okClose {
			continue
		}
		volume, _ := at(quote.Volume, i)

		// sessions are keyed by the exchange's calendar date
		y, m, d := time.Unix(ts, 0).In(zone).Date()
		bars = append(bars, core.Bar{
			Time:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(math.Round(volume)),
		})
	}

	history := core.History{Profile: profile, Bars: core.NormalizeBars(bars)}
	if history.IsEmpty() {
		return core.History{}, fmt.Errorf("%w: %s", core.ErrNotFound, ticker)
	}
	return history, nil
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil || math.IsNaN(*values[i]) {
		return 0, false
	}
	return *values[i], true
}
