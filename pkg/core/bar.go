package core

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Bar represents one daily trading session with OHLCV data
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// IsUp reports whether the session closed at or above its open.
// A flat session counts as up.
func (b Bar) IsUp() bool { return b.Close >= b.Open }

// Session returns the calendar date of the bar, truncated to midnight UTC
func (b Bar) Session() time.Time {
	y, m, d := b.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ToSlice converts a bar to a string slice with the given decimal precision
func (b Bar) ToSlice(precision int) []string {
	return []string{
		b.Session().Format(time.DateOnly),
		strconv.FormatFloat(b.Open, 'f', precision, 64),
		strconv.FormatFloat(b.Close, 'f', precision, 64),
		strconv.FormatFloat(b.Low, 'f', precision, 64),
		strconv.FormatFloat(b.High, 'f', precision, 64),
		fmt.Sprintf("%d", b.Volume),
	}
}

// NormalizeBars returns the bars sorted by time with duplicate sessions removed.
// When two bars share a session date the one with the later timestamp wins.
func NormalizeBars(bars []Bar) []Bar {
	if len(bars) == 0 {
		return nil
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	result := make([]Bar, 0, len(sorted))
	for _, bar := range sorted {
		if n := len(result); n > 0 && result[n-1].Session().Equal(bar.Session()) {
			result[n-1] = bar
			continue
		}
		result = append(result, bar)
	}

	return result
}

// EnrichedBar is a Bar carrying the derived indicator values
type EnrichedBar struct {
	Bar

	MAShort   Value `json:"ma_short"`
	MAMid     Value `json:"ma_mid"`
	MALong    Value `json:"ma_long"`
	BandUpper Value `json:"band_upper"`
	BandLower Value `json:"band_lower"`
	RSI       Value `json:"rsi"`
}
