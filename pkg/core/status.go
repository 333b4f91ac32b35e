package core

import (
	"fmt"
	"strings"
	"time"
)

const statusTimeLayout = "15:04:05"

// Status summarizes the outcome of one analysis for status displays
type Status struct {
	Ticker      string    `json:"ticker"`
	DisplayName string    `json:"display_name"`
	LatestClose float64   `json:"latest_close"`
	LatestRSI   Value     `json:"latest_rsi"`
	ComputedAt  time.Time `json:"computed_at"`
	Failed      bool      `json:"failed"`
}

// FailedStatus returns the status recorded when no history was retrieved
func FailedStatus(ticker string, at time.Time) Status {
	return Status{
		Ticker:      ticker,
		DisplayName: ticker,
		ComputedAt:  at,
		Failed:      true,
	}
}

// String renders the status line
func (s Status) String() string {
	if s.Failed {
		return "Fetch Failed"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s | Close: %.1f", s.Ticker, s.DisplayName, s.LatestClose)
	if s.LatestRSI.IsDefined() {
		fmt.Fprintf(&sb, " | RSI: %s", s.LatestRSI)
	}
	fmt.Fprintf(&sb, " (%s)", s.ComputedAt.Format(statusTimeLayout))

	return sb.String()
}
