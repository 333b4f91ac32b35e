package core

import (
	"context"
	"strings"
)

// Feeder retrieves the daily history of a security
type Feeder interface {
	// History returns the bars in ascending order plus the security profile.
	// It returns ErrNotFound when the ticker is unknown or has no sessions.
	History(ctx context.Context, ticker string) (History, error)
}

// Notifier receives the status line of every analysis
type Notifier interface {
	Notify(status Status)
}

// StatusRecorder keeps the statuses of past analyses
type StatusRecorder interface {
	Save(status Status) error
	Statuses(limit int) ([]Status, error)
}

// SecurityProfile identifies the queried instrument
type SecurityProfile struct {
	Ticker      string `json:"ticker"`
	DisplayName string `json:"display_name"`
}

// NewSecurityProfile creates a profile, falling back to the ticker when name is blank
func NewSecurityProfile(ticker, name string) SecurityProfile {
	name = strings.TrimSpace(name)
	if name == "" {
		name = ticker
	}
	return SecurityProfile{Ticker: ticker, DisplayName: name}
}

// History is the raw result of one fetch
type History struct {
	Profile SecurityProfile
	Bars    []Bar
}

// IsEmpty reports whether the history holds no sessions
func (h History) IsEmpty() bool { return len(h.Bars) == 0 }

// NormalizeTicker trims and upper-cases a user supplied ticker
func NormalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", ErrEmptyTicker
	}
	return ticker, nil
}
