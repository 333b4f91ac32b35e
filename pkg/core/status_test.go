package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSecurityProfile(t *testing.T) {
	require.Equal(t, "Toyota Motor", NewSecurityProfile("7203.T", "Toyota Motor").DisplayName)
	require.Equal(t, "7203.T", NewSecurityProfile("7203.T", "  ").DisplayName)
}

func TestNormalizeTicker(t *testing.T) {
	ticker, err := NormalizeTicker("  7203.t ")
	require.NoError(t, err)
	require.Equal(t, "7203.T", ticker)

	_, err = NormalizeTicker("   ")
	require.ErrorIs(t, err, ErrEmptyTicker)
}

func TestStatus_String(t *testing.T) {
	at := time.Date(2024, time.May, 1, 15, 4, 5, 0, time.UTC)

	status := Status{
		Ticker:      "7203.T",
		DisplayName: "Toyota Motor",
		LatestClose: 2850.46,
		LatestRSI:   Some(61.25),
		ComputedAt:  at,
	}
	require.Equal(t, "[7203.T] Toyota Motor | Close: 2850.5 | RSI: 61.2 (15:04:05)", status.String())

	status.LatestRSI = IndeterminateValue(50)
	require.Equal(t, "[7203.T] Toyota Motor | Close: 2850.5 (15:04:05)", status.String())

	require.Equal(t, "Fetch Failed", FailedStatus("XXX", at).String())
}
