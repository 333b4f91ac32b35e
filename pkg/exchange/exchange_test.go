package exchange

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/logger/zerolog"
	"github.com/stretchr/testify/require"
)

type stubFeeder struct {
	history core.History
	err     error
	calls   int
}

func (s *stubFeeder) History(context.Context, string) (core.History, error) {
	s.calls++
	return s.history, s.err
}

func writeCSV(t *testing.T, dir, ticker, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ticker+".csv"), []byte(content), 0o600))
}

func TestCSVFeed_History(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "7203.T", `time,open,close,low,high,volume,name
2024-01-05,2550,2540,2530,2580,980000,Toyota Motor
2024-01-04,2500,2555.5,2490,2560,1200000,Toyota Motor
`)

	feed, err := NewCSVFeed(dir, "")
	require.NoError(t, err)

	history, err := feed.History(context.Background(), "7203.t")
	require.NoError(t, err)
	require.Equal(t, core.NewSecurityProfile("7203.T", "Toyota Motor"), history.Profile)
	require.Len(t, history.Bars, 2)

	require.Equal(t, time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC), history.Bars[0].Time)
	require.Equal(t, core.Bar{
		Time: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		Open: 2550, Close: 2540, Low: 2530, High: 2580, Volume: 980000,
	}, history.Bars[1])
}

func TestCSVFeed_Headerless(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAPL", "1704326400,100,101,99,102,5000\n1704412800,101,103,100,104,6000\n")

	feed, err := NewCSVFeed(dir, "")
	require.NoError(t, err)

	history, err := feed.History(context.Background(), "aapl")
	require.NoError(t, err)
	require.Equal(t, "AAPL", history.Profile.DisplayName)
	require.Len(t, history.Bars, 2)
	require.Equal(t, 103.0, history.Bars[1].Close)
}

func TestCSVFeed_Lookback(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAPL", `time,open,close,low,high,volume
2023-01-02,1,1,1,1,1
2023-12-30,1,2,1,2,1
2024-01-05,1,3,1,3,1
`)

	feed, err := NewCSVFeed(dir, "10d")
	require.NoError(t, err)

	history, err := feed.History(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, history.Bars, 2)
	require.Equal(t, 2.0, history.Bars[0].Close)
}

func TestCSVFeed_Errors(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "EMPTY", "time,open,close,low,high,volume\n")
	writeCSV(t, dir, "BROKEN", "time,open,close,low,high,volume\n2024-01-04,abc,1,1,1,1\n")
	writeCSV(t, dir, "COLUMNS", "time,open,close\n2024-01-04,1,1\n")

	feed, err := NewCSVFeed(dir, "")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = feed.History(ctx, "MISSING")
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = feed.History(ctx, "EMPTY")
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = feed.History(ctx, "BROKEN")
	require.ErrorIs(t, err, ErrInvalidCSV)

	_, err = feed.History(ctx, "COLUMNS")
	require.ErrorIs(t, err, ErrInvalidCSV)

	_, err = feed.History(ctx, "")
	require.ErrorIs(t, err, core.ErrEmptyTicker)

	_, err = NewCSVFeed(dir, "soon")
	require.Error(t, err)
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	history := core.History{
		Profile: core.NewSecurityProfile("AAPL", "Apple"),
		Bars:    []core.Bar{{Close: 1}},
	}

	t.Run("first success wins", func(t *testing.T) {
		primary := &stubFeeder{err: core.ErrNotFound}
		secondary := &stubFeeder{history: history}
		third := &stubFeeder{err: errors.New("never asked")}

		fallback, err := NewFallback(zerolog.Nop(),
			Source{Name: "yahoo", Feeder: primary},
			Source{Name: "csv", Feeder: secondary},
			Source{Name: "other", Feeder: third},
		)
		require.NoError(t, err)
		require.Equal(t, []string{"yahoo", "csv", "other"}, fallback.Sources())

		got, err := fallback.History(ctx, "AAPL")
		require.NoError(t, err)
		require.Equal(t, history, got)
		require.Equal(t, 0, third.calls)
	})

	t.Run("all not found", func(t *testing.T) {
		fallback, err := NewFallback(zerolog.Nop(),
			Source{Name: "a", Feeder: &stubFeeder{err: core.ErrNotFound}},
			Source{Name: "b", Feeder: &stubFeeder{err: core.ErrNotFound}},
		)
		require.NoError(t, err)

		_, err = fallback.History(ctx, "AAPL")
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("transport failure surfaces", func(t *testing.T) {
		boom := errors.New("connection reset")
		fallback, err := NewFallback(zerolog.Nop(),
			Source{Name: "a", Feeder: &stubFeeder{err: core.ErrNotFound}},
			Source{Name: "b", Feeder: &stubFeeder{err: boom}},
		)
		require.NoError(t, err)

		_, err = fallback.History(ctx, "AAPL")
		require.ErrorIs(t, err, boom)
	})

	t.Run("empty ticker stops", func(t *testing.T) {
		second := &stubFeeder{history: history}
		fallback, err := NewFallback(zerolog.Nop(),
			Source{Name: "a", Feeder: &stubFeeder{err: core.ErrEmptyTicker}},
			Source{Name: "b", Feeder: second},
		)
		require.NoError(t, err)

		_, err = fallback.History(ctx, "")
		require.ErrorIs(t, err, core.ErrEmptyTicker)
		require.Equal(t, 0, second.calls)
	})

	t.Run("configuration", func(t *testing.T) {
		_, err := NewFallback(zerolog.Nop())
		require.Error(t, err)

		_, err = NewFallback(zerolog.Nop(),
			Source{Name: "a", Feeder: &stubFeeder{}},
			Source{Name: "a", Feeder: &stubFeeder{}},
		)
		require.Error(t, err)
	})
}
