package stocklens

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/indicator"
	"github.com/raykavin/stocklens/pkg/logger/zerolog"
	"github.com/raykavin/stocklens/pkg/plot"
	"github.com/raykavin/stocklens/pkg/storage"
	"github.com/stretchr/testify/require"
)

var clock = func() time.Time { return time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC) }

type fakeFeeder struct {
	history core.History
	err     error
	tickers []string
}

func (f *fakeFeeder) History(_ context.Context, ticker string) (core.History, error) {
	f.tickers = append(f.tickers, ticker)
	return f.history, f.err
}

type recordingNotifier struct {
	statuses []core.Status
}

func (r *recordingNotifier) Notify(status core.Status) {
	r.statuses = append(r.statuses, status)
}

func toyotaHistory(n int) core.History {
	start := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	for i := range bars {
		c := 2500 + float64(i%9)*7 - float64(i%4)*5
		bars[i] = core.Bar{
			Time: start.AddDate(0, 0, i), Open: c - 3, High: c + 10, Low: c - 10, Close: c,
			Volume: int64(1_000_000 + i),
		}
	}
	return core.History{Profile: core.NewSecurityProfile("7203.T", "Toyota Motor"), Bars: bars}
}

func newTestAnalyzer(t *testing.T, feeder core.Feeder, options ...Option) *Analyzer {
	t.Helper()
	options = append([]Option{WithLogger(zerolog.Nop()), WithClock(clock)}, options...)
	analyzer, err := NewAnalyzer(feeder, options...)
	require.NoError(t, err)
	return analyzer
}

func TestAnalyzer_Success(t *testing.T) {
	feeder := &fakeFeeder{history: toyotaHistory(120)}
	notifier := &recordingNotifier{}
	statuses, err := storage.FromMemory(10)
	require.NoError(t, err)
	defer statuses.Close()

	analyzer := newTestAnalyzer(t, feeder, WithStorage(statuses), WithNotifier(notifier))

	render, err := analyzer.Analyze(context.Background(), " 7203.t")
	require.NoError(t, err)
	require.Equal(t, []string{"7203.T"}, feeder.tickers)

	require.Equal(t, "Toyota Motor - Analysis", render.Layout.Title)
	require.Equal(t, plot.DefaultWindowSize, render.Layout.Sessions())
	require.Equal(t, []int{3, 1, 1}, render.Layout.HeightRatios())

	last := feeder.history.Bars[119]
	require.False(t, render.Status.Failed)
	require.Equal(t, last.Close, render.Status.LatestClose)
	require.True(t, render.Status.LatestRSI.IsDefined())
	require.Equal(t, clock(), render.Status.ComputedAt)
	require.Contains(t, render.Status.String(), "[7203.T] Toyota Motor | Close: ")
	require.Contains(t, render.Status.String(), "| RSI: ")

	require.Equal(t, []core.Status{render.Status}, notifier.statuses)
	recorded, err := statuses.Statuses(5)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	require.Equal(t, "7203.T", recorded[0].Ticker)
}

func TestAnalyzer_BlankProfileFallsBackToTicker(t *testing.T) {
	history := toyotaHistory(40)
	history.Profile = core.SecurityProfile{}

	render, err := newTestAnalyzer(t, &fakeFeeder{history: history}).Analyze(context.Background(), "7203.t")
	require.NoError(t, err)
	require.Equal(t, "7203.T - Analysis", render.Layout.Title)
	require.Equal(t, "7203.T", render.Status.Ticker)
	require.Equal(t, "7203.T", render.Status.DisplayName)
	require.Contains(t, render.Status.String(), "[7203.T] 7203.T | Close: ")
}

func TestAnalyzer_FetchFailure(t *testing.T) {
	for name, fetchErr := range map[string]error{
		"unknown ticker": core.ErrNotFound,
		"network":        errors.New("dial tcp: i/o timeout"),
	} {
		t.Run(name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			analyzer := newTestAnalyzer(t, &fakeFeeder{err: fetchErr}, WithNotifier(notifier))

			render, err := analyzer.Analyze(context.Background(), "ZZZZ")
			require.ErrorIs(t, err, core.ErrNotFound)
			require.True(t, render.Status.Failed)
			require.Equal(t, "Fetch Failed", render.Status.String())
			require.Empty(t, render.Layout.Panels)
			require.Len(t, notifier.statuses, 1)
		})
	}

	t.Run("empty history", func(t *testing.T) {
		analyzer := newTestAnalyzer(t, &fakeFeeder{history: core.History{}})
		_, err := analyzer.Analyze(context.Background(), "ZZZZ")
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestAnalyzer_EmptyTicker(t *testing.T) {
	feeder := &fakeFeeder{history: toyotaHistory(10)}
	notifier := &recordingNotifier{}
	analyzer := newTestAnalyzer(t, feeder, WithNotifier(notifier))

	_, err := analyzer.Analyze(context.Background(), "   ")
	require.ErrorIs(t, err, core.ErrEmptyTicker)
	require.Empty(t, feeder.tickers)
	require.Empty(t, notifier.statuses)
}

func TestAnalyzer_MovingAveragesVariant(t *testing.T) {
	analyzer := newTestAnalyzer(t, &fakeFeeder{history: toyotaHistory(100)},
		WithIndicators(indicator.MovingAverages()), WithWindowSize(30))

	render, err := analyzer.Analyze(context.Background(), "7203.T")
	require.NoError(t, err)
	require.Equal(t, []int{3, 1}, render.Layout.HeightRatios())
	require.Equal(t, 30, render.Layout.Sessions())
	require.False(t, render.Status.LatestRSI.IsDefined())
	require.NotContains(t, render.Status.String(), "RSI")
}

func TestAnalyzer_ShortHistory(t *testing.T) {
	analyzer := newTestAnalyzer(t, &fakeFeeder{history: toyotaHistory(10)})

	render, err := analyzer.Analyze(context.Background(), "7203.T")
	require.NoError(t, err)
	require.Equal(t, 10, render.Layout.Sessions())

	price, ok := render.Layout.Panel(plot.PanelPrice)
	require.True(t, ok)
	_, ok = price.Find(plot.SeriesMAMid)
	require.False(t, ok)
	require.NotContains(t, render.Status.String(), "RSI")
}

func TestAnalyzer_FlatHistoryOmitsRSI(t *testing.T) {
	history := toyotaHistory(40)
	for i := range history.Bars {
		history.Bars[i].Close = 2500
		history.Bars[i].Open = 2500
	}

	render, err := newTestAnalyzer(t, &fakeFeeder{history: history}).Analyze(context.Background(), "7203.T")
	require.NoError(t, err)
	require.Equal(t, core.Indeterminate, render.Status.LatestRSI.State())
	require.Equal(t, "[7203.T] Toyota Motor | Close: 2500.0 (09:30:00)", render.Status.String())
}

func TestNewAnalyzer_Validation(t *testing.T) {
	_, err := NewAnalyzer(nil)
	require.Error(t, err)

	config := indicator.Full()
	config.MidPeriod = 0
	_, err = NewAnalyzer(&fakeFeeder{}, WithIndicators(config))
	require.Error(t, err)
}
