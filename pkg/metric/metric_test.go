package metric

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/raykavin/stocklens/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	require.Equal(t, OutcomeSuccess, Outcome(nil))
	require.Equal(t, OutcomeNotFound, Outcome(fmt.Errorf("yahoo: %w", core.ErrNotFound)))
	require.Equal(t, OutcomeInvalid, Outcome(core.ErrEmptyTicker))
	require.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}

func TestObserveAnalysis(t *testing.T) {
	before := testutil.ToFloat64(analyses.WithLabelValues(OutcomeNotFound))
	ObserveAnalysis(core.ErrNotFound)
	ObserveAnalysis(core.ErrNotFound)
	require.Equal(t, before+2, testutil.ToFloat64(analyses.WithLabelValues(OutcomeNotFound)))
}

func TestObserveFetch(t *testing.T) {
	ObserveFetch(time.Now(), core.History{Bars: make([]core.Bar, 250)}, nil)
	require.Equal(t, 1, testutil.CollectAndCount(fetchLatency))
	require.Equal(t, 1, testutil.CollectAndCount(sessions))
}
