package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/stretchr/testify/require"
)

func status(i int) core.Status {
	return core.Status{
		Ticker:      fmt.Sprintf("T%d", i),
		DisplayName: fmt.Sprintf("Company %d", i),
		LatestClose: float64(100 + i),
		LatestRSI:   core.Some(float64(40 + i)),
		ComputedAt:  time.Date(2024, time.May, 1, 9, i, 0, 0, time.UTC),
	}
}

func TestStatusStorage_NewestFirst(t *testing.T) {
	storage, err := FromMemory(10)
	require.NoError(t, err)
	defer storage.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.Save(status(i)))
	}

	statuses, err := storage.Statuses(10)
	require.NoError(t, err)
	require.Equal(t, []core.Status{status(2), status(1), status(0)}, statuses)

	statuses, err = storage.Statuses(2)
	require.NoError(t, err)
	require.Equal(t, []core.Status{status(2), status(1)}, statuses)

	statuses, err = storage.Statuses(0)
	require.NoError(t, err)
	require.Empty(t, statuses)
}

func TestStatusStorage_KeepsNewest(t *testing.T) {
	storage, err := FromMemory(3)
	require.NoError(t, err)
	defer storage.Close()

	for i := 0; i < 12; i++ {
		require.NoError(t, storage.Save(status(i)))
	}

	statuses, err := storage.Statuses(100)
	require.NoError(t, err)
	require.Equal(t, []core.Status{status(11), status(10), status(9)}, statuses)
}

func TestStatusStorage_FailedStatus(t *testing.T) {
	storage, err := FromMemory(0)
	require.NoError(t, err)
	defer storage.Close()

	failed := core.FailedStatus("NOPE", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, storage.Save(failed))

	statuses, err := storage.Statuses(1)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	require.True(t, statuses[0].Failed)
	require.Equal(t, "Fetch Failed", statuses[0].String())
}

func TestStatusStorage_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "statuses.db")

	storage, err := FromFile(file, 5)
	require.NoError(t, err)
	require.NoError(t, storage.Save(status(1)))
	require.NoError(t, storage.Save(status(2)))
	require.NoError(t, storage.Close())

	storage, err = FromFile(file, 5)
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.Save(status(3)))

	statuses, err := storage.Statuses(5)
	require.NoError(t, err)
	require.Equal(t, []core.Status{status(3), status(2), status(1)}, statuses)
}
