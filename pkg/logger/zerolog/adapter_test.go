package zerolog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/raykavin/stocklens/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	log, err := New(Options{Level: "debug", JSON: true, Output: &buf})
	require.NoError(t, err)

	log.WithField("ticker", "7203.T").Info("analysis finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "7203.T", entry["ticker"])
	require.Equal(t, "analysis finished", entry["message"])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestLevelConversion(t *testing.T) {
	for _, level := range []logger.Level{logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel} {
		require.Equal(t, level, toLevel(toZerologLevel(level)))
	}
}

func TestFormatCaller(t *testing.T) {
	require.Equal(t, "", formatCaller(nil))
	require.Equal(t, "engine.go", formatCaller("/src/engine.go"))
	require.Contains(t, formatCaller("/src/engine.go:42"), "engine.go")
}
