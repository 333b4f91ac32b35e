package plot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/raykavin/stocklens/pkg/core"
)

const defaultHistoryLimit = 20

// dataResponse is the payload of /data
type dataResponse struct {
	Layout     *PanelLayout `json:"layout,omitempty"`
	Status     core.Status  `json:"status"`
	StatusLine string       `json:"status_line"`
	Error      string       `json:"error,omitempty"`
}

// handleHealth reports when the last analysis ran
func (c *Chart) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c.mu.RLock()
	lastUpdate := c.lastUpdate
	c.mu.RUnlock()

	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, "ok %s", lastUpdate.Format("2006-01-02T15:04:05Z07:00")); err != nil {
		c.log.WithError(err).Error("failed to write health status")
	}
}

// handleIndex renders the ticker entry page
func (c *Chart) handleIndex(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		ticker = c.defaultTicker
	}

	w.Header().Set("Content-Type", "text/html")
	err := c.indexHTML.Execute(w, map[string]interface{}{
		"ticker":  ticker,
		"tickers": c.knownTickers(),
	})
	if err != nil {
		c.log.WithError(err).Error("template execution failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleScript serves the transpiled chart script
func (c *Chart) handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	if _, err := fmt.Fprint(w, c.scriptContent); err != nil {
		c.log.WithError(err).Error("failed to write chart script")
	}
}

// handleData analyzes the requested ticker and returns its layout and status
func (c *Chart) handleData(w http.ResponseWriter, r *http.Request) {
	render, err := c.analyze(r.Context(), r.URL.Query().Get("ticker"))

	response := dataResponse{
		Status:     render.Status,
		StatusLine: render.Status.String(),
	}

	code := http.StatusOK
	switch {
	case err == nil:
		response.Layout = &render.Layout
	case errors.Is(err, core.ErrEmptyTicker):
		code = http.StatusBadRequest
		response.Error = "Enter ticker (e.g., 7203.T)"
	case errors.Is(err, core.ErrNotFound):
		code = http.StatusNotFound
		response.Error = "Ticker not found or connection issue."
	default:
		code = http.StatusInternalServerError
		response.Error = err.Error()
	}

	c.writeJSON(w, code, response)
}

// handleHistory returns the most recent statuses
func (c *Chart) handleHistory(w http.ResponseWriter, r *http.Request) {
	if c.history == nil {
		c.writeJSON(w, http.StatusOK, []core.Status{})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	statuses, err := c.history.Statuses(limit)
	if err != nil {
		c.log.WithError(err).Error("failed to read status history")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	c.writeJSON(w, http.StatusOK, statuses)
}

func (c *Chart) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		c.log.WithError(err).Error("JSON encoding failed")
	}
}
