package plot

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/StudioSol/set"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/logger"
)

// Static assets embedded in the binary
var (
	//go:embed assets
	staticFiles embed.FS
)

// Render is the outcome of one analysis: the layout to draw and the status line
type Render struct {
	Layout PanelLayout `json:"layout"`
	Status core.Status `json:"status"`
}

// Analyzer runs fetch, compute and layout for a ticker.
// On failure the returned Render still carries a failed status.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (Render, error)
}

// Chart serves the ticker entry page and the layouts it draws
type Chart struct {
	analyzing     sync.Mutex
	mu            sync.RWMutex
	port          int
	debug         bool
	defaultTicker string
	analyzer      Analyzer
	history       core.StatusRecorder
	tickers       *set.LinkedHashSetString
	scriptContent string
	indexHTML     *template.Template
	lastUpdate    time.Time
	log           logger.Logger
}

// ChartOption defines a function type for configuring a Chart instance
type ChartOption func(*Chart)

// WithPort sets the HTTP server port
func WithPort(port int) ChartOption {
	return func(chart *Chart) {
		chart.port = port
	}
}

// WithDebug enables debug mode (disables minification)
func WithDebug() ChartOption {
	return func(chart *Chart) {
		chart.debug = true
	}
}

// WithDefaultTicker pre-fills the ticker entry
func WithDefaultTicker(ticker string) ChartOption {
	return func(chart *Chart) {
		chart.defaultTicker = ticker
	}
}

// WithStatusHistory exposes past statuses on /history
func WithStatusHistory(history core.StatusRecorder) ChartOption {
	return func(chart *Chart) {
		chart.history = history
	}
}

// NewChart creates a new chart instance with the provided options
func NewChart(analyzer Analyzer, log logger.Logger, options ...ChartOption) (*Chart, error) {
	chart := &Chart{
		port:          8080,
		defaultTicker: "7203.T",
		analyzer:      analyzer,
		tickers:       set.NewLinkedHashSetString(),
		log:           log,
	}

	for _, option := range options {
		option(chart)
	}

	var err error
	chart.indexHTML, err = template.ParseFS(staticFiles, "assets/chart.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart template: %w", err)
	}

	chartJS, err := staticFiles.ReadFile("assets/chart.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read chart.js: %w", err)
	}

	transpiled := api.Transform(string(chartJS), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !chart.debug,
		MinifyIdentifiers: !chart.debug,
		MinifyWhitespace:  !chart.debug,
	})
	if len(transpiled.Errors) > 0 {
		return nil, fmt.Errorf("chart script failed with: %v", transpiled.Errors)
	}

	chart.scriptContent = string(transpiled.Code)

	return chart, nil
}

// Handler returns the HTTP routes of the chart
func (c *Chart) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", c.handleIndex)
	r.Get("/assets/chart.js", c.handleScript)
	r.Get("/data", c.handleData)
	r.Get("/history", c.handleHistory)
	r.Get("/health", c.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start serves the chart until ctx is cancelled
func (c *Chart) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.port),
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.log.WithError(err).Error("chart server shutdown failed")
		}
	}()

	c.log.Infof("Chart available at http://localhost:%d", c.port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// analyze runs one analysis at a time; the page never overlaps requests
// but several browser tabs might. The known tickers and the last update
// stay readable while a fetch is in flight.
func (c *Chart) analyze(ctx context.Context, ticker string) (Render, error) {
	c.analyzing.Lock()
	defer c.analyzing.Unlock()

	render, err := c.analyzer.Analyze(ctx, ticker)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUpdate = time.Now()
	if err == nil {
		c.tickers.Add(render.Status.Ticker)
	}
	return render, err
}

// knownTickers returns the successfully analyzed tickers in first-seen order
func (c *Chart) knownTickers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickers := make([]string, 0)
	for ticker := range c.tickers.Iter() {
		tickers = append(tickers, ticker)
	}
	return tickers
}
