package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raykavin/stocklens"
	"github.com/raykavin/stocklens/pkg/plot"
	"github.com/spf13/cobra"
)

// Command line flags
var (
	configPath string
	rows       int
	window     int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "stocklens",
		Short:        "Daily stock charts with moving averages, bollinger bands and RSI",
		Version:      "1.0.0",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (e.g. ./stocklens.yaml)")

	rootCmd.AddCommand(buildServeCmd(), buildShowCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive chart page",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func buildShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:     "show <ticker>",
		Short:   "Print the status line and the latest sessions of a ticker",
		Example: "stocklens show 7203.T --rows 5",
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}

	showCmd.Flags().IntVarP(&rows, "rows", "r", 10, "Number of sessions to print")
	showCmd.Flags().IntVarP(&window, "window", "w", 0, "Override chart.window")

	return showCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	options := []plot.ChartOption{
		plot.WithPort(app.config.Chart.Port),
		plot.WithDefaultTicker(app.config.Chart.DefaultTicker),
		plot.WithStatusHistory(app.storage),
	}
	if app.config.Chart.Debug {
		options = append(options, plot.WithDebug())
	}

	chart, err := plot.NewChart(app.analyzer, app.log, options...)
	if err != nil {
		return err
	}

	app.startNotifiers()
	return chart.Start(cmd.Context())
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context(), configPath, withWindow(window))
	if err != nil {
		return err
	}
	defer app.Close()

	render, err := app.analyzer.Analyze(cmd.Context(), args[0])
	if summaryErr := stocklens.Summary(cmd.OutOrStdout(), render, rows); summaryErr != nil {
		return summaryErr
	}
	return err
}
