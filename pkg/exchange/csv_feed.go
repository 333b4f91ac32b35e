package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

var (
	ErrInvalidCSV    = errors.New("invalid csv history")
	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}
	requiredHeaders = []string{"time", "open", "close", "low", "high", "volume"}
)

// CSVFeed reads daily history from <dir>/<TICKER>.csv files
type CSVFeed struct {
	Dir      string
	Lookback time.Duration
}

// NewCSVFeed creates a feed over dir. A non-empty lookback such as "365d"
// keeps only the sessions within that duration of the latest one.
func NewCSVFeed(dir, lookback string) (*CSVFeed, error) {
	feed := &CSVFeed{Dir: dir}
	if lookback == "" {
		return feed, nil
	}

	duration, err := str2duration.ParseDuration(lookback)
	if err != nil {
		return nil, fmt.Errorf("invalid lookback %q: %w", lookback, err)
	}
	feed.Lookback = duration
	return feed, nil
}

// History implements core.Feeder
func (c CSVFeed) History(ctx context.Context, ticker string) (core.History, error) {
	ticker, err := core.NormalizeTicker(ticker)
	if err != nil {
		return core.History{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.History{}, err
	}

	file, err := os.Open(filepath.Join(c.Dir, ticker+".csv"))
	if errors.Is(err, os.ErrNotExist) {
		return core.History{}, fmt.Errorf("%w: %s", core.ErrNotFound, ticker)
	}
	if err != nil {
		return core.History{}, err
	}
	defer file.Close()

	bars, name, err := readBars(file)
	if err != nil {
		return core.History{}, fmt.Errorf("%s: %w", ticker, err)
	}

	bars = core.NormalizeBars(bars)
	if c.Lookback > 0 && len(bars) > 0 {
		start := bars[len(bars)-1].Time.Add(-c.Lookback)
		bars = lo.Filter(bars, func(bar core.Bar, _ int) bool {
			return bar.Time.After(start)
		})
	}

	if len(bars) == 0 {
		return core.History{}, fmt.Errorf("%w: %s", core.ErrNotFound, ticker)
	}

	return core.History{
		Profile: core.NewSecurityProfile(ticker, name),
		Bars:    bars,
	}, nil
}

// parseHeaders maps column names to indexes. A first row starting with a
// number is data, so the default column order applies.
func parseHeaders(headers []string) (headerMap map[string]int, hasHeaders bool, err error) {
	if _, err := parseTime(headers[0]); err == nil {
		return defaultHeaderMap, false, nil
	}

	headerMap = lo.SliceToMap(headers, func(header string) (string, int) {
		return strings.ToLower(strings.TrimSpace(header)), lo.IndexOf(headers, header)
	})

	missing := lo.Filter(requiredHeaders, func(header string, _ int) bool {
		_, ok := headerMap[header]
		return !ok
	})
	if len(missing) > 0 {
		return nil, true, fmt.Errorf("%w: missing columns %s", ErrInvalidCSV, strings.Join(missing, ","))
	}

	return headerMap, true, nil
}

func readBars(r io.Reader) ([]core.Bar, string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(lines) == 0 {
		return nil, "", nil
	}

	headerMap, hasHeaders, err := parseHeaders(lines[0])
	if err != nil {
		return nil, "", err
	}
	if hasHeaders {
		lines = lines[1:]
	}

	name := ""
	bars := make([]core.Bar, 0, len(lines))
	for row, line := range lines {
		bar, err := parseBar(line, headerMap)
		if err != nil {
			return nil, "", fmt.Errorf("%w: row %d: %v", ErrInvalidCSV, row+1, err)
		}
		if index, ok := headerMap["name"]; ok && index < len(line) && name == "" {
			name = strings.TrimSpace(line[index])
		}
		bars = append(bars, bar)
	}

	return bars, name, nil
}

func parseBar(line []string, headerMap map[string]int) (core.Bar, error) {
	field := func(name string) (string, error) {
		index := headerMap[name]
		if index >= len(line) {
			return "", fmt.Errorf("missing %s", name)
		}
		return strings.TrimSpace(line[index]), nil
	}

	raw, err := field("time")
	if err != nil {
		return core.Bar{}, err
	}
	timestamp, err := parseTime(raw)
	if err != nil {
		return core.Bar{}, err
	}

	bar := core.Bar{Time: timestamp}
	for name, target := range map[string]*float64{
		"open": &bar.Open, "close": &bar.Close, "low": &bar.Low, "high": &bar.High,
	} {
		raw, err := field(name)
		if err != nil {
			return core.Bar{}, err
		}
		if *target, err = strconv.ParseFloat(raw, 64); err != nil {
			return core.Bar{}, fmt.Errorf("%s: %w", name, err)
		}
	}

	raw, err = field("volume")
	if err != nil {
		return core.Bar{}, err
	}
	volume, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return core.Bar{}, fmt.Errorf("volume: %w", err)
	}
	bar.Volume = int64(math.Round(volume))

	return bar, nil
}

// parseTime accepts unix seconds or a 2006-01-02 date
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}
