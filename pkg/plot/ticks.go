package plot

import "time"

const (
	// MaxTicks bounds the number of labelled positions on the time axis
	MaxTicks = 10

	tickLayout = "2006-01-02"
)

// ticks spreads at most limit ticks evenly over the sessions, starting at the first one
func ticks(times []time.Time, limit int) []Tick {
	if len(times) == 0 {
		return []Tick{}
	}
	if limit <= 0 || limit > MaxTicks {
		limit = MaxTicks
	}

	step := (len(times) + limit - 1) / limit
	result := make([]Tick, 0, limit)
	for i := 0; i < len(times); i += step {
		result = append(result, Tick{
			Index: i,
			Time:  times[i],
			Label: times[i].Format(tickLayout),
		})
	}

	return result
}
