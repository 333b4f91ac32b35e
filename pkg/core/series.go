package core

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Series is an ordered sequence of values, oldest first
type Series[T constraints.Ordered] []T

// Values returns the underlying slice of values
func (s Series[T]) Values() []T {
	return s
}

// Length returns the number of values in the series
func (s Series[T]) Length() int {
	return len(s)
}

// Last returns the value at a specified position from the end
// position 0 is the last value, 1 is the second-to-last, etc.
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues returns a slice with the last 'size' values
// If size exceeds the length, returns the entire series
func (s Series[T]) LastValues(size int) Series[T] {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Window returns the 'size' values ending at index i (inclusive)
// and false when fewer than 'size' values are available
func (s Series[T]) Window(i, size int) (Series[T], bool) {
	if size <= 0 || i < size-1 || i >= len(s) {
		return nil, false
	}
	return s[i-size+1 : i+1], true
}

// Dataframe is a columnar view over a bar sequence
type Dataframe struct {
	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time []time.Time
}

// NewDataframe splits bars into columns
func NewDataframe(bars []Bar) *Dataframe {
	df := &Dataframe{
		Close:  make(Series[float64], len(bars)),
		Open:   make(Series[float64], len(bars)),
		High:   make(Series[float64], len(bars)),
		Low:    make(Series[float64], len(bars)),
		Volume: make(Series[float64], len(bars)),
		Time:   make([]time.Time, len(bars)),
	}

	for i, bar := range bars {
		df.Close[i] = bar.Close
		df.Open[i] = bar.Open
		df.High[i] = bar.High
		df.Low[i] = bar.Low
		df.Volume[i] = float64(bar.Volume)
		df.Time[i] = bar.Time
	}

	return df
}

// Length returns the number of rows
func (df Dataframe) Length() int {
	return len(df.Time)
}

// Trailing returns the last 'size' items of a slice, or all of them when
// size is not positive or exceeds the length
func Trailing[T any](items []T, size int) []T {
	if size <= 0 || size >= len(items) {
		return items
	}
	return items[len(items)-size:]
}
