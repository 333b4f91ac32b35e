package core

import "errors"

var (
	ErrNotFound    = errors.New("ticker not found or no sessions retrieved")
	ErrEmptyTicker = errors.New("empty ticker")
)
