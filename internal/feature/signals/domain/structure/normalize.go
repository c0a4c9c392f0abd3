// Package structure derives market-structure features (zones, pools, traps,
// bias, momentum) from a fixed window of recent bars.
package structure

import (
	"errors"

	"signal_backend/internal/feature/signals/domain/entity"
)

// WindowSize is the number of most recent bars every computation looks at.
// It is also the minimum history a symbol needs before it can be analyzed.
const WindowSize = 50

// ErrInsufficientHistory is returned when fewer than WindowSize valid bars
// remain after normalization.
var ErrInsufficientHistory = errors.New("insufficient bar history")

// Normalize drops incomplete bars and returns the most recent WindowSize of
// the remaining ones, oldest first.
func Normalize(bars []entity.Bar) ([]entity.Bar, error) {
	valid := make([]entity.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Valid() {
			valid = append(valid, b)
		}
	}
	if len(valid) < WindowSize {
		return nil, ErrInsufficientHistory
	}
	return valid[len(valid)-WindowSize:], nil
}
