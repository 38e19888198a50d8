package common

import (
	"fmt"
	"math"
	"os"
)

// FileSize returns the byte length of path
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Size(), nil
}

// KB converts a byte count to kilobytes rounded to two decimals.
// All savings arithmetic is done on these rounded values.
func KB(bytes int64) float64 {
	return Round(float64(bytes)/1024, 2)
}

// Savings returns the percentage saved going from originalKB to optimizedKB,
// rounded to one decimal. Negative when the output grew.
func Savings(originalKB, optimizedKB float64) float64 {
	if originalKB <= 0 {
		return 0
	}
	return Round((1-optimizedKB/originalKB)*100, 1)
}

// Round rounds v half away from zero to the given number of decimals
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
