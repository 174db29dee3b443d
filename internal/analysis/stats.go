// Package analysis implements the star-absence impact engine: with/without
// splits, performance prediction, line evaluation, opportunity ranking, and
// stake sizing.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/injury-edge/internal/models"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev is the n-1 standard deviation; 0 when fewer than two samples.
func sampleStdDev(values []float64) float64 {
	return math.Sqrt(sampleVariance(values))
}

func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return sum / float64(len(values)-1)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// tail returns the last n values (all of them when fewer than n exist).
func tail(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// statValues extracts the defined values of one stat from a record slice,
// preserving record order.
func statValues(records []models.GameRecord, stat string) []float64 {
	out := make([]float64, 0, len(records))
	for i := range records {
		if v, ok := records[i].StatValue(stat); ok {
			out = append(out, v)
		}
	}
	return out
}

// Baseline summarizes a player's recent form over their most recent lastN
// games with a defined stat value (15 when lastN <= 0). Records must be in
// chronological order, as the store returns them.
func Baseline(records []models.GameRecord, stat string, lastN int) (*models.Baseline, error) {
	if !models.IsKnownStat(stat) {
		return nil, fmt.Errorf("stat %q: %w", stat, models.ErrUnknownStat)
	}
	if lastN <= 0 {
		lastN = 15
	}
	values := tail(statValues(records, stat), lastN)
	if len(values) == 0 {
		return nil, models.ErrInsufficientData
	}
	return &models.Baseline{
		Mean:       mean(values),
		Median:     median(values),
		StdDev:     sampleStdDev(values),
		SampleSize: len(values),
	}, nil
}
