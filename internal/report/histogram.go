package report

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Bin is one histogram bucket covering [Lower, Upper)
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram bins samples over [0, 1]. Values outside the range are clamped
// into the edge bins and the last bin includes 1.
func Histogram(samples []float64, bins int) ([]Bin, error) {
	return histogram(samples, bins, 0, 1)
}

// RangeHistogram bins samples between their own minimum and maximum, which
// is more readable for posteriors concentrated in a narrow band
func RangeHistogram(samples []float64, bins int) ([]Bin, error) {
	lo, err := stats.Min(samples)
	if err != nil {
		return nil, fmt.Errorf("histogram range: %w", err)
	}
	hi, err := stats.Max(samples)
	if err != nil {
		return nil, fmt.Errorf("histogram range: %w", err)
	}
	if hi == lo {
		hi = lo + 1e-9
	}
	return histogram(samples, bins, lo, hi)
}

func histogram(samples []float64, bins int, lo, hi float64) ([]Bin, error) {
	if bins < 1 {
		return nil, fmt.Errorf("bins must be positive, got %d", bins)
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, s := range samples {
		if math.IsNaN(s) {
			continue
		}
		i := int((s - lo) / width)
		i = min(max(i, 0), bins-1)
		out[i].Count++
	}
	return out, nil
}
