package profiling

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ColumnProfile summarizes the shape of one numeric column
type ColumnProfile struct {
	Name     string  `json:"name"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Constant bool    `json:"constant"`
}

// ProfileColumn computes summary and shape statistics for data
func ProfileColumn(name string, data []float64) (ColumnProfile, error) {
	p := ColumnProfile{Name: name}
	if len(data) == 0 {
		return p, fmt.Errorf("column %s is empty", name)
	}

	var err error
	if p.Mean, err = stats.Mean(data); err != nil {
		return p, err
	}
	if p.StdDev, err = stats.StandardDeviation(data); err != nil {
		return p, err
	}
	if p.Min, err = stats.Min(data); err != nil {
		return p, err
	}
	if p.Max, err = stats.Max(data); err != nil {
		return p, err
	}
	if p.Median, err = stats.Median(data); err != nil {
		return p, err
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	p.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	p.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	p.Constant = p.Min == p.Max
	if !p.Constant {
		p.Skewness = skewness(data, p.Mean, p.StdDev)
	}
	return p, nil
}

// ProfileFeatures profiles every column of a feature matrix
func ProfileFeatures(names []string, features *mat.Dense) ([]ColumnProfile, error) {
	_, cols := features.Dims()
	if len(names) != cols {
		return nil, fmt.Errorf("have %d names for %d columns", len(names), cols)
	}
	out := make([]ColumnProfile, cols)
	for j := 0; j < cols; j++ {
		p, err := ProfileColumn(names[j], mat.Col(nil, j, features))
		if err != nil {
			return nil, err
		}
		out[j] = p
	}
	return out, nil
}

// CountConstant returns how many profiles describe constant columns
func CountConstant(profiles []ColumnProfile) int {
	n := 0
	for _, p := range profiles {
		if p.Constant {
			n++
		}
	}
	return n
}

// skewness is the adjusted Fisher-Pearson coefficient
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubed := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
	}
	return sumCubed / n * math.Sqrt(n*(n-1)) / (n - 2)
}
