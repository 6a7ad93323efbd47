package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"gocredible/domain/core"
)

// Dataset is a labeled feature table
type Dataset struct {
	Name         string
	FeatureNames []string
	ClassNames   []string
	Features     *mat.Dense
	Labels       []int
}

// New validates that features and labels line up
func New(name string, featureNames []string, features *mat.Dense, labels []int) (*Dataset, error) {
	if features == nil || len(labels) == 0 {
		return nil, core.ErrEmptyDataset
	}
	rows, cols := features.Dims()
	if rows != len(labels) {
		return nil, core.NewLengthMismatchError("labels", rows, len(labels))
	}
	if len(featureNames) != cols {
		return nil, core.NewLengthMismatchError("feature names", cols, len(featureNames))
	}
	return &Dataset{
		Name:         name,
		FeatureNames: featureNames,
		Features:     features,
		Labels:       labels,
	}, nil
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// NumFeatures returns the number of feature columns
func (d *Dataset) NumFeatures() int {
	_, cols := d.Features.Dims()
	return cols
}

// NumClasses returns the number of distinct labels
func (d *Dataset) NumClasses() int {
	seen := make(map[int]struct{})
	for _, l := range d.Labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// Subset copies the given rows into a new dataset
func (d *Dataset) Subset(name string, rows []int) *Dataset {
	cols := d.NumFeatures()
	features := mat.NewDense(max(len(rows), 1), cols, nil)
	labels := make([]int, len(rows))
	for i, r := range rows {
		features.SetRow(i, d.Features.RawRowView(r))
		labels[i] = d.Labels[r]
	}
	if len(rows) == 0 {
		features = nil
	}
	return &Dataset{
		Name:         name,
		FeatureNames: d.FeatureNames,
		ClassNames:   d.ClassNames,
		Features:     features,
		Labels:       labels,
	}
}

func (d *Dataset) String() string {
	return fmt.Sprintf("%s (%d rows, %d features, %d classes)", d.Name, d.Len(), d.NumFeatures(), d.NumClasses())
}
