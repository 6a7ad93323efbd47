package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"gocredible/internal"
)

// Loader reads labeled tables from Excel or CSV files
type Loader struct {
	filePath    string
	fileType    string // "xlsx" or "csv"
	labelColumn string
	logger      *internal.Logger
}

// NewLoader creates a loader; the file type follows the extension
func NewLoader(filePath, labelColumn string) *Loader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &Loader{
		filePath:    filePath,
		fileType:    fileType,
		labelColumn: labelColumn,
		logger:      internal.DefaultLogger.With("dataset"),
	}
}

// Load reads the file into a Dataset
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	l.logger.Debug("reading %s file: %s", l.fileType, l.filePath)

	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(l.fileType), l.filePath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows [][]string
	var err error
	start := time.Now()
	switch l.fileType {
	case "csv":
		rows, err = l.readCSV()
	case "xlsx":
		rows, err = l.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", l.fileType)
	}
	if err != nil {
		return nil, err
	}
	l.logger.Info("read %d rows from %s in %.2fms", len(rows), l.filePath, float64(time.Since(start).Nanoseconds())/1e6)

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s must have a header row and at least one data row", l.filePath)
	}
	return l.processRows(rows)
}

// readExcel reads the first sheet of the workbook
func (l *Loader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

func (l *Loader) readCSV() ([][]string, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows splits the label column from the numeric feature columns.
// Integer labels are kept as-is; any other label text is mapped to class
// indices in order of first appearance.
func (l *Loader) processRows(rows [][]string) (*Dataset, error) {
	header := rows[0]
	labelIdx := -1
	featureNames := make([]string, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if strings.EqualFold(h, l.labelColumn) {
			labelIdx = i
			continue
		}
		featureNames = append(featureNames, h)
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("label column %q not found in header", l.labelColumn)
	}
	if len(featureNames) == 0 {
		return nil, fmt.Errorf("no feature columns besides %q", l.labelColumn)
	}

	data := rows[1:]
	features := mat.NewDense(len(data), len(featureNames), nil)
	rawLabels := make([]string, len(data))

	for r, row := range data {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		c := 0
		for i, cell := range row[:len(header)] {
			if i == labelIdx {
				rawLabels[r] = strings.TrimSpace(cell)
				continue
			}
			v, err := parseNumber(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r+2, featureNames[c], err)
			}
			features.Set(r, c, v)
			c++
		}
	}

	labels, classNames, err := encodeLabels(rawLabels)
	if err != nil {
		return nil, err
	}

	ds, err := New(filepath.Base(l.filePath), featureNames, features, labels)
	if err != nil {
		return nil, err
	}
	ds.ClassNames = classNames
	return ds, nil
}

func parseNumber(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	return strconv.ParseFloat(cell, 64)
}

func encodeLabels(raw []string) ([]int, []string, error) {
	labels := make([]int, len(raw))
	numeric := true
	for i, s := range raw {
		if s == "" {
			return nil, nil, fmt.Errorf("row %d has an empty label", i+2)
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			numeric = false
			break
		}
		labels[i] = v
	}
	if numeric {
		return labels, nil, nil
	}

	index := make(map[string]int)
	var names []string
	for i, s := range raw {
		idx, ok := index[s]
		if !ok {
			idx = len(names)
			index[s] = idx
			names = append(names, s)
		}
		labels[i] = idx
	}
	return labels, names, nil
}
