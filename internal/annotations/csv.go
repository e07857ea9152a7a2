package annotations

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// CollectedData files are CSV with three header rows (scorer, bodyparts,
// coords) over three index columns ("labeled-data", folder, file) followed
// by alternating x/y value columns. Empty cells are unlabeled points.

// #region read

// ReadCollectedData parses one per-video annotation file.
func ReadCollectedData(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) < 3 {
		return nil, fmt.Errorf("parse %s: missing header rows", path)
	}

	scorerRow, partsRow, coordsRow := rows[0], rows[1], rows[2]
	if scorerRow[0] != "scorer" || partsRow[0] != "bodyparts" || coordsRow[0] != "coords" {
		return nil, fmt.Errorf("parse %s: unexpected header layout", path)
	}
	if len(partsRow) < 5 || (len(partsRow)-3)%2 != 0 {
		return nil, fmt.Errorf("parse %s: body-part columns must come in x/y pairs", path)
	}

	t := &Table{Scorer: scorerRow[3]}
	for col := 3; col < len(partsRow); col += 2 {
		t.Bodyparts = append(t.Bodyparts, partsRow[col])
	}

	nCols := 2 * len(t.Bodyparts)
	for _, row := range rows[3:] {
		if len(row) != nCols+3 {
			return nil, fmt.Errorf("parse %s: row for %q has %d fields, want %d",
				path, row[min(2, len(row)-1)], len(row), nCols+3)
		}
		t.Refs = append(t.Refs, FrameRef{Folder: row[1], File: row[2]})
		vals := make([]float64, nCols)
		for i := 0; i < nCols; i++ {
			vals[i], err = parseCoord(row[3+i])
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
		t.Values = append(t.Values, vals)
	}
	return t, nil
}

func parseCoord(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// #endregion read

// #region write

// WriteCollectedData writes the table as a CollectedData CSV, creating
// parent directories as needed.
func WriteCollectedData(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create annotation dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	nCols := 2 * len(t.Bodyparts)

	scorerRow := headerRow("scorer", nCols)
	partsRow := headerRow("bodyparts", nCols)
	coordsRow := headerRow("coords", nCols)
	for i, part := range t.Bodyparts {
		scorerRow[3+2*i], scorerRow[4+2*i] = t.Scorer, t.Scorer
		partsRow[3+2*i], partsRow[4+2*i] = part, part
		coordsRow[3+2*i], coordsRow[4+2*i] = "x", "y"
	}
	for _, row := range [][]string{scorerRow, partsRow, coordsRow} {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	for i, ref := range t.Refs {
		row := make([]string, nCols+3)
		row[0], row[1], row[2] = "labeled-data", ref.Folder, ref.File
		for j, v := range t.Values[i] {
			if !math.IsNaN(v) {
				row[3+j] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func headerRow(label string, nCols int) []string {
	row := make([]string, nCols+3)
	row[0] = label
	return row
}

// #endregion write
