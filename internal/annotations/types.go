package annotations

import (
	"fmt"
	"path"
)

// #region frame-ref

// FrameRef identifies one labeled frame: the labeled-data folder it came
// from (the video name) and the image filename inside it.
type FrameRef struct {
	Folder string `json:"folder"`
	File   string `json:"file"`
}

// RelPath is the frame's image path relative to the project root, always
// slash-separated.
func (r FrameRef) RelPath() string {
	return path.Join("labeled-data", r.Folder, r.File)
}

func (r FrameRef) less(o FrameRef) bool {
	if r.Folder != o.Folder {
		return r.Folder < o.Folder
	}
	return r.File < o.File
}

// #endregion frame-ref

// #region table

// Table is a row-indexed annotation table: one row per labeled frame, one
// (x, y) column pair per body part. Missing labels are NaN.
type Table struct {
	Scorer    string
	Bodyparts []string
	Refs      []FrameRef
	Values    [][]float64 // len(Refs) rows of 2*len(Bodyparts) values
}

// NumFrames is the number of annotated frames in the table.
func (t *Table) NumFrames() int {
	return len(t.Refs)
}

// Row returns the coordinate values for one frame.
func (t *Table) Row(i int) []float64 {
	return t.Values[i]
}

// #endregion table

// #region missing-annotation

// MissingAnnotationError reports a configured video with no labeled-data
// file. It is recovered at the point of discovery: the source is skipped
// and merging continues, since partially labeled projects are the normal
// state during iterative labeling.
type MissingAnnotationError struct {
	Video string
	Path  string
}

func (e *MissingAnnotationError) Error() string {
	return fmt.Sprintf("video %s has no labeled data (%s not found, perhaps not annotated)", e.Video, e.Path)
}

// #endregion missing-annotation
