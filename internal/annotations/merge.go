// Package annotations merges per-video hand-labeled annotation files into
// the single canonical table the split engine indexes into.
package annotations

import (
	"errors"
	"io/fs"
	"log"
	"math"
	"path/filepath"
	"sort"

	"github.com/posetools/trainset/internal/project"
)

// #region collected-path

// CollectedDataPath is the per-video annotation file for the project's
// scorer.
func CollectedDataPath(cfg *project.Config, video string) string {
	return filepath.Join(cfg.ProjectPath, "labeled-data", video, "CollectedData_"+cfg.Scorer+".csv")
}

// #endregion collected-path

// #region merge

// Merge concatenates every configured video's annotation file into one
// table, rows sorted by frame identifier and columns reindexed to the
// config's body-part order. Videos without labeled data are skipped with a
// log line, as is data labeled by a different scorer. With destPath
// non-empty, the merged table is also persisted there as the canonical
// dataset.
func Merge(cfg *project.Config, destPath string) (*Table, error) {
	bodyparts := cfg.AllBodyparts()
	merged := &Table{Scorer: cfg.Scorer, Bodyparts: bodyparts}

	sources := 0
	for _, video := range cfg.VideoNames() {
		path := CollectedDataPath(cfg, video)
		t, err := ReadCollectedData(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("%v", &MissingAnnotationError{Video: video, Path: path})
				continue
			}
			return nil, err
		}
		if t.Scorer != cfg.Scorer {
			log.Printf("%s labeled by scorer %q, not %q; this data will not be merged", path, t.Scorer, cfg.Scorer)
			continue
		}
		t = t.Reindex(bodyparts)
		merged.Refs = append(merged.Refs, t.Refs...)
		merged.Values = append(merged.Values, t.Values...)
		sources++
	}
	if sources == 0 {
		return nil, errors.New("no annotation data found for any configured video")
	}

	merged.sortByRef()
	if destPath != "" {
		if err := WriteCollectedData(destPath, merged); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func (t *Table) sortByRef() {
	perm := make([]int, len(t.Refs))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return t.Refs[perm[a]].less(t.Refs[perm[b]])
	})
	refs := make([]FrameRef, len(perm))
	vals := make([][]float64, len(perm))
	for i, p := range perm {
		refs[i] = t.Refs[p]
		vals[i] = t.Values[p]
	}
	t.Refs, t.Values = refs, vals
}

// #endregion merge

// #region reindex

// Reindex reorders the table's column pairs to match bodyparts; parts the
// table lacks become NaN columns, parts it has beyond the list are dropped.
func (t *Table) Reindex(bodyparts []string) *Table {
	colOf := make(map[string]int, len(t.Bodyparts))
	for i, part := range t.Bodyparts {
		colOf[part] = 2 * i
	}

	out := &Table{Scorer: t.Scorer, Bodyparts: bodyparts, Refs: t.Refs}
	for _, row := range t.Values {
		vals := make([]float64, 2*len(bodyparts))
		for i, part := range bodyparts {
			if col, ok := colOf[part]; ok {
				vals[2*i], vals[2*i+1] = row[col], row[col+1]
			} else {
				vals[2*i], vals[2*i+1] = math.NaN(), math.NaN()
			}
		}
		out.Values = append(out.Values, vals)
	}
	return out
}

// #endregion reindex

// #region split-by-folder

// SplitByFolder partitions the table's row indices by folder identity:
// rows from the named folder become test, all others train. Matching is
// exact equality against the frame ref's folder component.
func (t *Table) SplitByFolder(folder string) (train, test []int) {
	for i, ref := range t.Refs {
		if ref.Folder == folder {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}
	return train, test
}

// #endregion split-by-folder
