package annotations

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/posetools/trainset/internal/project"
)

// Housekeeping over the per-video annotation files. Each operation walks
// the configured videos, skips the ones without labeled data, and rewrites
// a file only when it actually changed something.

// #region compare

// CompareVideosAndFolders reports the mismatch between config.yaml's video
// list and the folders present under labeled-data: video names with no
// folder, and folders with no video entry.
func CompareVideosAndFolders(cfg *project.Config) (missingFolders, unlistedFolders []string, err error) {
	entries, err := os.ReadDir(filepath.Join(cfg.ProjectPath, "labeled-data"))
	if err != nil {
		return nil, nil, fmt.Errorf("list labeled-data: %w", err)
	}

	folders := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasSuffix(name, "_labeled") || strings.HasPrefix(name, ".") {
			continue
		}
		folders[name] = true
	}

	videos := make(map[string]bool)
	for _, name := range cfg.VideoNames() {
		videos[name] = true
		if !folders[name] {
			missingFolders = append(missingFolders, name)
		}
	}
	for name := range folders {
		if !videos[name] {
			unlistedFolders = append(unlistedFolders, name)
		}
	}
	return missingFolders, unlistedFolders, nil
}

// #endregion compare

// #region drop-duplicates

// DropDuplicates removes duplicate frame rows (keeping the first) from each
// per-video annotation file.
func DropDuplicates(cfg *project.Config) error {
	return rewriteEach(cfg, func(t *Table) bool {
		seen := make(map[FrameRef]bool, len(t.Refs))
		refs := t.Refs[:0]
		vals := t.Values[:0]
		dropped := 0
		for i, ref := range t.Refs {
			if seen[ref] {
				dropped++
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
			vals = append(vals, t.Values[i])
		}
		t.Refs, t.Values = refs, vals
		if dropped > 0 {
			log.Printf("dropped %d duplicate frames", dropped)
		}
		return dropped > 0
	})
}

// #endregion drop-duplicates

// #region drop-unlabeled

// DropUnlabeled removes frames where every coordinate is missing from each
// per-video annotation file.
func DropUnlabeled(cfg *project.Config) error {
	return rewriteEach(cfg, func(t *Table) bool {
		refs := t.Refs[:0]
		vals := t.Values[:0]
		dropped := 0
		for i, row := range t.Values {
			if allNaN(row) {
				dropped++
				continue
			}
			refs = append(refs, t.Refs[i])
			vals = append(vals, row)
		}
		t.Refs, t.Values = refs, vals
		if dropped > 0 {
			log.Printf("dropped %d fully unlabeled frames", dropped)
		}
		return dropped > 0
	})
}

func allNaN(row []float64) bool {
	for _, v := range row {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// #endregion drop-unlabeled

// #region rewrite

func rewriteEach(cfg *project.Config, mutate func(*Table) bool) error {
	for _, video := range cfg.VideoNames() {
		path := CollectedDataPath(cfg, video)
		t, err := ReadCollectedData(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("%v", &MissingAnnotationError{Video: video, Path: path})
				continue
			}
			return err
		}
		if mutate(t) {
			if err := WriteCollectedData(path, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// #endregion rewrite
