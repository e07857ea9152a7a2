// Package shuffle tracks which shuffle indices exist for a project and
// allocates new ones. The on-disk documentation markers written at
// materialization time are the source of truth: a shuffle exists iff its
// marker file is present in the training-set folder.
package shuffle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/posetools/trainset/internal/poseconfig"
	"github.com/posetools/trainset/internal/project"
	"github.com/posetools/trainset/internal/split"
)

// #region options

type query struct {
	trainFraction *float64
	engine        *poseconfig.Engine
}

// Option narrows an ExistingIndices query.
type Option func(*query)

// WithTrainFraction restricts discovery to shuffles created at fraction f.
func WithTrainFraction(f float64) Option {
	return func(q *query) { q.trainFraction = &f }
}

// WithEngine restricts discovery to shuffles whose trained-model folder
// exists for the engine. Requires WithTrainFraction, since the model folder
// name embeds the fraction.
func WithEngine(e poseconfig.Engine) Option {
	return func(q *query) { q.engine = &e }
}

// #endregion options

// #region existing

// ExistingIndices returns the shuffle indices already present for the
// project's current iteration, ascending.
func ExistingIndices(cfg *project.Config, opts ...Option) ([]int, error) {
	var q query
	for _, opt := range opts {
		opt(&q)
	}
	if q.engine != nil && q.trainFraction == nil {
		return nil, &ConfigurationError{Reason: "an engine filter requires a train fraction"}
	}

	entries, err := os.ReadDir(cfg.TrainingSetPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan training-set folder: %w", err)
	}

	var indices []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		idx, ok := parseMarker(e.Name(), q.trainFraction)
		if !ok {
			continue
		}
		if q.engine != nil {
			folder := filepath.Join(cfg.ProjectPath, cfg.ModelFolder(*q.trainFraction, idx, *q.engine))
			if _, err := os.Stat(folder); err != nil {
				continue
			}
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

// parseMarker validates a documentation-marker filename of the form
// <stem>_<pct>shuffle<idx>.json and extracts the shuffle index. Both the
// percentage and the index must be purely numeric.
func parseMarker(name string, trainFraction *float64) (int, bool) {
	if !strings.HasPrefix(name, "Documentation_data") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	stem := strings.TrimSuffix(name, ".json")

	parts := strings.Split(stem, "_")
	suffix := parts[len(parts)-1]
	tokens := strings.Split(suffix, "shuffle")
	if len(tokens) != 2 {
		return 0, false
	}
	if !allDigits(tokens[0]) || !allDigits(tokens[1]) {
		return 0, false
	}
	pct, _ := strconv.Atoi(tokens[0])
	idx, _ := strconv.Atoi(tokens[1])
	if trainFraction != nil && pct != split.Percent(*trainFraction) {
		return 0, false
	}
	return idx, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// #endregion existing

// #region largest

// LargestIndex returns the highest existing shuffle index; ok is false when
// the project has none yet.
func LargestIndex(cfg *project.Config) (idx int, ok bool, err error) {
	indices, err := ExistingIndices(cfg)
	if err != nil {
		return 0, false, err
	}
	if len(indices) == 0 {
		return 0, false, nil
	}
	return indices[len(indices)-1], true, nil
}

// #endregion largest

// #region allocate

// Allocate decides which shuffle indices a dataset-creation call will use.
// Explicit requests are validated against the existing indices when
// checkCollisions is set; a collision fails the whole call with a
// *DuplicateShuffleError. Without explicit requests, numAuto indices are
// allocated as a contiguous run starting one past the current maximum
// (or at 1 for a fresh project).
func Allocate(cfg *project.Config, requested []int, numAuto int, checkCollisions bool) ([]int, error) {
	existing, err := ExistingIndices(cfg)
	if err != nil {
		return nil, err
	}

	if len(requested) > 0 {
		if checkCollisions {
			taken := make(map[int]bool, len(existing))
			for _, idx := range existing {
				taken[idx] = true
			}
			for _, idx := range requested {
				if taken[idx] {
					return nil, &DuplicateShuffleError{Index: idx, Existing: existing}
				}
			}
		}
		return requested, nil
	}

	first := 1
	if len(existing) > 0 {
		first = existing[len(existing)-1] + 1
	}
	run := make([]int, numAuto)
	for i := range run {
		run[i] = first + i
	}
	return run, nil
}

// #endregion allocate
