package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/posetools/trainset/internal/annotations"
	"github.com/posetools/trainset/internal/project"
	"github.com/posetools/trainset/internal/split"
)

// #region merge-and-split

// MergeAndSplit merges the annotated datasets (reusing the canonical merged
// table when one is already frozen on disk) and returns a split that can be
// fed back into Create to materialize any number of shuffles over the same
// assignment.
//
// With uniform set, trainSetIndex picks which configured train fraction to
// use and the split is an exact-ratio random draw. Otherwise trainSetIndex
// picks, by position in the configured video list, one labeled-data source
// whose frames all become test while every other source trains.
func MergeAndSplit(cfg *project.Config, trainSetIndex int, uniform bool) (train, test []int, err error) {
	if err := os.MkdirAll(cfg.TrainingSetPath(), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create training-set folder: %w", err)
	}

	table, err := annotations.ReadCollectedData(cfg.MergedDataPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, err
		}
		table, err = annotations.Merge(cfg, cfg.MergedDataPath())
		if err != nil {
			return nil, nil, err
		}
	}

	if uniform {
		if trainSetIndex < 0 || trainSetIndex >= len(cfg.TrainingFraction) {
			return nil, nil, fmt.Errorf("train-set index %d out of range: the project lists %d training fractions",
				trainSetIndex, len(cfg.TrainingFraction))
		}
		return split.Split(table.NumFrames(), cfg.TrainingFraction[trainSetIndex], true)
	}

	names := cfg.VideoNames()
	if trainSetIndex < 0 || trainSetIndex >= len(names) {
		return nil, nil, fmt.Errorf("video index %d out of range: the project lists %d videos",
			trainSetIndex, len(names))
	}
	heldOut := names[trainSetIndex]
	log.Printf("excluding folder %s from training", heldOut)
	train, test = table.SplitByFolder(heldOut)
	return train, test, nil
}

// #endregion merge-and-split
