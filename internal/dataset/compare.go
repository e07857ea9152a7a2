package dataset

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/posetools/trainset/internal/project"
	"github.com/posetools/trainset/internal/shuffle"
)

// #region compare-options

// CompareOptions configures a model-comparison batch.
type CompareOptions struct {
	TrainSetIndex  int
	NumShuffles    int
	NetTypes       []string
	AugmenterTypes []string

	// Remaining knobs are forwarded to Create per shuffle.
	Create Options
}

// #endregion compare-options

// #region compare-models

// CompareModels creates shuffles for every (net type, augmenter) pair such
// that all pairs within a draw share the exact same frozen train/test
// assignment, which is what makes the resulting models comparable. It
// returns the shuffle indices created and appends a line per shuffle to
// training_model_comparison.log in the project root.
func CompareModels(cfg *project.Config, opts CompareOptions) ([]int, error) {
	if len(opts.NetTypes) == 0 || len(opts.AugmenterTypes) == 0 {
		return nil, fmt.Errorf("model comparison needs at least one net type and one augmenter type")
	}
	numShuffles := opts.NumShuffles
	if numShuffles == 0 {
		numShuffles = 1
	}

	logPath := filepath.Join(cfg.ProjectPath, "training_model_comparison.log")
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open comparison log: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	base := 0
	if idx, ok, err := shuffle.LargestIndex(cfg); err != nil {
		return nil, err
	} else if ok {
		base = idx + 1
	}

	var created []int
	for draw := 0; draw < numShuffles; draw++ {
		train, test, err := MergeAndSplit(cfg, opts.TrainSetIndex, true)
		if err != nil {
			return created, err
		}
		for iNet, netType := range opts.NetTypes {
			for iAug, augmenter := range opts.AugmenterTypes {
				idx := base + iAug + iNet*len(opts.AugmenterTypes) +
					draw*len(opts.AugmenterTypes)*len(opts.NetTypes)

				createOpts := opts.Create
				createOpts.Shuffles = []int{idx}
				createOpts.NumShuffles = 0
				createOpts.NetType = netType
				createOpts.AugmenterType = augmenter
				createOpts.TrainIndices = [][]int{train}
				createOpts.TestIndices = [][]int{test}

				if _, err := Create(cfg, createOpts); err != nil {
					return created, err
				}
				created = append(created, idx)
				logger.Printf("shuffle index:%d, net_type:%s, augmenter_type:%s, trainset index:%d, frozen draw:%d",
					idx, netType, augmenter, opts.TrainSetIndex, draw)
			}
		}
	}
	return created, nil
}

// #endregion compare-models
