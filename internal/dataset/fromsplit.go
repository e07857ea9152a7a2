package dataset

import (
	"fmt"
	"math"

	"github.com/posetools/trainset/internal/ledger"
	"github.com/posetools/trainset/internal/project"
	"github.com/posetools/trainset/internal/split"
)

// #region create-from-existing

// CreateFromExistingSplit materializes new shuffles that reuse the frozen
// train/test assignment of an existing one, so model variants can be
// compared on identical data. The copied indices are sentinel-padded first
// when the stored split's ratio is not exactly the configured fraction.
func CreateFromExistingSplit(cfg *project.Config, fromShuffle, fromTrainSetIndex int, opts Options) ([]Result, error) {
	if fromTrainSetIndex < 0 || fromTrainSetIndex >= len(cfg.TrainingFraction) {
		return nil, fmt.Errorf("train-set index %d out of range: the project lists %d training fractions",
			fromTrainSetIndex, len(cfg.TrainingFraction))
	}
	fraction := math.Round(100*cfg.TrainingFraction[fromTrainSetIndex]) / 100

	led := opts.Ledger
	if led == nil {
		var err error
		led, err = ledger.Open(cfg.LedgerPath())
		if err != nil {
			return nil, err
		}
		defer led.Close()
		opts.Ledger = led
	}

	rec, err := led.GetShuffle(split.Percent(fraction), fromShuffle)
	if err != nil {
		return nil, fmt.Errorf("split to copy (shuffle %d at %d%%) is not in the ledger: %w",
			fromShuffle, split.Percent(fraction), err)
	}

	train := append([]int{}, rec.TrainIndices...)
	test := append([]int{}, rec.TestIndices...)
	nTrain, nTest := len(train), len(test)
	if math.Round(100*float64(nTrain)/float64(nTrain+nTest))/100 != fraction {
		padTrain, padTest, err := split.Pad(nTrain, nTest, fraction)
		if err != nil {
			return nil, err
		}
		for i := 0; i < padTrain; i++ {
			train = append(train, split.Sentinel)
		}
		for i := 0; i < padTest; i++ {
			test = append(test, split.Sentinel)
		}
	}

	numCopies := opts.NumShuffles
	if len(opts.Shuffles) > 0 {
		numCopies = len(opts.Shuffles)
	} else if numCopies == 0 {
		numCopies = 1
		opts.NumShuffles = 1
	}

	opts.TrainIndices = make([][]int, numCopies)
	opts.TestIndices = make([][]int, numCopies)
	for i := 0; i < numCopies; i++ {
		opts.TrainIndices[i] = train
		opts.TestIndices[i] = test
	}
	return Create(cfg, opts)
}

// #endregion create-from-existing
