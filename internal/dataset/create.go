// Package dataset materializes train/test splits: it merges the labeled
// data, draws or adopts splits, writes the per-shuffle artifacts and emits
// the engine training/testing configurations.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/posetools/trainset/internal/annotations"
	"github.com/posetools/trainset/internal/imagemeta"
	"github.com/posetools/trainset/internal/ledger"
	"github.com/posetools/trainset/internal/poseconfig"
	"github.com/posetools/trainset/internal/project"
	"github.com/posetools/trainset/internal/shuffle"
	"github.com/posetools/trainset/internal/split"
)

// #region split-spec

type splitSpec struct {
	fraction float64
	shuffle  int
	train    []int
	test     []int
}

// #endregion split-spec

// #region create

// Create merges the labeled data and materializes one dataset per
// (train fraction, shuffle) pair. It returns the frozen splits it wrote.
//
// With UserFeedback set, explicit shuffle indices that already exist fail
// the whole call, and pre-existing artifacts require confirmation before
// they are overwritten; a declined confirmation aborts the whole batch.
func Create(cfg *project.Config, opts Options) ([]Result, error) {
	engine := opts.Engine
	if engine == "" {
		engine = poseconfig.EngineTensorFlow
	}
	netType := firstNonEmpty(opts.NetType, cfg.DefaultNetType, "resnet_50")
	augmenter := firstNonEmpty(opts.AugmenterType, cfg.DefaultAugmenter, engine.Augmenters()[0])
	if !engine.SupportsAugmenter(augmenter) {
		if engine == poseconfig.EnginePyTorch {
			log.Printf("augmenter %q is not available for %s; using %s",
				augmenter, engine, engine.Augmenters()[0])
			augmenter = engine.Augmenters()[0]
		} else {
			return nil, fmt.Errorf("invalid augmenter %q for engine %s (available: %v)",
				augmenter, engine, engine.Augmenters())
		}
	}

	if err := os.MkdirAll(cfg.TrainingSetPath(), 0o755); err != nil {
		return nil, fmt.Errorf("create training-set folder: %w", err)
	}

	table, err := annotations.Merge(cfg, cfg.MergedDataPath())
	if err != nil {
		return nil, err
	}

	numAuto := opts.NumShuffles
	if numAuto == 0 && len(opts.Shuffles) == 0 {
		numAuto = 1
	}
	shuffles, err := shuffle.Allocate(cfg, opts.Shuffles, numAuto, opts.UserFeedback)
	if err != nil {
		return nil, err
	}

	splits, err := buildSplits(cfg, table.NumFrames(), shuffles, opts)
	if err != nil {
		return nil, err
	}

	images := opts.Images
	if images == nil {
		images = imagemeta.NewReader(nil)
	}
	confirm := opts.Confirm
	if confirm == nil {
		confirm = PromptPolicy{In: os.Stdin, Out: os.Stdout}
	}

	led := opts.Ledger
	if led == nil {
		led, err = ledger.Open(cfg.LedgerPath())
		if err != nil {
			return nil, err
		}
		defer led.Close()
	}
	runID, err := led.BeginRun("create_training_dataset", map[string]any{
		"engine":    string(engine),
		"net_type":  netType,
		"augmenter": augmenter,
		"shuffles":  shuffles,
	})
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, sp := range splits {
		if len(sp.train) == 0 {
			continue
		}

		modelFolder := filepath.Join(cfg.ProjectPath, cfg.ModelFolder(sp.fraction, sp.shuffle, engine))
		trainCfgPath := filepath.Join(modelFolder, "train", engine.PoseCfgName())
		testCfgPath := filepath.Join(modelFolder, "test", "pose_cfg.yaml")

		overwriteApproved := false
		if opts.UserFeedback {
			if _, err := os.Stat(trainCfgPath); err == nil {
				id := fmt.Sprintf("%dshuffle%d", split.Percent(sp.fraction), sp.shuffle)
				if !confirm.Confirm(id) {
					return nil, fmt.Errorf(
						"shuffle %s already exists and overwriting was declined; pass a different shuffle index", id)
				}
				overwriteApproved = true
			}
		}

		records := buildTrainingRecords(table, sp.train, cfg.ProjectPath, images)

		dataPath := filepath.Join(cfg.ProjectPath, cfg.DataFileName(sp.fraction, sp.shuffle))
		if err := writeJSON(dataPath, map[string]any{"dataset": records}); err != nil {
			return nil, err
		}
		docPath := filepath.Join(cfg.ProjectPath, cfg.DocumentationFileName(sp.fraction, sp.shuffle))
		if err := writeJSON(docPath, documentation{
			TrainFraction: sp.fraction,
			TrainIndices:  sp.train,
			TestIndices:   sp.test,
			NumRecords:    len(records),
		}); err != nil {
			return nil, err
		}

		err = led.RecordShuffle(ledger.ShuffleRecord{
			TrainPct:     split.Percent(sp.fraction),
			Index:        sp.shuffle,
			Engine:       string(engine),
			TrainIndices: sp.train,
			TestIndices:  sp.test,
			NumRecords:   len(records),
			RunID:        runID,
		}, !opts.UserFeedback || overwriteApproved)
		if err != nil {
			return nil, err
		}

		if err := emitConfigs(cfg, opts, engine, netType, augmenter, sp, len(table.Bodyparts), table.Bodyparts, trainCfgPath, testCfgPath); err != nil {
			return nil, err
		}

		log.Printf("created shuffle %d at %d%% train fraction (%d training records)",
			sp.shuffle, split.Percent(sp.fraction), len(records))
		results = append(results, Result{
			TrainFraction: sp.fraction,
			Shuffle:       sp.shuffle,
			TrainIndices:  sp.train,
			TestIndices:   sp.test,
		})
	}
	return results, nil
}

// #endregion create

// #region build-splits

// buildSplits pairs every shuffle with its train/test assignment: fresh
// random draws per configured fraction, or the caller's frozen index lists.
// An invalid configured fraction is logged and skipped so the remaining
// fractions still materialize.
func buildSplits(cfg *project.Config, totalCount int, shuffles []int, opts Options) ([]splitSpec, error) {
	if opts.TrainIndices == nil && opts.TestIndices == nil {
		var splits []splitSpec
		for _, f := range cfg.TrainingFraction {
			for _, sh := range shuffles {
				train, test, err := split.Split(totalCount, f, false)
				if err != nil {
					var frac *split.InvalidFractionError
					if errors.As(err, &frac) {
						log.Printf("skipping train fraction: %v", err)
						continue
					}
					return nil, err
				}
				splits = append(splits, splitSpec{fraction: f, shuffle: sh, train: train, test: test})
			}
		}
		return splits, nil
	}

	if len(opts.TrainIndices) != len(shuffles) || len(opts.TestIndices) != len(shuffles) {
		return nil, fmt.Errorf("got %d train and %d test index lists for %d shuffles; counts must match",
			len(opts.TrainIndices), len(opts.TestIndices), len(shuffles))
	}
	var splits []splitSpec
	for i, sh := range shuffles {
		train, test := opts.TrainIndices[i], opts.TestIndices[i]
		// Padded lengths determine the fraction; the sentinels themselves
		// never reach the materialized artifacts.
		f := math.Round(100*float64(len(train))/float64(len(train)+len(test))) / 100
		log.Printf("using a frozen split with a %d%% train fraction for shuffle %d", split.Percent(f), sh)
		splits = append(splits, splitSpec{
			fraction: f,
			shuffle:  sh,
			train:    split.StripPadding(train),
			test:     split.StripPadding(test),
		})
	}
	return splits, nil
}

// #endregion build-splits

// #region emit-configs

func emitConfigs(
	cfg *project.Config,
	opts Options,
	engine poseconfig.Engine,
	netType, augmenter string,
	sp splitSpec,
	nBodyparts int,
	bodyparts []string,
	trainCfgPath, testCfgPath string,
) error {
	template := opts.TemplatePath
	if template == "" {
		template = filepath.Join(cfg.ProjectPath, engine.PoseCfgName())
	}

	allJoints := make([][]int, nBodyparts)
	for i := range allJoints {
		allJoints[i] = []int{i}
	}
	overrides := map[string]any{
		"dataset":          filepath.ToSlash(cfg.DataFileName(sp.fraction, sp.shuffle)),
		"metadataset":      filepath.ToSlash(cfg.DocumentationFileName(sp.fraction, sp.shuffle)),
		"num_joints":       nBodyparts,
		"all_joints":       allJoints,
		"all_joints_names": bodyparts,
		"project_path":     cfg.ProjectPath,
		"net_type":         netType,
		"dataset_type":     augmenter,
		"engine":           string(engine),
	}
	if opts.InitWeights != "" {
		overrides["init_weights"] = opts.InitWeights
	}

	doc, err := poseconfig.MakeTrainConfig(template, trainCfgPath, overrides, poseconfig.DropsForAugmenter(augmenter))
	if err != nil {
		return err
	}
	return poseconfig.MakeTestConfig(doc, poseconfig.TestConfigKeys, testCfgPath)
}

// #endregion emit-configs

// #region helpers

func writeJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// #endregion helpers
