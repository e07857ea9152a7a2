package project

import (
	"fmt"
	"path/filepath"

	"github.com/posetools/trainset/internal/poseconfig"
	"github.com/posetools/trainset/internal/split"
)

// #region training-set

// TrainingSetFolder returns the training-set directory for the current
// iteration, relative to the project root.
func (c *Config) TrainingSetFolder() string {
	return filepath.Join(
		"training-datasets",
		fmt.Sprintf("iteration-%d", c.Iteration),
		fmt.Sprintf("UnaugmentedDataSet_%s%s", c.Task, c.Date),
	)
}

// TrainingSetPath is TrainingSetFolder resolved against the project root.
func (c *Config) TrainingSetPath() string {
	return filepath.Join(c.ProjectPath, c.TrainingSetFolder())
}

// MergedDataPath is where the canonical merged annotation table lives.
func (c *Config) MergedDataPath() string {
	return filepath.Join(c.TrainingSetPath(), "CollectedData_"+c.Scorer+".csv")
}

// LedgerPath is the sqlite shuffle-metadata ledger for the project.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.ProjectPath, "training-datasets", "trainset-metadata.db")
}

// #endregion training-set

// #region model-folder

// ModelFolder returns the model directory for one shuffle, relative to the
// project root. The prefix depends on the engine, so TensorFlow and PyTorch
// shuffles with the same index do not collide.
func (c *Config) ModelFolder(trainFraction float64, shuffle int, engine poseconfig.Engine) string {
	return filepath.Join(
		engine.ModelFolderPrefix(),
		fmt.Sprintf("iteration-%d", c.Iteration),
		fmt.Sprintf("%s%s-trainset%dshuffle%d",
			c.Task, c.Date, split.Percent(trainFraction), shuffle),
	)
}

// #endregion model-folder

// #region artifacts

// DataFileName is the serialized training structure for one shuffle,
// relative to the project root.
func (c *Config) DataFileName(trainFraction float64, shuffle int) string {
	return filepath.Join(
		c.TrainingSetFolder(),
		fmt.Sprintf("%s_%s%dshuffle%d.json",
			c.Task, c.Scorer, split.Percent(trainFraction), shuffle),
	)
}

// DocumentationFileName is the per-shuffle train/test bookkeeping marker,
// relative to the project root. Its naming convention is what the shuffle
// registry scans for.
func (c *Config) DocumentationFileName(trainFraction float64, shuffle int) string {
	return filepath.Join(
		c.TrainingSetFolder(),
		fmt.Sprintf("Documentation_data-%s_%dshuffle%d.json",
			c.Task, split.Percent(trainFraction), shuffle),
	)
}

// #endregion artifacts
