// Package poseconfig emits the per-engine training and testing parameter
// files for a materialized shuffle, derived from a template configuration
// with selected keys overridden and others deliberately dropped.
package poseconfig

import "fmt"

// #region engine

// Engine selects which model-training backend a shuffle targets.
type Engine string

const (
	EngineTensorFlow Engine = "tensorflow"
	EnginePyTorch    Engine = "pytorch"
)

// ParseEngine maps a user-supplied engine name to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case EngineTensorFlow, EnginePyTorch:
		return Engine(s), nil
	case "":
		return EngineTensorFlow, nil
	default:
		return "", fmt.Errorf("unknown engine %q (want %q or %q)",
			s, EngineTensorFlow, EnginePyTorch)
	}
}

// PoseCfgName is the filename of the engine's training configuration.
func (e Engine) PoseCfgName() string {
	if e == EnginePyTorch {
		return "pytorch_config.yaml"
	}
	return "pose_cfg.yaml"
}

// ModelFolderPrefix is the top-level directory the engine's trained models
// live under.
func (e Engine) ModelFolderPrefix() string {
	if e == EnginePyTorch {
		return "dlc-models-pytorch"
	}
	return "dlc-models"
}

// Augmenters lists the augmentation strategies the engine supports; the
// first entry is the default.
func (e Engine) Augmenters() []string {
	if e == EnginePyTorch {
		return []string{"albumentations"}
	}
	return []string{"imgaug", "default", "scalecrop", "tensorpack", "deterministic"}
}

// SupportsAugmenter reports whether name is usable with the engine.
func (e Engine) SupportsAugmenter(name string) bool {
	for _, a := range e.Augmenters() {
		if a == name {
			return true
		}
	}
	return false
}

// #endregion engine
