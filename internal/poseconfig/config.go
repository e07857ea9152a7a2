package poseconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// #region test-keys

// TestConfigKeys are the training-config keys carried over into the testing
// configuration.
var TestConfigKeys = []string{
	"dataset",
	"num_joints",
	"all_joints",
	"all_joints_names",
	"net_type",
	"init_weights",
	"global_scale",
	"location_refinement",
	"locref_stdev",
}

// smartCropKeys are multi-animal cropping parameters that never apply to the
// datasets produced here and are always dropped from the template.
var smartCropKeys = []string{"pre_resize", "crop_size", "max_shift", "crop_sampling"}

// #endregion test-keys

// #region drops

// DropsForAugmenter returns the template keys to delete for the chosen
// augmentation strategy. scalecrop has no rotation support, so its rotation
// parameters must not survive into the emitted config.
func DropsForAugmenter(augmenter string) []string {
	drops := append([]string{}, smartCropKeys...)
	if augmenter == "scalecrop" {
		drops = append(drops, "rotation", "rotratio")
	}
	return drops
}

// #endregion drops

// #region make-train

// MakeTrainConfig loads the YAML template, deletes dropped keys, applies
// the overrides and writes the result to destPath. The resulting document
// is returned so the test config can be projected from it.
func MakeTrainConfig(templatePath, destPath string, overrides map[string]any, drops []string) (map[string]any, error) {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("read config template: %w", err)
	}
	doc := make(map[string]any)
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config template %s: %w", templatePath, err)
	}

	for _, key := range drops {
		delete(doc, key)
	}
	for key, val := range overrides {
		doc[key] = val
	}

	if err := writeYAML(destPath, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// #endregion make-train

// #region make-test

// MakeTestConfig projects the training document onto keys and writes the
// testing configuration to destPath. Keys missing from the document are
// skipped rather than emitted as nulls.
func MakeTestConfig(doc map[string]any, keys []string, destPath string) error {
	test := make(map[string]any, len(keys)+1)
	for _, key := range keys {
		if val, ok := doc[key]; ok {
			test[key] = val
		}
	}
	test["scoremap_dir"] = "test"
	return writeYAML(destPath, test)
}

func writeYAML(destPath string, doc map[string]any) error {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(destPath, out, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", destPath, err)
	}
	return nil
}

// #endregion make-test
