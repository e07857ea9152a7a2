package poseconfig

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// #region helpers

const template = `net_type: resnet_50
dataset: placeholder
num_joints: 0
global_scale: 0.8
location_refinement: true
locref_stdev: 7.2801
rotation: 25
rotratio: 0.4
pre_resize: []
crop_size: [400, 400]
max_shift: 0.4
crop_sampling: hybrid
intermediate_supervision: false
`

func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pose_cfg.yaml")
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	doc := make(map[string]any)
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return doc
}

// #endregion helpers

// #region train-config-tests

func TestMakeTrainConfigAppliesOverrides(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "train", "pose_cfg.yaml")
	doc, err := MakeTrainConfig(writeTemplate(t), dest, map[string]any{
		"net_type":   "resnet_101",
		"num_joints": 4,
		"dataset":    "training-datasets/data.json",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["net_type"] != "resnet_101" {
		t.Errorf("override not applied, net_type = %v", doc["net_type"])
	}

	onDisk := readYAML(t, dest)
	if onDisk["num_joints"] != 4 {
		t.Errorf("expected num_joints 4 on disk, got %v", onDisk["num_joints"])
	}
	if onDisk["intermediate_supervision"] != false {
		t.Error("untouched template keys should survive")
	}
}

func TestMakeTrainConfigDropsKeys(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "pose_cfg.yaml")
	doc, err := MakeTrainConfig(writeTemplate(t), dest, nil, DropsForAugmenter("scalecrop"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"rotation", "rotratio", "pre_resize", "crop_size", "max_shift", "crop_sampling"} {
		if _, ok := doc[key]; ok {
			t.Errorf("key %q should have been dropped", key)
		}
	}
}

func TestDropsForAugmenterKeepsRotationByDefault(t *testing.T) {
	drops := DropsForAugmenter("imgaug")
	for _, key := range drops {
		if key == "rotation" || key == "rotratio" {
			t.Errorf("imgaug should not drop %q", key)
		}
	}
}

// #endregion train-config-tests

// #region test-config-tests

func TestMakeTestConfigProjectsKeys(t *testing.T) {
	dir := t.TempDir()
	trainDest := filepath.Join(dir, "train", "pose_cfg.yaml")
	doc, err := MakeTrainConfig(writeTemplate(t), trainDest, map[string]any{
		"dataset":      "d.json",
		"init_weights": "/weights/resnet_v1_50.ckpt",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testDest := filepath.Join(dir, "test", "pose_cfg.yaml")
	if err := MakeTestConfig(doc, TestConfigKeys, testDest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := readYAML(t, testDest)
	if got["scoremap_dir"] != "test" {
		t.Errorf("scoremap_dir = %v, want test", got["scoremap_dir"])
	}
	if got["dataset"] != "d.json" {
		t.Errorf("dataset = %v, want d.json", got["dataset"])
	}
	if _, ok := got["rotation"]; ok {
		t.Error("test config must only carry the projected keys")
	}
	if _, ok := got["num_joints"]; !ok {
		t.Error("expected num_joints in test config")
	}
}

// #endregion test-config-tests

// #region engine-tests

func TestParseEngine(t *testing.T) {
	if e, err := ParseEngine(""); err != nil || e != EngineTensorFlow {
		t.Errorf("empty engine should default to tensorflow, got %v, %v", e, err)
	}
	if e, err := ParseEngine("pytorch"); err != nil || e != EnginePyTorch {
		t.Errorf("ParseEngine(pytorch) = %v, %v", e, err)
	}
	if _, err := ParseEngine("caffe"); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestEngineConventions(t *testing.T) {
	if EngineTensorFlow.PoseCfgName() != "pose_cfg.yaml" {
		t.Error("wrong tensorflow config name")
	}
	if EnginePyTorch.PoseCfgName() != "pytorch_config.yaml" {
		t.Error("wrong pytorch config name")
	}
	if EngineTensorFlow.ModelFolderPrefix() == EnginePyTorch.ModelFolderPrefix() {
		t.Error("engine model folders must not collide")
	}
	if !EngineTensorFlow.SupportsAugmenter("scalecrop") {
		t.Error("tensorflow should support scalecrop")
	}
	if EnginePyTorch.SupportsAugmenter("scalecrop") {
		t.Error("pytorch should not support scalecrop")
	}
}

// #endregion engine-tests
