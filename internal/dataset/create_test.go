package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/posetools/trainset/internal/annotations"
	"github.com/posetools/trainset/internal/ledger"
	"github.com/posetools/trainset/internal/project"
	"github.com/posetools/trainset/internal/shuffle"
	"github.com/posetools/trainset/internal/split"
)

// #region fixture

const poseTemplate = `net_type: resnet_50
dataset: placeholder
num_joints: 0
all_joints: []
all_joints_names: []
init_weights: /weights/resnet_v1_50.ckpt
global_scale: 0.8
location_refinement: true
locref_stdev: 7.2801
rotation: 25
rotratio: 0.4
`

// fixtureProject builds a labeled two-video project on disk: frames split
// between vidA and vidB, every frame a 100x100 image with both body parts
// labeled in bounds.
func fixtureProject(t *testing.T, frames int) *project.Config {
	t.Helper()
	cfg := &project.Config{
		Task:             "reaching",
		Scorer:           "mackenzie",
		Date:             "Aug30",
		ProjectPath:      t.TempDir(),
		VideoSets:        []string{"/videos/vidA.avi", "/videos/vidB.avi"},
		Bodyparts:        []string{"nose", "tail"},
		TrainingFraction: []float64{0.8},
	}
	writeVideo(t, cfg, "vidA", 0, frames/2)
	writeVideo(t, cfg, "vidB", frames/2, frames)
	writeFile(t, filepath.Join(cfg.ProjectPath, "pose_cfg.yaml"), poseTemplate)
	return cfg
}

func writeVideo(t *testing.T, cfg *project.Config, folder string, from, to int) {
	t.Helper()
	table := &annotations.Table{Scorer: cfg.Scorer, Bodyparts: cfg.Bodyparts}
	for i := from; i < to; i++ {
		name := frameName(i)
		table.Refs = append(table.Refs, annotations.FrameRef{Folder: folder, File: name})
		table.Values = append(table.Values, []float64{
			float64(10 + i), 20, // nose
			30, float64(40 + i%10), // tail
		})
		writeFrame(t, cfg, folder, name)
	}
	path := filepath.Join(cfg.ProjectPath, "labeled-data", folder, "CollectedData_"+cfg.Scorer+".csv")
	if err := annotations.WriteCollectedData(path, table); err != nil {
		t.Fatalf("write labeled data: %v", err)
	}
}

func frameName(i int) string {
	return fmt.Sprintf("img%03d.png", i)
}

func writeFrame(t *testing.T, cfg *project.Config, folder, name string) {
	t.Helper()
	dir := filepath.Join(cfg.ProjectPath, "labeled-data", folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 100, 100))); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readDoc(t *testing.T, cfg *project.Config, frac float64, idx int) documentation {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(cfg.ProjectPath, cfg.DocumentationFileName(frac, idx)))
	if err != nil {
		t.Fatalf("read documentation marker: %v", err)
	}
	var doc documentation
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("parse documentation marker: %v", err)
	}
	return doc
}

type decline struct{}

func (decline) Confirm(string) bool { return false }

// #endregion fixture

// #region create-tests

func TestCreateMaterializesShuffle(t *testing.T) {
	cfg := fixtureProject(t, 10)
	results, err := Create(cfg, Options{NumShuffles: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Shuffle != 1 || res.TrainFraction != 0.8 {
		t.Errorf("result identity = shuffle %d at %v", res.Shuffle, res.TrainFraction)
	}
	if len(res.TrainIndices) != 8 || len(res.TestIndices) != 2 {
		t.Errorf("split sizes = %d/%d, want 8/2", len(res.TrainIndices), len(res.TestIndices))
	}

	doc := readDoc(t, cfg, 0.8, 1)
	if len(doc.TrainIndices) != 8 || doc.NumRecords != 8 {
		t.Errorf("documentation = %d train indices, %d records", len(doc.TrainIndices), doc.NumRecords)
	}

	for _, rel := range []string{
		cfg.DataFileName(0.8, 1),
		filepath.Join(cfg.ModelFolder(0.8, 1, "tensorflow"), "train", "pose_cfg.yaml"),
		filepath.Join(cfg.ModelFolder(0.8, 1, "tensorflow"), "test", "pose_cfg.yaml"),
	} {
		if _, err := os.Stat(filepath.Join(cfg.ProjectPath, rel)); err != nil {
			t.Errorf("expected artifact %s: %v", rel, err)
		}
	}

	indices, err := shuffle.ExistingIndices(cfg)
	if err != nil {
		t.Fatalf("registry scan: %v", err)
	}
	if !reflect.DeepEqual(indices, []int{1}) {
		t.Errorf("registry sees %v, want [1]", indices)
	}

	led, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer led.Close()
	rec, err := led.GetShuffle(80, 1)
	if err != nil {
		t.Fatalf("ledger lookup: %v", err)
	}
	if len(rec.TrainIndices) != 8 || rec.Engine != "tensorflow" {
		t.Errorf("ledger record = %d train indices, engine %q", len(rec.TrainIndices), rec.Engine)
	}
}

func TestCreateRejectsDuplicateExplicitShuffle(t *testing.T) {
	cfg := fixtureProject(t, 10)
	if _, err := Create(cfg, Options{Shuffles: []int{3}}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := Create(cfg, Options{Shuffles: []int{3}, UserFeedback: true})
	var dup *shuffle.DuplicateShuffleError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateShuffleError, got %v", err)
	}
	if dup.Index != 3 {
		t.Errorf("error names %d, want 3", dup.Index)
	}
}

func TestCreateAbortsWhenOverwriteDeclined(t *testing.T) {
	cfg := fixtureProject(t, 10)
	// A model config exists but no documentation marker, so allocation
	// passes and the confirmation policy is what decides.
	trainCfg := filepath.Join(cfg.ProjectPath, cfg.ModelFolder(0.8, 1, "tensorflow"), "train", "pose_cfg.yaml")
	writeFile(t, trainCfg, "net_type: resnet_50\n")

	_, err := Create(cfg, Options{Shuffles: []int{1}, UserFeedback: true, Confirm: decline{}})
	if err == nil {
		t.Fatal("declined overwrite must abort the batch")
	}
}

func TestCreateSkipsInvalidFraction(t *testing.T) {
	cfg := fixtureProject(t, 10)
	cfg.TrainingFraction = []float64{0.333}

	results, err := Create(cfg, Options{NumShuffles: 1})
	if err != nil {
		t.Fatalf("invalid fraction must be recovered, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no materialized shuffles, got %d", len(results))
	}
}

func TestCreateRejectsBadTensorflowAugmenter(t *testing.T) {
	cfg := fixtureProject(t, 10)
	if _, err := Create(cfg, Options{NumShuffles: 1, AugmenterType: "albumentations"}); err == nil {
		t.Fatal("expected error for an augmenter the engine does not support")
	}
}

// #endregion create-tests

// #region record-filtering-tests

func TestCreateFiltersKeypoints(t *testing.T) {
	cfg := fixtureProject(t, 0)
	nan := math.NaN()
	table := &annotations.Table{
		Scorer:    cfg.Scorer,
		Bodyparts: cfg.Bodyparts,
		Refs: []annotations.FrameRef{
			{Folder: "vidA", File: "img000.png"}, // nose valid, tail out of bounds
			{Folder: "vidA", File: "img001.png"}, // nothing valid: excluded
		},
		Values: [][]float64{
			{50, 50, 120, 40},
			{nan, nan, -3, 10},
		},
	}
	path := filepath.Join(cfg.ProjectPath, "labeled-data", "vidA", "CollectedData_"+cfg.Scorer+".csv")
	if err := annotations.WriteCollectedData(path, table); err != nil {
		t.Fatal(err)
	}
	writeFrame(t, cfg, "vidA", "img000.png")
	writeFrame(t, cfg, "vidA", "img001.png")

	// Force both frames into train.
	results, err := Create(cfg, Options{
		Shuffles:     []int{1},
		TrainIndices: [][]int{{0, 1, split.Sentinel, split.Sentinel}},
		TestIndices:  [][]int{{split.Sentinel}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	raw, err := os.ReadFile(filepath.Join(cfg.ProjectPath, cfg.DataFileName(results[0].TrainFraction, 1)))
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	var payload struct {
		Dataset []TrainingRecord `json:"dataset"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parse data file: %v", err)
	}
	if len(payload.Dataset) != 1 {
		t.Fatalf("expected 1 record (zero-keypoint frame excluded), got %d", len(payload.Dataset))
	}
	rec := payload.Dataset[0]
	if len(rec.Joints) != 1 || rec.Joints[0] != [3]int{0, 50, 50} {
		t.Errorf("joints = %v, want the in-bounds nose only", rec.Joints)
	}
	if rec.Size != [3]int{1, 100, 100} {
		t.Errorf("size = %v, want [1 100 100]", rec.Size)
	}
}

func TestCreateFrozenSplitStripsSentinels(t *testing.T) {
	cfg := fixtureProject(t, 10)
	train := []int{0, 1, 2, 3, split.Sentinel, split.Sentinel, split.Sentinel, split.Sentinel}
	test := []int{4, split.Sentinel}

	results, err := Create(cfg, Options{
		Shuffles:     []int{1},
		TrainIndices: [][]int{train},
		TestIndices:  [][]int{test},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := results[0]
	if res.TrainFraction != 0.8 {
		t.Errorf("fraction recomputed as %v, want 0.8 from the padded lengths", res.TrainFraction)
	}
	if !reflect.DeepEqual(res.TrainIndices, []int{0, 1, 2, 3}) {
		t.Errorf("train = %v, sentinels must be stripped", res.TrainIndices)
	}
	if !reflect.DeepEqual(res.TestIndices, []int{4}) {
		t.Errorf("test = %v, sentinels must be stripped", res.TestIndices)
	}
}

// #endregion record-filtering-tests

// #region merge-split-tests

func TestMergeAndSplitUniformIsExact(t *testing.T) {
	cfg := fixtureProject(t, 10)
	train, test, err := MergeAndSplit(cfg, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := len(train) + len(test)
	if len(train)*100 != 80*total {
		t.Errorf("ratio %d/%d is not exactly 0.8", len(train), total)
	}
}

func TestMergeAndSplitLeaveOneFolderOut(t *testing.T) {
	cfg := fixtureProject(t, 10)
	table, err := annotations.Merge(cfg, "")
	if err != nil {
		t.Fatal(err)
	}

	// Position 1 in the configured video list is vidB.
	train, test, err := MergeAndSplit(cfg, 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(test) != 5 || len(train) != 5 {
		t.Fatalf("split sizes = %d/%d, want 5/5", len(train), len(test))
	}
	for _, i := range test {
		if table.Refs[i].Folder != "vidB" {
			t.Errorf("test row %d comes from %s, want vidB", i, table.Refs[i].Folder)
		}
	}
	for _, i := range train {
		if table.Refs[i].Folder != "vidA" {
			t.Errorf("train row %d comes from %s, want vidA", i, table.Refs[i].Folder)
		}
	}
}

// #endregion merge-split-tests

// #region from-split-tests

func TestCreateFromExistingSplitCopiesAssignment(t *testing.T) {
	cfg := fixtureProject(t, 10)
	first, err := Create(cfg, Options{Shuffles: []int{1}})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	copies, err := CreateFromExistingSplit(cfg, 1, 0, Options{Shuffles: []int{2, 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(copies) != 2 {
		t.Fatalf("expected 2 copies, got %d", len(copies))
	}

	want := append([]int{}, first[0].TrainIndices...)
	sort.Ints(want)
	for _, res := range copies {
		got := append([]int{}, res.TrainIndices...)
		sort.Ints(got)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("shuffle %d train set %v differs from the source %v", res.Shuffle, got, want)
		}
	}
}

func TestCreateFromExistingSplitAcceptsShuffleZero(t *testing.T) {
	cfg := fixtureProject(t, 10)
	// Model-comparison batches start numbering at 0 on a fresh project,
	// so index 0 must be a valid copy source.
	first, err := Create(cfg, Options{Shuffles: []int{0}})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	copies, err := CreateFromExistingSplit(cfg, 0, 0, Options{Shuffles: []int{5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(copies) != 1 || copies[0].Shuffle != 5 {
		t.Fatalf("expected one copy as shuffle 5, got %+v", copies)
	}

	want := append([]int{}, first[0].TrainIndices...)
	got := append([]int{}, copies[0].TrainIndices...)
	sort.Ints(want)
	sort.Ints(got)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("copied train set %v differs from shuffle 0's %v", got, want)
	}
}

// #endregion from-split-tests

// #region compare-tests

func TestCompareModelsSharesSplitAcrossGrid(t *testing.T) {
	cfg := fixtureProject(t, 10)
	created, err := CompareModels(cfg, CompareOptions{
		NetTypes:       []string{"resnet_50", "resnet_101"},
		AugmenterTypes: []string{"imgaug", "scalecrop"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(created, []int{0, 1, 2, 3}) {
		t.Errorf("created = %v, want a contiguous run [0 1 2 3]", created)
	}

	var want []int
	for i, idx := range created {
		doc := readDoc(t, cfg, 0.8, idx)
		got := append([]int{}, doc.TrainIndices...)
		sort.Ints(got)
		if i == 0 {
			want = got
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("shuffle %d has a different train assignment", idx)
		}
	}

	if _, err := os.Stat(filepath.Join(cfg.ProjectPath, "training_model_comparison.log")); err != nil {
		t.Errorf("expected comparison log: %v", err)
	}
}

// #endregion compare-tests
