package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/posetools/trainset/internal/dataset"
	"github.com/posetools/trainset/internal/project"
	"github.com/posetools/trainset/internal/split"
)

// #region main

type splitOutput struct {
	TrainIndices []int `json:"train_indices"`
	TestIndices  []int `json:"test_indices"`
}

func main() {
	configPath := flag.String("config", "", "path to the project config.yaml")
	trainSetIndex := flag.Int("trainset-index", 0, "fraction index (uniform) or held-out video position (leave-one-out)")
	uniform := flag.Bool("uniform", true, "draw a uniform random split; false holds one video's folder out as test")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a summary line")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: mergesplit --config path/to/config.yaml [--trainset-index N] [--uniform=false] [--json]")
		os.Exit(2)
	}

	cfg, err := project.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load project: %v\n", err)
		os.Exit(1)
	}

	train, test, err := dataset.MergeAndSplit(cfg, *trainSetIndex, *uniform)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		data, err := json.MarshalIndent(splitOutput{TrainIndices: train, TestIndices: test}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal json: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}
	// The padded lists are what feeds back into dataset creation; the
	// summary reports real frames only.
	nTrain, nTest := len(split.StripPadding(train)), len(split.StripPadding(test))
	fmt.Printf("merged %d frames: %d train / %d test\n", nTrain+nTest, nTrain, nTest)
}

// #endregion main
