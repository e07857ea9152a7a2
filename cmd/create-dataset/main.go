package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/posetools/trainset/internal/dataset"
	"github.com/posetools/trainset/internal/poseconfig"
	"github.com/posetools/trainset/internal/project"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to the project config.yaml")
	numShuffles := flag.Int("num-shuffles", 0, "auto-allocate N shuffle indices")
	indices := flag.String("indices", "", "comma-separated explicit shuffle indices (overrides --num-shuffles)")
	engineName := flag.String("engine", "", "training engine: tensorflow (default) or pytorch")
	netType := flag.String("net-type", "", "network architecture (default from project config)")
	augmenter := flag.String("augmenter", "", "augmentation pipeline (default per engine)")
	template := flag.String("template", "", "override the pose config template path")
	initWeights := flag.String("init-weights", "", "override the initial weights checkpoint")
	userFeedback := flag.Bool("userfeedback", false, "check for collisions and confirm before overwriting")
	yes := flag.Bool("yes", false, "approve overwrites without prompting")
	fromShuffle := flag.Int("from-shuffle", -1, "copy the train/test assignment of this existing shuffle")
	fromTrainSetIndex := flag.Int("from-trainset-index", 0, "which configured train fraction the copied shuffle was created at")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: create-dataset --config path/to/config.yaml [--num-shuffles N | --indices 1,2,3] [--engine name] [--net-type name] [--augmenter name] [--from-shuffle N] [--userfeedback] [--yes]")
		os.Exit(2)
	}

	cfg, err := project.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load project: %v\n", err)
		os.Exit(1)
	}

	engine, err := poseconfig.ParseEngine(*engineName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	opts := dataset.Options{
		NumShuffles:   *numShuffles,
		Engine:        engine,
		NetType:       *netType,
		AugmenterType: *augmenter,
		TemplatePath:  *template,
		InitWeights:   *initWeights,
		UserFeedback:  *userFeedback,
	}
	if *indices != "" {
		opts.Shuffles, err = parseIndices(*indices)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if *yes {
		opts.Confirm = dataset.ApproveAll()
	}

	var results []dataset.Result
	if *fromShuffle >= 0 {
		results, err = dataset.CreateFromExistingSplit(cfg, *fromShuffle, *fromTrainSetIndex, opts)
	} else {
		results, err = dataset.Create(cfg, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, res := range results {
		fmt.Printf("shuffle %d: %d train / %d test frames at %d%%\n",
			res.Shuffle, len(res.TrainIndices), len(res.TestIndices), int(res.TrainFraction*100+0.5))
	}
}

// #endregion main

// #region parse

func parseIndices(s string) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(s, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("bad shuffle index %q", tok)
		}
		out = append(out, idx)
	}
	return out, nil
}

// #endregion parse
