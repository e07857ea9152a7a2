package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/posetools/trainset/internal/dataset"
	"github.com/posetools/trainset/internal/poseconfig"
	"github.com/posetools/trainset/internal/project"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to the project config.yaml")
	netTypes := flag.String("net-types", "", "comma-separated network architectures to compare")
	augmenters := flag.String("augmenters", "", "comma-separated augmentation pipelines to compare")
	numShuffles := flag.Int("num-shuffles", 1, "independent split draws; every draw covers the full grid")
	trainSetIndex := flag.Int("trainset-index", 0, "which configured train fraction to use")
	engineName := flag.String("engine", "", "training engine: tensorflow (default) or pytorch")
	flag.Parse()

	if *configPath == "" || *netTypes == "" || *augmenters == "" {
		fmt.Fprintln(os.Stderr, "usage: compare-models --config path/to/config.yaml --net-types resnet_50,resnet_101 --augmenters imgaug,scalecrop [--num-shuffles N] [--trainset-index N] [--engine name]")
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

	created, err := dataset.CompareModels(cfg, dataset.CompareOptions{
		TrainSetIndex:  *trainSetIndex,
		NumShuffles:    *numShuffles,
		NetTypes:       splitList(*netTypes),
		AugmenterTypes: splitList(*augmenters),
		Create:         dataset.Options{Engine: engine},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created %d comparison shuffles: %v\n", len(created), created)
}

// #endregion main

// #region parse

func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// #endregion parse
