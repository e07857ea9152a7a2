package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/posetools/trainset/internal/annotations"
	"github.com/posetools/trainset/internal/project"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to the project config.yaml")
	dropDuplicates := flag.Bool("drop-duplicates", false, "rewrite per-video files with duplicate frame rows removed")
	dropUnlabeled := flag.Bool("drop-unlabeled", false, "rewrite per-video files with fully unlabeled rows removed")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: check-labels --config path/to/config.yaml [--drop-duplicates] [--drop-unlabeled]")
		os.Exit(2)
	}

	cfg, err := project.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load project: %v\n", err)
		os.Exit(1)
	}

	missing, unlisted, err := annotations.CompareVideosAndFolders(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, name := range missing {
		fmt.Printf("video %s has no labeled-data folder\n", name)
	}
	for _, name := range unlisted {
		fmt.Printf("labeled-data folder %s has no config.yaml entry\n", name)
	}
	if len(missing) == 0 && len(unlisted) == 0 {
		fmt.Println("videos and labeled-data folders match")
	}

	if *dropDuplicates {
		if err := annotations.DropDuplicates(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if *dropUnlabeled {
		if err := annotations.DropUnlabeled(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main
