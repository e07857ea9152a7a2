// Package project loads a project's config.yaml and owns the path
// conventions for training-set and model folders.
package project

import (
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// #region config

// Config is the project configuration read from config.yaml.
type Config struct {
	Task        string
	Scorer      string
	Date        string
	ProjectPath string

	// VideoSets is ordered as listed in config.yaml; leave-one-folder-out
	// splitting selects the held-out video by position in this list.
	VideoSets []string

	Bodyparts            []string
	MultiAnimal          bool
	Individuals          []string
	MultiAnimalBodyparts []string
	UniqueBodyparts      []string

	TrainingFraction []float64
	Iteration        int

	DefaultNetType   string
	DefaultAugmenter string
}

// #endregion config

// #region load

// Load reads and validates the project configuration at configPath.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetDefault("default_net_type", "resnet_50")
	v.SetDefault("iteration", 0)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read project config: %w", err)
	}

	cfg := &Config{
		Task:                 v.GetString("task"),
		Scorer:               v.GetString("scorer"),
		Date:                 v.GetString("date"),
		ProjectPath:          v.GetString("project_path"),
		VideoSets:            v.GetStringSlice("video_sets"),
		Bodyparts:            v.GetStringSlice("bodyparts"),
		MultiAnimal:          v.GetBool("multianimalproject"),
		Individuals:          v.GetStringSlice("individuals"),
		MultiAnimalBodyparts: v.GetStringSlice("multianimalbodyparts"),
		UniqueBodyparts:      v.GetStringSlice("uniquebodyparts"),
		TrainingFraction:     floatSlice(v.Get("TrainingFraction")),
		Iteration:            v.GetInt("iteration"),
		DefaultNetType:       v.GetString("default_net_type"),
		DefaultAugmenter:     v.GetString("default_augmenter"),
	}

	if cfg.ProjectPath == "" {
		cfg.ProjectPath = filepath.Dir(configPath)
	}
	if cfg.Scorer == "" {
		return nil, fmt.Errorf("project config %s is missing a scorer", configPath)
	}
	if len(cfg.TrainingFraction) == 0 {
		return nil, fmt.Errorf("project config %s lists no training fractions", configPath)
	}
	return cfg, nil
}

func floatSlice(raw any) []float64 {
	vals, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		switch n := v.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}

// #endregion load

// #region bodyparts

// AllBodyparts returns the body-part names in canonical column order: the
// plain list for single-animal projects, multi-animal parts followed by
// unique parts otherwise.
func (c *Config) AllBodyparts() []string {
	if !c.MultiAnimal {
		return c.Bodyparts
	}
	parts := make([]string, 0, len(c.MultiAnimalBodyparts)+len(c.UniqueBodyparts))
	parts = append(parts, c.MultiAnimalBodyparts...)
	return append(parts, c.UniqueBodyparts...)
}

// #endregion bodyparts

// #region video-names

// VideoNames returns the folder-name stems of the configured videos, in
// config order, with duplicate stems suppressed. A stem listed under more
// than one path is kept once (first occurrence) and a warning is logged,
// so the same labeled data is never merged twice.
func (c *Config) VideoNames() []string {
	names := make([]string, 0, len(c.VideoSets))
	byStem := make(map[string][]string)
	for _, video := range c.VideoSets {
		stem := stemOf(video)
		byStem[stem] = append(byStem[stem], video)
		if len(byStem[stem]) == 1 {
			names = append(names, stem)
		}
	}
	for stem, videos := range byStem {
		if len(videos) > 1 {
			log.Printf("video %q is listed %d times in config.yaml; using it once (entries: %v)",
				stem, len(videos), videos)
		}
	}
	return names
}

// stemOf strips the directory and extension from a video path. Backslash
// separators are handled too: projects labeled on Windows keep their
// original paths in config.yaml.
func stemOf(video string) string {
	s := path.Base(strings.ReplaceAll(video, `\`, "/"))
	return strings.TrimSuffix(s, path.Ext(s))
}

// #endregion video-names
