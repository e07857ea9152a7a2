package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/posetools/trainset/internal/ledger"
	"github.com/posetools/trainset/internal/poseconfig"
	"github.com/posetools/trainset/internal/project"
	"github.com/posetools/trainset/internal/shuffle"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to the project config.yaml")
	fraction := flag.Float64("fraction", 0, "filter to one train fraction, e.g. 0.95")
	engineName := flag.String("engine", "", "filter to shuffles trained with this engine (requires --fraction)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect-shuffles --config path/to/config.yaml [--fraction F] [--engine name] [--json]")
		os.Exit(2)
	}

	cfg, err := project.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load project: %v\n", err)
		os.Exit(1)
	}

	var opts []shuffle.Option
	if *fraction != 0 {
		opts = append(opts, shuffle.WithTrainFraction(*fraction))
	}
	if *engineName != "" {
		engine, err := poseconfig.ParseEngine(*engineName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, shuffle.WithEngine(engine))
	}

	indices, err := shuffle.ExistingIndices(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	records := ledgerRecords(cfg)
	if err := printShuffles(indices, records, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region ledger

// ledgerRecords loads the recorded split history, grouped by shuffle index.
// The same index can exist at several train fractions, so every record is
// kept. A missing or unreadable ledger degrades to marker-only output since
// the on-disk markers stay authoritative.
func ledgerRecords(cfg *project.Config) map[int][]ledger.ShuffleRecord {
	if _, err := os.Stat(cfg.LedgerPath()); err != nil {
		return nil
	}
	led, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open ledger: %v\n", err)
		return nil
	}
	defer led.Close()

	recs, err := led.ListShuffles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read ledger: %v\n", err)
		return nil
	}
	out := make(map[int][]ledger.ShuffleRecord, len(recs))
	for _, rec := range recs {
		out[rec.Index] = append(out[rec.Index], rec)
	}
	return out
}

// #endregion ledger

// #region output

type shuffleRow struct {
	Index      int    `json:"index"`
	TrainPct   int    `json:"train_pct,omitempty"`
	Engine     string `json:"engine,omitempty"`
	NumTrain   int    `json:"num_train,omitempty"`
	NumTest    int    `json:"num_test,omitempty"`
	NumRecords int    `json:"num_records,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func printShuffles(indices []int, records map[int][]ledger.ShuffleRecord, jsonOut bool) error {
	rows := make([]shuffleRow, 0, len(indices))
	for _, idx := range indices {
		recs, ok := records[idx]
		if !ok {
			rows = append(rows, shuffleRow{Index: idx})
			continue
		}
		for _, rec := range recs {
			row := shuffleRow{
				Index:      idx,
				TrainPct:   rec.TrainPct,
				Engine:     rec.Engine,
				NumTrain:   len(rec.TrainIndices),
				NumTest:    len(rec.TestIndices),
				NumRecords: rec.NumRecords,
			}
			if !rec.CreatedAt.IsZero() {
				row.CreatedAt = rec.CreatedAt.Format("2006-01-02T15:04:05Z")
			}
			rows = append(rows, row)
		}
	}

	if jsonOut {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no shuffles found")
		return nil
	}

	fmt.Printf("%-7s  %5s  %-10s  %7s  %6s  %7s  %s\n",
		"Shuffle", "Pct", "Engine", "Train", "Test", "Records", "Created")
	fmt.Printf("%-7s+-%5s+-%-10s+-%7s+-%6s+-%7s+-%s\n",
		"-------", "-----", "----------", "-------", "------", "-------", "--------------------")
	for _, r := range rows {
		if r.Engine == "" {
			fmt.Printf("%-7d  %5s  %-10s  %7s  %6s  %7s  %s\n", r.Index, "-", "-", "-", "-", "-", "-")
			continue
		}
		fmt.Printf("%-7d  %5d  %-10s  %7d  %6d  %7d  %s\n",
			r.Index, r.TrainPct, r.Engine, r.NumTrain, r.NumTest, r.NumRecords, r.CreatedAt)
	}
	return nil
}

// #endregion output
