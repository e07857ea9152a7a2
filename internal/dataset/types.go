package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/posetools/trainset/internal/imagemeta"
	"github.com/posetools/trainset/internal/ledger"
	"github.com/posetools/trainset/internal/poseconfig"
)

// #region confirm-policy

// ConfirmPolicy decides whether an existing shuffle artifact may be
// overwritten. Injected so headless runs and tests supply a deterministic
// answer instead of a blocking prompt.
type ConfirmPolicy interface {
	Confirm(shuffleID string) bool
}

// ApproveAll overwrites without asking.
func ApproveAll() ConfirmPolicy { return approveAll{} }

type approveAll struct{}

func (approveAll) Confirm(string) bool { return true }

// PromptPolicy asks on Out and reads a yes/no answer from In. Anything but
// an explicit no counts as yes, matching the interactive behavior users
// already rely on.
type PromptPolicy struct {
	In  io.Reader
	Out io.Writer
}

func (p PromptPolicy) Confirm(shuffleID string) bool {
	fmt.Fprintf(p.Out,
		"A model folder for shuffle %s is already present. Continuing overwrites the existing split. Continue? (yes/no): ",
		shuffleID)
	answer, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "no", "n":
		return false
	}
	return true
}

// #endregion confirm-policy

// #region options

// Options controls one dataset-creation call.
type Options struct {
	// NumShuffles auto-allocates that many indices; Shuffles names them
	// explicitly instead.
	NumShuffles int
	Shuffles    []int

	// TrainIndices/TestIndices freeze the splits instead of drawing fresh
	// ones: one pair per shuffle, sentinel-padded so the fraction is exact.
	TrainIndices [][]int
	TestIndices  [][]int

	Engine        poseconfig.Engine
	NetType       string
	AugmenterType string

	// TemplatePath overrides the default config template
	// (<project>/<engine pose cfg name>).
	TemplatePath string
	InitWeights  string

	// UserFeedback enables collision checking and overwrite confirmation.
	UserFeedback bool
	Confirm      ConfirmPolicy

	Images *imagemeta.Reader
	Ledger *ledger.Ledger
}

// Result describes one materialized shuffle.
type Result struct {
	TrainFraction float64
	Shuffle       int
	TrainIndices  []int
	TestIndices   []int
}

// #endregion options

// #region training-record

// TrainingRecord is one frame's entry in the serialized training structure:
// its image path (relative to the project root), probed dimensions and the
// keypoints that survived filtering.
type TrainingRecord struct {
	Image  string   `json:"image"`
	Size   [3]int   `json:"size"`   // channels, height, width
	Joints [][3]int `json:"joints"` // body-part id, x, y
}

// documentation is the per-shuffle train/test bookkeeping marker; its
// filename is what the shuffle registry scans for.
type documentation struct {
	TrainFraction float64 `json:"train_fraction"`
	TrainIndices  []int   `json:"train_indices"`
	TestIndices   []int   `json:"test_indices"`
	NumRecords    int     `json:"num_records"`
}

// #endregion training-record
