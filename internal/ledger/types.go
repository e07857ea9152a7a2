package ledger

import "time"

// #region shuffle-record

// ShuffleRecord is one materialized shuffle in the shuffles table: the
// frozen train/test assignment plus the identity of the run that wrote it.
type ShuffleRecord struct {
	TrainPct     int
	Index        int
	Engine       string
	TrainIndices []int
	TestIndices  []int
	NumRecords   int // training records that survived keypoint filtering
	RunID        string
	CreatedAt    time.Time
}

// #endregion shuffle-record

// #region run-record

// RunRecord is one dataset-creation invocation in the runs table.
type RunRecord struct {
	RunID     string
	Operation string
	Details   string // JSON
	CreatedAt time.Time
}

// #endregion run-record
