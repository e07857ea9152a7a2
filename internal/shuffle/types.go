package shuffle

import "fmt"

// #region configuration-error

// ConfigurationError reports an inconsistent registry query, e.g. an engine
// filter without the train fraction it needs.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "shuffle registry: " + e.Reason
}

// #endregion configuration-error

// #region duplicate-shuffle

// DuplicateShuffleError reports an explicitly requested shuffle index that
// already exists for the project. It aborts the whole dataset-creation call:
// silently reusing an index would corrupt the train/test accounting.
type DuplicateShuffleError struct {
	Index    int
	Existing []int
}

func (e *DuplicateShuffleError) Error() string {
	return fmt.Sprintf(
		"cannot create shuffle %d: it already exists. Delete its artifacts, pick a new index, or disable collision checking to overwrite. Existing indices: %v",
		e.Index, e.Existing,
	)
}

// #endregion duplicate-shuffle
