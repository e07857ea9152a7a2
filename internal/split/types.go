package split

import "fmt"

// #region sentinel

// Sentinel is the placeholder index appended to train/test index slices so
// their lengths reach an exact train fraction. It never refers to a real
// frame; consumers must strip it before addressing data.
const Sentinel = -1

// #endregion sentinel

// #region invalid-fraction

// InvalidFractionError reports a train fraction that is outside (0, 1) or
// carries more than two decimal digits of precision.
type InvalidFractionError struct {
	Fraction float64
}

func (e *InvalidFractionError) Error() string {
	return fmt.Sprintf(
		"train fraction must be a two digit number between 0 and 1 (e.g. 0.95), got %v",
		e.Fraction,
	)
}

// #endregion invalid-fraction
