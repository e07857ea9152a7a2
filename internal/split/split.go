// Package split holds the pure train/test partitioning math: drawing a
// random split of a frame index at a requested train fraction, and padding
// index slices with sentinels until the fraction holds exactly.
//
// The package deliberately knows nothing about the filesystem or the
// annotation table; it works on counts and integer indices only.
package split

import (
	"math"
	"math/rand"
)

// #region fraction

// ValidFraction reports whether f is a usable train fraction: strictly
// between 0 and 1, and expressible as an integer percentage (two decimal
// digits).
func ValidFraction(f float64) bool {
	if f <= 0 || f >= 1 {
		return false
	}
	return math.Round(f*100)/100 == f
}

// Percent returns the integer-percentage form of a train fraction, which
// drives folder and artifact naming ("...trainset95shuffle2").
func Percent(f float64) int {
	return int(math.Round(100 * f))
}

// #endregion fraction

// #region split

// Split partitions the indices 0..totalCount-1 into train and test subsets
// at the requested train fraction. The permutation comes from the
// process-global randomness source; callers that need reproducibility seed
// it themselves.
//
// With enforceExact set, both slices are padded with Sentinel values so the
// ratio of their lengths equals trainFraction exactly.
//
// An invalid fraction returns an *InvalidFractionError together with nil
// slices, so batch callers can log and move on to the next fraction.
func Split(totalCount int, trainFraction float64, enforceExact bool) (train, test []int, err error) {
	if !ValidFraction(trainFraction) {
		return nil, nil, &InvalidFractionError{Fraction: trainFraction}
	}

	perm := rand.Perm(totalCount)
	trainSize := int(float64(totalCount) * trainFraction)
	// The capped capacity keeps a padded train slice from growing into
	// test's backing array.
	train = perm[:trainSize:trainSize]
	test = perm[trainSize:]

	exact := float64(totalCount) * trainFraction
	if enforceExact && exact != math.Trunc(exact) {
		padTrain, padTest, err := Pad(len(train), len(test), trainFraction)
		if err != nil {
			return nil, nil, err
		}
		train = appendSentinels(train, padTrain)
		test = appendSentinels(test, padTest)
	}

	return train, test, nil
}

func appendSentinels(inds []int, n int) []int {
	for i := 0; i < n; i++ {
		inds = append(inds, Sentinel)
	}
	return inds
}

// #endregion split

// #region pad

// Pad computes how many sentinel entries to append to each of the train and
// test index slices so that nTrain/(nTrain+nTest) equals trainFraction
// exactly. Exactness is decided in integer arithmetic, never by comparing
// floats. Already-exact inputs return (0, 0).
func Pad(nTrain, nTest int, trainFraction float64) (padTrain, padTest int, err error) {
	if !ValidFraction(trainFraction) {
		return 0, 0, &InvalidFractionError{Fraction: trainFraction}
	}

	pct := Percent(trainFraction)
	total := nTrain + nTest
	if total > 0 && nTrain*100 == pct*total {
		return 0, 0, nil
	}

	// Smallest sample count at which the fraction is exactly representable:
	// 100/gcd(100, pct). For reducible fractions this stays small, e.g.
	// 0.8 = 4/5 gives minLen 5, not 100.
	g := gcd(100, pct)
	minLen := 100 / g
	minTrain := minLen * pct / 100
	minTest := minLen - minTrain

	mult := max(ceilDiv(nTrain, minTrain), ceilDiv(nTest, minTest))
	return mult*minTrain - nTrain, mult*minTest - nTest, nil
}

// StripPadding returns the indices with all sentinel entries removed. The
// result addresses real frames only; applied to a padded split it recovers
// exactly the original index sets.
func StripPadding(inds []int) []int {
	out := make([]int, 0, len(inds))
	for _, i := range inds {
		if i != Sentinel {
			out = append(out, i)
		}
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// #endregion pad
