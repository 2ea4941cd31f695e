package ingest

import (
	"math"
	"math/rand/v2"

	"github.com/akolanti/mlingest/internal/domain/dataset"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
)

// NewRand returns a seeded generator when seed is set, otherwise a randomly seeded one.
func NewRand(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// TestSize is ceil(ratio*n), the number of rows reserved for the test partition.
func TestSize(n int, testRatio float64) int {
	return int(math.Ceil(testRatio * float64(n)))
}

// partitionSizes rejects a split that would leave either partition empty.
func partitionSizes(n int, testRatio float64) (nTrain int, nTest int, err error) {
	nTest = TestSize(n, testRatio)
	nTrain = n - nTest
	if nTest <= 0 || nTrain <= 0 {
		return 0, 0, pipelineError.Newf(pipelineError.EmptyDatasetError,
			"with %d rows and test ratio %v one partition would be empty (train=%d, test=%d)", n, testRatio, nTrain, nTest)
	}
	return nTrain, nTest, nil
}

// TrainTestSplit shuffles the row indices and cuts them into disjoint test and
// train partitions. Rows are shared with the source frame, not copied.
func TrainTestSplit(frame *dataset.Frame, testRatio float64, rng *rand.Rand) (train *dataset.Frame, test *dataset.Frame, err error) {
	n := frame.Len()
	_, nTest, err := partitionSizes(n, testRatio)
	if err != nil {
		return nil, nil, err
	}

	perm := rng.Perm(n)
	test = frame.Subset(perm[:nTest])
	train = frame.Subset(perm[nTest:])
	return train, test, nil
}
