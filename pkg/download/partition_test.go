package download_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replicate/pfetch/pkg/download"
)

func part(start, length int64) download.Partition {
	return download.Partition{Start: start, Length: length}
}

func TestPartitions(t *testing.T) {
	testCases := []struct {
		name     string
		size     int64
		workers  int
		expected []download.Partition
	}{
		{"zero size", 0, 4, nil},
		{"single worker", 5, 1, []download.Partition{part(0, 5)}},
		{"even split", 8, 4, []download.Partition{part(0, 2), part(2, 2), part(4, 2), part(6, 2)}},
		{"remainder to last", 32, 3, []download.Partition{part(0, 10), part(10, 10), part(20, 12)}},
		{"fewer bytes than workers", 3, 8, []download.Partition{part(0, 1), part(1, 1), part(2, 1)}},
		{"zero workers treated as one", 7, 0, []download.Partition{part(0, 7)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, download.Partitions(tc.size, tc.workers))
		})
	}
}

func TestPartitionsCoverExactly(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		size := rnd.Int63n(1 << 20)
		if i%4 == 0 {
			size = rnd.Int63n(16)
		}
		workers := 1 + rnd.Intn(64)

		parts := download.Partitions(size, workers)
		require.LessOrEqual(t, len(parts), workers)

		var next int64
		for _, p := range parts {
			require.Equal(t, next, p.Start, "size=%d workers=%d: gap or overlap", size, workers)
			require.Positive(t, p.Length)
			next = p.Start + p.Length
		}
		require.Equal(t, size, next, "size=%d workers=%d", size, workers)
	}
}

func TestPartitionRangeHeader(t *testing.T) {
	p := download.Partition{Start: 100, Length: 50}
	assert.Equal(t, int64(149), p.End())
	assert.Equal(t, "bytes=100-149", p.RangeHeader())
}
