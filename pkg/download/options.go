package download

const DefaultChunkSize = 8 * 1024

// ProgressFactory creates a progress callback for a transfer of total bytes. The returned
// function is called with the byte count of every write.
type ProgressFactory func(description string, total int64) func(n int)

type Options struct {
	// Number of concurrent range requests. If less than one, a single request is made.
	Concurrency int

	// Size of each read from a response body and of each disk write. If zero,
	// DefaultChunkSize is used.
	ChunkSize int

	// Progress is optional.
	Progress ProgressFactory
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}
