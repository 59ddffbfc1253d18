package consumer

import (
	"context"
	"errors"
)

var (
	ErrChunkOutOfBounds = errors.New("chunk outside of destination bounds")
	ErrIncompleteWrite  = errors.New("incomplete write")
)

// Chunk is a run of bytes destined for an absolute offset in the destination file.
type Chunk struct {
	Offset int64
	Data   []byte
}

// Consumer drains chunks until the channel is closed, returning the number of bytes written.
type Consumer interface {
	Consume(ctx context.Context, chunks <-chan Chunk) (int64, error)
}
