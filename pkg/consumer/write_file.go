package consumer

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ChunkWriter places every chunk it receives at the chunk's own offset in Dest. It is meant to be
// the only writer of Dest while chunks are flowing, so no locking is done around WriteAt.
// Arrival order does not matter.
type ChunkWriter struct {
	Dest io.WriterAt
	// Size is the number of bytes expected in total. Chunks reaching past it are rejected.
	Size int64
	// Progress, if set, is called with the byte count of each completed write.
	Progress func(n int)
}

var _ Consumer = &ChunkWriter{}

func (w *ChunkWriter) Consume(ctx context.Context, chunks <-chan Chunk) (int64, error) {
	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				if written != w.Size {
					return written, fmt.Errorf("%w: wrote %d of %d bytes", ErrIncompleteWrite, written, w.Size)
				}
				return written, nil
			}
			end := chunk.Offset + int64(len(chunk.Data))
			if chunk.Offset < 0 || end > w.Size {
				return written, fmt.Errorf("%w: [%d, %d) with size %d", ErrChunkOutOfBounds, chunk.Offset, end, w.Size)
			}
			n, err := w.Dest.WriteAt(chunk.Data, chunk.Offset)
			written += int64(n)
			if err != nil {
				return written, fmt.Errorf("error writing %d bytes at offset %d: %w", len(chunk.Data), chunk.Offset, err)
			}
			if w.Progress != nil {
				w.Progress(n)
			}
		}
	}
}

// OpenFile creates or truncates dest and sizes it to size so chunks can land anywhere in it.
func OpenFile(dest string, size int64) (*os.File, error) {
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening %s for writing: %w", dest, err)
	}
	if err := out.Truncate(size); err != nil {
		out.Close()
		return nil, fmt.Errorf("error allocating %d bytes for %s: %w", size, dest, err)
	}
	return out, nil
}
