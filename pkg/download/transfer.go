package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/replicate/pfetch/pkg/client"
	"github.com/replicate/pfetch/pkg/consumer"
	"github.com/replicate/pfetch/pkg/logging"
)

// chunksPerWorker bounds the channel between fetchers and the writer. At most
// chunksPerWorker*Concurrency*ChunkSize bytes are buffered in memory.
const chunksPerWorker = 2

// Transfer fetches plan.URL into plan.Dest using one ranged request per partition and a single
// writer that places every chunk at its offset. The first failure, from any fetcher or the
// writer, cancels the rest, removes the partially written file and is returned.
func Transfer(ctx context.Context, httpClient client.HTTPClient, plan Plan, opts Options) (written int64, err error) {
	logger := logging.FromContext(ctx)
	if plan.Size == nil {
		return 0, fmt.Errorf("%s: %w", plan.URL, ErrUnknownSize)
	}
	size := *plan.Size
	parts := Partitions(size, opts.Concurrency)
	chunkSize := opts.chunkSize()

	out, err := consumer.OpenFile(plan.Dest, size)
	if err != nil {
		return 0, err
	}
	defer func() {
		closeErr := out.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("error closing %s: %w", plan.Dest, closeErr)
		}
		if err != nil {
			if rmErr := os.Remove(plan.Dest); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logger.Warn().Err(rmErr).Str("dest", plan.Dest).Msg("Failed to remove partial file")
			}
		}
	}()

	var progress func(int)
	if opts.Progress != nil {
		progress = opts.Progress(fmt.Sprintf("Writing %s to disk", plan.Filename), size)
	}

	logger.Debug().
		Str("url", plan.URL).
		Str("dest", plan.Dest).
		Int64("size", size).
		Int("partitions", len(parts)).
		Int("chunk_size", chunkSize).
		Msg("Downloading")

	startTime := time.Now()
	chunks := make(chan consumer.Chunk, chunksPerWorker*max(len(parts), 1))
	errGroup, groupCtx := errgroup.WithContext(ctx)

	var writer consumer.Consumer = &consumer.ChunkWriter{Dest: out, Size: size, Progress: progress}
	errGroup.Go(func() error {
		n, err := writer.Consume(groupCtx, chunks)
		written = n
		return err
	})

	fetchers, fetchCtx := errgroup.WithContext(groupCtx)
	for _, part := range parts {
		fetchers.Go(func() error {
			return fetchPartition(fetchCtx, httpClient, plan.URL, part, size, chunkSize, chunks)
		})
	}
	errGroup.Go(func() error {
		// on failure the channel stays open; the writer exits through the cancelled context
		if err := fetchers.Wait(); err != nil {
			return err
		}
		close(chunks)
		return nil
	})

	if err := errGroup.Wait(); err != nil {
		// report cancellation by the caller rather than whichever goroutine noticed it first
		if ctxErr := ctx.Err(); ctxErr != nil {
			return written, ctxErr
		}
		return written, err
	}

	elapsed := time.Since(startTime)
	logger.Debug().
		Str("url", plan.URL).
		Str("size", humanize.Bytes(uint64(size))).
		Str("elapsed", fmt.Sprintf("%.3fs", elapsed.Seconds())).
		Msg("Transfer finished")
	return written, nil
}
