package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/replicate/pfetch/pkg/client"
	"github.com/replicate/pfetch/pkg/consumer"
)

var contentRangeRegexp = regexp.MustCompile(`^bytes ([0-9]+)-([0-9]+)/([0-9]+|\*)$`)

// fetchPartition issues a ranged GET for part and sends the body to chunks in pieces of at
// most chunkSize bytes, each tagged with its absolute offset. totalSize is used to accept a
// plain 200 response when part spans the whole file.
func fetchPartition(ctx context.Context, httpClient client.HTTPClient, url string, part Partition, totalSize int64, chunkSize int, chunks chan<- consumer.Chunk) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("Range", part.RangeHeader())

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error executing request for %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		if err := checkContentRange(resp.Header.Get("Content-Range"), part); err != nil {
			return fmt.Errorf("%s: %w", url, err)
		}
	case http.StatusOK:
		if part.Start != 0 || part.Length != totalSize {
			return fmt.Errorf("%w: %s answered %s with status %d", ErrRangeNotSupported, url, part.RangeHeader(), resp.StatusCode)
		}
	default:
		return fmt.Errorf("error fetching %s of %s: %w", part.RangeHeader(), url, ErrUnexpectedHTTPStatus(resp.StatusCode))
	}

	body := io.LimitReader(resp.Body, part.Length)
	offset := part.Start
	end := part.Start + part.Length
	for offset < end {
		buf := make([]byte, min(int64(chunkSize), end-offset))
		n, err := io.ReadFull(body, buf)
		if n > 0 {
			select {
			case chunks <- consumer.Chunk{Offset: offset, Data: buf[:n]}:
			case <-ctx.Done():
				return ctx.Err()
			}
			offset += int64(n)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if offset < end {
				return fmt.Errorf("%w: %s got %d of %d bytes", ErrShortRead, part.RangeHeader(), offset-part.Start, part.Length)
			}
			break
		}
		if err != nil {
			return fmt.Errorf("error reading response for %s: %w", url, err)
		}
	}
	return nil
}

// checkContentRange rejects a 206 response whose Content-Range does not start where part does.
// A missing or unparseable header is accepted.
func checkContentRange(header string, part Partition) error {
	m := contentRangeRegexp.FindStringSubmatch(header)
	if m == nil {
		return nil
	}
	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	if start != part.Start {
		return fmt.Errorf("%w: requested %s, got Content-Range %q", ErrRangeNotSupported, part.RangeHeader(), header)
	}
	return nil
}
