package pfetch

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/replicate/pfetch/pkg/client"
	"github.com/replicate/pfetch/pkg/download"
	"github.com/replicate/pfetch/pkg/logging"
)

type Getter struct {
	Client  client.HTTPClient
	Options download.Options

	// Force downloads even when the local file is up to date.
	Force bool
	// OnUnresolved replaces an unresolved staleness decision. The zero value,
	// download.DecisionUnresolved, makes DownloadFile fail with download.ErrAmbiguousFreshness.
	OnUnresolved download.Decision
	// KnownSize is used when the server does not report Content-Length.
	KnownSize *int64
}

type Result struct {
	Dest string
	Size int64
	// Skipped is set when the local file was already up to date.
	Skipped bool
	// NotFound is set when the remote answered with a non-2xx status.
	NotFound bool
	Elapsed  time.Duration
}

// DownloadFile fetches url to dest unless dest already holds an up to date copy. dest may be a
// directory, in which case the remote filename is appended.
func (g *Getter) DownloadFile(ctx context.Context, url string, dest string) (Result, error) {
	httpClient := g.Client
	if httpClient == nil {
		httpClient = client.NewHTTPClient(client.Options{})
	}
	logger := logging.ForTransfer(uuid.NewString())
	ctx = logger.WithContext(ctx)
	startTime := time.Now()

	plan, ok, err := download.Prepare(ctx, httpClient, url, dest, g.KnownSize)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		logger.Warn().Str("url", url).Msg("Remote file not found")
		return Result{NotFound: true}, nil
	}
	result := Result{Dest: plan.Dest}
	if plan.Size != nil {
		result.Size = *plan.Size
	}

	decision := plan.Decision
	if decision == download.DecisionUnresolved {
		decision = g.OnUnresolved
		if decision != download.DecisionUnresolved {
			logger.Warn().Str("dest", plan.Dest).Stringer("decision", decision).Msg("Staleness unresolved, using configured policy")
		}
	}
	if g.Force {
		decision = download.DecisionDownload
	}
	switch decision {
	case download.DecisionSkip:
		logger.Info().Str("url", url).Str("dest", plan.Dest).
			Msgf("Skipping %s because it already exists and is up to date", url)
		result.Skipped = true
		result.Elapsed = time.Since(startTime)
		return result, nil
	case download.DecisionUnresolved:
		_, err := plan.ShouldDownload()
		return result, err
	}

	downloadStartTime := time.Now()
	written, err := download.Transfer(ctx, httpClient, plan, g.Options)
	if err != nil {
		return result, err
	}
	if err := download.Finalize(plan.Dest, plan.RemoteModTime); err != nil {
		return result, err
	}
	downloadElapsed := time.Since(downloadStartTime)
	result.Elapsed = time.Since(startTime)

	throughput := humanize.Bytes(uint64(float64(written) / max(downloadElapsed.Seconds(), 1e-9)))
	logger.Info().
		Str("dest", plan.Dest).
		Str("size", humanize.Bytes(uint64(written))).
		Str("download_throughput", fmt.Sprintf("%s/s", throughput)).
		Str("download_elapsed", fmt.Sprintf("%.3fs", downloadElapsed.Seconds())).
		Str("total_elapsed", fmt.Sprintf("%.3fs", result.Elapsed.Seconds())).
		Msg("Complete")
	return result, nil
}
