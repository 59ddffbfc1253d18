package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/replicate/pfetch/pkg/client"
	"github.com/replicate/pfetch/pkg/fileinfo"
	"github.com/replicate/pfetch/pkg/logging"
)

// Plan is the result of comparing a remote resource with its local destination.
type Plan struct {
	URL string
	// Dest is the destination file path. When the requested destination was a directory the
	// remote filename has been appended.
	Dest     string
	Filename string
	// Size is nil when neither the server nor the caller supplied one.
	Size     *int64
	Decision Decision
	// Sizes and ModTime are the individual comparisons behind Decision. Both are Unknown when
	// the local file does not exist.
	Sizes   Comparison
	ModTime Comparison
	// RemoteModTime is applied to Dest once the transfer completes.
	RemoteModTime *time.Time
}

// ShouldDownload maps the decision to a boolean, returning ErrAmbiguousFreshness when the
// decision is unresolved.
func (p Plan) ShouldDownload() (bool, error) {
	switch p.Decision {
	case DecisionDownload:
		return true, nil
	case DecisionSkip:
		return false, nil
	}
	return false, fmt.Errorf("%s: %w", p.Dest, ErrAmbiguousFreshness)
}

// Prepare resolves remote and local metadata for rawURL and dest and decides whether a
// transfer is needed. ok is false, with a nil error, when the remote does not exist.
// When the decision is DecisionDownload the parent directory of Plan.Dest exists on return.
func Prepare(ctx context.Context, httpClient client.HTTPClient, rawURL, dest string, knownSize *int64) (plan Plan, ok bool, err error) {
	logger := logging.FromContext(ctx)

	remote, err := fileinfo.ResolveRemote(ctx, httpClient, rawURL, knownSize)
	if err != nil {
		return Plan{}, false, err
	}
	if !remote.Exists {
		return Plan{}, false, nil
	}

	if fileinfo.IsDirPath(dest) {
		if remote.Filename == "" {
			return Plan{}, false, fmt.Errorf("destination %s is a directory and no filename could be determined for %s", dest, rawURL)
		}
		dest = filepath.Join(dest, remote.Filename)
	}
	local, err := fileinfo.InspectLocal(dest)
	if err != nil {
		return Plan{}, false, fmt.Errorf("error inspecting %s: %w", dest, err)
	}

	plan = Plan{
		URL:           rawURL,
		Dest:          local.Path,
		Filename:      filepath.Base(local.Path),
		Size:          remote.Size,
		Decision:      DecisionDownload,
		RemoteModTime: remote.LastModified,
	}
	if local.Exists {
		plan.Sizes = compareSizes(remote.Size, local.Size)
		plan.ModTime = compareModTimes(remote.LastModified, local.LastModified)
		plan.Decision = Decide(plan.Sizes, plan.ModTime)
	}

	logger.Debug().
		Str("url", rawURL).
		Str("dest", plan.Dest).
		Bool("local_exists", local.Exists).
		Stringer("sizes", plan.Sizes).
		Stringer("mod_time", plan.ModTime).
		Stringer("decision", plan.Decision).
		Msg("Plan")

	if plan.Decision == DecisionDownload {
		if err := os.MkdirAll(filepath.Dir(plan.Dest), 0755); err != nil {
			return Plan{}, false, fmt.Errorf("error creating directory for %s: %w", plan.Dest, err)
		}
	}
	return plan, true, nil
}

func compareSizes(remote, local *int64) Comparison {
	if remote == nil || local == nil {
		return Unknown
	}
	if *remote == *local {
		return Equal
	}
	return Unequal
}

// compareModTimes is Equal when the remote is not newer than the local copy.
func compareModTimes(remote, local *time.Time) Comparison {
	if remote == nil || local == nil {
		return Unknown
	}
	if remote.After(*local) {
		return Unequal
	}
	return Equal
}
