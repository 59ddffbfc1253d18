package cli

import (
	"github.com/schollz/progressbar/v3"

	"github.com/replicate/pfetch/pkg/download"
)

// ProgressBar returns a factory that draws a byte progress bar on stderr for every transfer.
func ProgressBar() download.ProgressFactory {
	return func(description string, total int64) func(n int) {
		bar := progressbar.DefaultBytes(total, description)
		var written int64
		return func(n int) {
			_ = bar.Add(n)
			written += int64(n)
			if written >= total {
				_ = bar.Finish()
			}
		}
	}
}
