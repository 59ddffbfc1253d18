package download

import (
	"fmt"
	"os"
	"time"
)

// Finalize sets the access and modification times of dest to modTime. A nil modTime is a no-op.
func Finalize(dest string, modTime *time.Time) error {
	if modTime == nil {
		return nil
	}
	if err := os.Chtimes(dest, *modTime, *modTime); err != nil {
		return fmt.Errorf("error setting modification time of %s: %w", dest, err)
	}
	return nil
}
