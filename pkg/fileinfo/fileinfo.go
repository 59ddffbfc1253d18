// Package fileinfo resolves metadata about a remote HTTP resource and about a local
// destination path so the two can be compared before transferring anything.
package fileinfo

import (
	"time"
)

// RemoteFileInfo describes a remote resource as reported by the server.
type RemoteFileInfo struct {
	URL      string
	Filename string
	// Exists is true when the final response status was 2xx.
	Exists bool
	// Size is nil when the server reported no Content-Length and no size was supplied.
	Size         *int64
	LastModified *time.Time
}

// LocalFileInfo describes the destination on disk.
type LocalFileInfo struct {
	Path string
	// Filename is empty when Path denotes a directory.
	Filename     string
	Exists       bool
	Size         *int64
	LastModified *time.Time
}
