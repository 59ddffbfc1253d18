package fileinfo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// IsDirPath reports whether p ends with a path separator or refers to an existing directory.
func IsDirPath(p string) bool {
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator)) {
		return true
	}
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// InspectLocal stats p. Size and LastModified are only populated when p is an existing regular
// file. Errors other than the path not existing are returned.
func InspectLocal(p string) (LocalFileInfo, error) {
	info := LocalFileInfo{Path: p}
	if !IsDirPath(p) {
		info.Filename = filepath.Base(p)
	}

	fi, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return info, nil
		}
		return info, err
	}
	if !fi.Mode().IsRegular() {
		return info, nil
	}
	size := fi.Size()
	modTime := fi.ModTime()
	info.Exists = true
	info.Size = &size
	info.LastModified = &modTime
	return info, nil
}
