// Package platform wraps file system details that differ between operating
// systems.
package platform

import (
	"io/fs"
	"os"
)

// IsRegular reports whether the walked entry d is a regular file, filtering
// out symlinks, devices and the like. When the directory listing carries no
// type information the entry is resolved with Lstat.
func IsRegular(root *os.Root, fsPath string, d fs.DirEntry) (bool, error) {
	dtype := d.Type()
	if dtype&fs.ModeSymlink != 0 {
		return false, nil
	}
	if dtype != 0 {
		return dtype.IsRegular(), nil
	}
	linfo, err := root.Lstat(fsPath)
	if err != nil {
		return false, err
	}
	return linfo.Mode().IsRegular(), nil
}
