package util

import (
	"archive/zip"
	"io"
)

// ReadZipEntry reads the full content of one archive entry.
func ReadZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
