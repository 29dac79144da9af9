package storage

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrWriteFailed = errors.New("storage: write failed")

// FailWrites makes creating any file called name fail until restore is
// called.
func FailWrites(name string) (restore func()) {
	orig := createFile
	createFile = func(path string) (*os.File, error) {
		if filepath.Base(path) == name {
			return nil, ErrWriteFailed
		}
		return orig(path)
	}
	return func() { createFile = orig }
}
