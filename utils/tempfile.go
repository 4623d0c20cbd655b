package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// TempFile is a file staged on local disk for the lifetime of one request.
type TempFile struct {
	Path string
	Size int64
}

// StageTempFile copies src into a new file under dir. The caller owns the
// returned file and must call Release on every exit path.
func StageTempFile(dir string, src io.Reader) (*TempFile, error) {
	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(f.Name())
		if copyErr != nil {
			return nil, fmt.Errorf("write temp file: %w", copyErr)
		}
		return nil, fmt.Errorf("close temp file: %w", closeErr)
	}

	return &TempFile{Path: f.Name(), Size: written}, nil
}

// ReadAll returns the staged bytes.
func (t *TempFile) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return nil, fmt.Errorf("read temp file: %w", err)
	}
	return data, nil
}

// Release deletes the staged file. Releasing twice is not an error.
func (t *TempFile) Release() error {
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete temp file: %w", err)
	}
	return nil
}
