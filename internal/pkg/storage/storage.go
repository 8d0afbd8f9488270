package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidPath  = errors.New("invalid file path")
	ErrFileNotFound = errors.New("file not found")
)

type FileStorage interface {
	// Upload stores the file under path and returns the cleaned path.
	Upload(ctx context.Context, file io.Reader, path string) (string, error)

	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// URL returns the public address of a stored file.
	URL(path string) string

	Exists(ctx context.Context, path string) (bool, error)
}
