// Package errors provides sentinel errors for source discovery operations.
package errors

import "errors"

var (
	// ErrSourceNotFound indicates the configured source directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrSourceNotDirectory indicates the configured source path is not a directory.
	ErrSourceNotDirectory = errors.New("source path is not a directory")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the source tree failed.
	ErrDocsDirWalkFailed = errors.New("source directory walk failed")

	// ErrFileReadFailed indicates reading a discovered file failed.
	ErrFileReadFailed = errors.New("source file read failed")

	// ErrNoDocsFound indicates the source tree holds no documents.
	ErrNoDocsFound = errors.New("no documents found")
)
