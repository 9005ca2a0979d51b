package blobstore

import "errors"

var (
	// ErrDownload is returned when a blob cannot be read.
	ErrDownload = errors.New("download failed")

	// ErrUpload is returned when a blob cannot be written.
	ErrUpload = errors.New("upload failed")

	// ErrDelete is returned when a blob cannot be removed.
	ErrDelete = errors.New("delete failed")

	// ErrInvalidName is returned for empty names or names escaping the store root.
	ErrInvalidName = errors.New("invalid blob name")
)
