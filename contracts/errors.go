package contracts

import "errors"

var (
	// ErrUnreadableImage marks a file that cannot be decoded as an image.
	// The file is skipped and the batch continues.
	ErrUnreadableImage = errors.New("unreadable image")

	// ErrCorruptMetadata marks an embedded metadata block that is present but
	// cannot be parsed. Missing metadata is never reported with this error.
	ErrCorruptMetadata = errors.New("corrupt metadata")

	// ErrMissingSourceDirectory is fatal: the run aborts before any file I/O.
	ErrMissingSourceDirectory = errors.New("missing source directory")

	ErrInvalidConfig = errors.New("invalid configuration")
)
