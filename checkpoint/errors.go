package checkpoint

import "errors"

var (
	// ErrCorruptFrame indicates a frame failed magic, checksum or payload validation.
	ErrCorruptFrame = errors.New("corrupt checkpoint frame")

	// ErrWriterClosed is returned when writing to a closed Writer.
	ErrWriterClosed = errors.New("checkpoint writer is closed")

	// ErrUnknownCompression indicates an unsupported compression type.
	ErrUnknownCompression = errors.New("unknown compression type")
)
