package extract

import "errors"

var (
	// ErrExtractionFailed means no text could be obtained; analysis must not proceed.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrUnsupportedMediaType means the document type cannot be read.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrEmptyDocument means the upload had no bytes.
	ErrEmptyDocument = errors.New("document is empty")
)
