package analyses

import "errors"

var (
	// ErrMalformedModelOutput means the model reply could not be read as a report.
	ErrMalformedModelOutput = errors.New("malformed model output")
	// ErrInvalidInput means text, persona, or language was missing.
	ErrInvalidInput = errors.New("invalid analysis input")
)
