package cachekey

import (
	"github.com/jmgilman/go/errors"
)

// Errors returned for malformed calls. Lookups of ids that do not exist in the document
// surface the document's own not-found error.
var (
	ErrNilDocument     = errors.New(errors.CodeInvalidInput, "asset has no document")
	ErrEmptyLocation   = errors.New(errors.CodeInvalidInput, "asset has no location")
	ErrNoBufferView    = errors.New(errors.CodeInvalidInput, "accessor has no bufferView")
	ErrNoImageLocation = errors.New(errors.CodeInvalidInput, "image has neither uri nor bufferView")
	ErrNoImageSource   = errors.New(errors.CodeInvalidInput, "texture has no usable image source")
)

func invalidInput(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeInvalidInput, format, args...)
}

// IsInvalidInput reports whether err is a malformed-argument error.
func IsInvalidInput(err error) bool {
	return errors.GetCode(err) == errors.CodeInvalidInput
}

// IsNotFound reports whether err is an unresolvable-reference error.
func IsNotFound(err error) bool {
	return errors.GetCode(err) == errors.CodeNotFound
}
