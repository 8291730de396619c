// Package errs defines the error values returned by bstruct.
//
// Errors are organized in four categories. Every specific error wraps exactly one
// category sentinel, so callers can match either precisely or broadly:
//
//	if errors.Is(err, errs.ErrFormat) {
//	    // file is corrupt or was written by an incompatible version
//	}
//	if errors.Is(err, errs.ErrTypeMismatch) {
//	    // the requested field exists but has a different type on disk
//	}
//
// Failures tied to a named field are reported as *FieldError, which carries the
// file, field name, expected and found token kinds and unwraps to the sentinel.
package errs

import (
	"errors"
	"fmt"
)

// Category sentinels.
var (
	// ErrIO reports that the underlying read, write, seek or sync did not complete.
	ErrIO = errors.New("bstruct: i/o error")
	// ErrFormat reports a corrupt or incompatible file layout.
	ErrFormat = errors.New("bstruct: format error")
	// ErrSchema reports a field whose presence or type does not match the request.
	ErrSchema = errors.New("bstruct: schema error")
	// ErrResource reports an exhausted internal limit.
	ErrResource = errors.New("bstruct: resource error")
)

func define(category error, msg string) error {
	return fmt.Errorf("%w: %s", category, msg)
}

// Format errors.
var (
	ErrInvalidHeader      = define(ErrFormat, "invalid header")
	ErrInvalidMagic       = define(ErrFormat, "invalid magic")
	ErrUnsupportedVersion = define(ErrFormat, "unsupported version")
	ErrNoNameTable        = define(ErrFormat, "name table missing, file was not closed")
	ErrInvalidNameTable   = define(ErrFormat, "invalid name table")
	ErrInvalidToken       = define(ErrFormat, "invalid token")
	ErrUnexpectedEnd      = define(ErrFormat, "unexpected end marker")
	ErrNameMismatch       = define(ErrFormat, "struct name mismatch")
	ErrTooManyEnds        = define(ErrFormat, "too many end markers")
	ErrSizeMismatch       = define(ErrFormat, "array size mismatch")
	ErrUnpatchedSlot      = define(ErrFormat, "index slot not patched")
	ErrNameRequired       = define(ErrFormat, "name required inside struct")
	ErrNameForbidden      = define(ErrFormat, "name not allowed inside array")
	ErrNotIndexed         = define(ErrFormat, "array has no index")
	ErrInvalidPayload     = define(ErrFormat, "invalid archive payload")
	ErrLengthOutOfRange   = define(ErrFormat, "length exceeds remaining stream")
)

// Schema errors.
var (
	ErrTypeMismatch   = define(ErrSchema, "type mismatch")
	ErrNameNotInTable = define(ErrSchema, "name not in table")
	ErrFieldNotFound  = define(ErrSchema, "field not found")
)

// Resource errors.
var (
	ErrLevelOverflow  = define(ErrResource, "nesting depth exceeded")
	ErrNameTableFull  = define(ErrResource, "name table full")
	ErrNameTooLong    = define(ErrResource, "name exceeds 255 bytes")
	ErrStringTooLong  = define(ErrResource, "string exceeds maximum length")
)

// ErrClosed reports use of a session after Close.
var ErrClosed = errors.New("bstruct: store closed")
