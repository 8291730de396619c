package errs

import (
	"strconv"
	"strings"
)

// FieldError describes a failure while reading or writing a named field.
type FieldError struct {
	// Op is the store operation, e.g. "read int" or "end struct".
	Op string
	// File is the path of the store file, empty for non-file streams.
	File string
	// Field is the field name, empty for anonymous array elements.
	Field string
	// Expected is the token kind the caller asked for.
	Expected string
	// Found is the token kind present on disk.
	Found string
	// Offset is the file offset of the offending tag, -1 if unknown.
	Offset int64
	// Err is the underlying sentinel or I/O error.
	Err error
}

func (e *FieldError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Op)
	if e.Field != "" {
		sb.WriteString(" '")
		sb.WriteString(e.Field)
		sb.WriteByte('\'')
	}
	if e.Expected != "" || e.Found != "" {
		sb.WriteString(" (expected ")
		sb.WriteString(orNone(e.Expected))
		sb.WriteString(", found ")
		sb.WriteString(orNone(e.Found))
		sb.WriteByte(')')
	}
	if e.Offset >= 0 {
		sb.WriteString(" at offset ")
		sb.WriteString(strconv.FormatInt(e.Offset, 10))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}

	return s
}
