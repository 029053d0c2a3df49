package schema

import (
	"errors"
	"fmt"
)

// ErrSchemaNotFound is returned when no schema document exists for an input file.
var ErrSchemaNotFound = errors.New("schema document not found")

// ParseError reports a malformed schema or lookup document.
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// UnknownFieldError reports a key the schema format does not define.
type UnknownFieldError struct {
	Path  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: unknown key %q (expected fields, reader, encoding)", e.Path, e.Field)
}
