// Package errs defines the error kinds surfaced to the user and their HTTP mapping.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	// Configuration is missing or invalid connection settings, reported before any SQL runs.
	Configuration Kind = "configuration"
	// Validation is input rejected locally by the table/constraint builder.
	Validation Kind = "validation"
	// Execution is a statement rejected by the warehouse or a transport failure.
	Execution Kind = "execution"
	// MetadataQuery is a failed read of catalog metadata.
	MetadataQuery Kind = "metadata_query"
	// RenderUnavailable means the requested diagram renderer is not installed.
	RenderUnavailable Kind = "render_unavailable"
	// RenderFailed means every diagram renderer failed.
	RenderFailed Kind = "render_failed"
	NotFound     Kind = "not_found"
	Internal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Op      string
	Err     error
	Missing []string
}

func (e *Error) Error() string {
	var sb strings.Builder

	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}

	switch {
	case e.Err != nil:
		sb.WriteString(e.Err.Error())
	case len(e.Missing) > 0:
		sb.WriteString("missing " + strings.Join(e.Missing, ", "))
	default:
		sb.WriteString(string(e.Kind))
	}

	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and the name of the failing operation.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds an error of the given kind from a format string.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Missing builds a Configuration error listing the settings that were not provided.
func Missing(op string, names ...string) error {
	return &Error{
		Kind:    Configuration,
		Op:      op,
		Err:     fmt.Errorf("missing required settings: %s", strings.Join(names, ", ")),
		Missing: names,
	}
}

// KindOf returns the kind of the outermost *Error in the chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}

	return KindOf(err) == kind
}

// MissingOf returns the missing setting names attached to err, if any.
func MissingOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Missing
	}

	return nil
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case Configuration, Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Execution, MetadataQuery:
		return http.StatusBadGateway
	case RenderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
