package pipelineError

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

type Kind string

const (
	ConfigurationError Kind = "ConfigurationError"
	ConnectionError    Kind = "ConnectionError"
	ExportError        Kind = "ExportError"
	EmptyDatasetError  Kind = "EmptyDatasetError"
	PersistenceError   Kind = "PersistenceError"
)

// Origin is the source location of the call that created or wrapped the error.
type Origin struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function,omitempty"`
}

func (o Origin) String() string {
	return fmt.Sprintf("%s:%d", o.File, o.Line)
}

// Error is the envelope every failure of an ingestion run is reported in.
type Error struct {
	Kind    Kind
	Message string
	Origin  Origin
	// Missing lists the absent environment variables of a ConfigurationError.
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: error occurred in |%s| at line number |%d|: %s", e.Kind, e.Origin.File, e.Origin.Line, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: ExportError}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t == e || (t.Kind == e.Kind && t.Message == "")
}

// New creates an error of the given kind located at the caller.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Origin: callerOrigin(2)}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Origin: callerOrigin(2)}
}

// Wrap puts err into an envelope of the given kind. An err that already is an
// *Error is returned unchanged so the first kind and origin win.
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	message := err.Error()
	if msg != "" {
		message = msg + ": " + message
	}
	return &Error{Kind: kind, Message: message, Origin: callerOrigin(2), Err: err}
}

// WrapAs always adds a new envelope of the given kind, keeping err as the cause.
// Used where a lower-level kind must surface as a different one, e.g. a
// ConfigurationError seen by the connection manager becomes a ConnectionError.
func WrapAs(kind Kind, err error, msg string) *Error {
	message := msg
	if err != nil {
		message = msg + ": " + err.Error()
	}
	return &Error{Kind: kind, Message: message, Origin: callerOrigin(2), Err: err}
}

// MissingVariables builds the ConfigurationError for absent environment variables.
func MissingVariables(names []string) *Error {
	missing := append([]string(nil), names...)
	return &Error{
		Kind:    ConfigurationError,
		Message: fmt.Sprintf("missing required environment variables: [%s]", strings.Join(missing, ", ")),
		Origin:  callerOrigin(2),
		Missing: missing,
	}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func callerOrigin(skip int) Origin {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Origin{File: "unknown"}
	}
	origin := Origin{File: filepath.Base(file), Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		origin.Function = fn.Name()
	}
	return origin
}
