package cssprite

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures
type ErrorKind string

const (
	// KindPacking means the packer rejected a group of images
	KindPacking ErrorKind = "packing"
	// KindIO means a directory, read or write operation failed
	KindIO ErrorKind = "io"
	// KindRegistration means the registry refused a stylesheet
	KindRegistration ErrorKind = "registration"
)

// ErrWatchDisabled is returned by Watch when DevWatch is off
var ErrWatchDisabled = errors.New("dev watch is disabled")

// ErrEmptyGroup is returned when a sheet is requested for zero images
var ErrEmptyGroup = errors.New("no images in group")

// Error is a pipeline failure with its kind and the path involved
type Error struct {
	Kind ErrorKind
	Op   string // "pack", "write sheet", "register", ...
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

func packingError(op, path string, err error) error {
	return &Error{Kind: KindPacking, Op: op, Path: path, Err: err}
}

func ioError(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

func registrationError(op, path string, err error) error {
	return &Error{Kind: KindRegistration, Op: op, Path: path, Err: err}
}

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsPackingError reports whether err wraps a packing failure
func IsPackingError(err error) bool { return isKind(err, KindPacking) }

// IsIOError reports whether err wraps a file system failure
func IsIOError(err error) bool { return isKind(err, KindIO) }

// IsRegistrationError reports whether err wraps a registry failure
func IsRegistrationError(err error) bool { return isKind(err, KindRegistration) }
