// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes HLSL translation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedFeature indicates a shader feature not supported by the target.
	ErrUnsupportedFeature ErrorKind = iota

	// ErrInvalidShaderModel indicates an invalid or unsupported shader model.
	ErrInvalidShaderModel

	// ErrInternalError indicates an internal compiler error.
	ErrInternalError

	// ErrInvalidModule indicates the shader interface is malformed.
	ErrInvalidModule

	// ErrUnsupportedType indicates a type that cannot be represented in HLSL.
	ErrUnsupportedType

	// ErrUnreachable marks an input combination the mapping tables do not
	// cover. Earlier validation should have rejected it, so it is raised
	// with panic rather than returned.
	ErrUnreachable

	// ErrOutOfMemory indicates the compiler arena could not grow.
	ErrOutOfMemory
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrInvalidShaderModel:
		return "InvalidShaderModel"
	case ErrInternalError:
		return "InternalError"
	case ErrInvalidModule:
		return "InvalidModule"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrUnreachable:
		return "Unreachable"
	case ErrOutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// Error represents an HLSL translation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hlsl %s: %s", e.Kind, e.Message)
}

// NewError creates a new HLSL error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a new HLSL error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsUnsupportedFeature returns true if the error is ErrUnsupportedFeature.
func (e *Error) IsUnsupportedFeature() bool {
	return e.Kind == ErrUnsupportedFeature
}

// IsInternalError returns true if the error is ErrInternalError.
func (e *Error) IsInternalError() bool {
	return e.Kind == ErrInternalError
}

// IsUnreachable returns true if the error is ErrUnreachable.
func (e *Error) IsUnreachable() bool {
	return e.Kind == ErrUnreachable
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// unreachable panics with an ErrUnreachable error.
func unreachable(format string, args ...any) {
	panic(Errorf(ErrUnreachable, format, args...))
}

// RecoverUnreachable converts an ErrUnreachable panic into *err. Any other
// panic is re-raised. Use it deferred:
//
//	defer hlsl.RecoverUnreachable(&err)
func RecoverUnreachable(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok && e.Kind == ErrUnreachable {
		*err = e
		return
	}
	panic(r)
}
