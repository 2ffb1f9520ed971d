// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrHostNotConfigured is returned by transport operations before a
	// server address has been set.
	ErrHostNotConfigured = errors.New("server address is not configured")

	// ErrInvalidHost is returned when a server address fails IPv4 validation.
	// Invalid addresses are never stored.
	ErrInvalidHost = errors.New("invalid IPv4 address")
)

// ValidationError reports required fields missing from a submission. It is
// the only error class surfaced to the caller as a blocking condition.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// ErrorKind classifies transport failures at the boundary where they occur,
// so nothing downstream has to inspect error strings.
type ErrorKind int

const (
	// KindUnreachable means no response path existed (DNS, refused, reset).
	KindUnreachable ErrorKind = iota
	// KindTimeout means the request exceeded the configured deadline.
	KindTimeout
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	}
	return "unknown"
}

// TransportError is the tagged result of a failed network operation.
type TransportError struct {
	Kind   ErrorKind
	Status int // HTTP status, set only for KindHTTP
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("server returned status %d for %s", e.Status, e.URL)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsUnreachable reports whether err represents an absent response path.
// Timeouts count: a request that never completed is indistinguishable from
// a dead network for routing purposes.
func IsUnreachable(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	return te.Kind == KindUnreachable || te.Kind == KindTimeout
}

// IsConflict reports whether err is an HTTP 409 from the server, meaning the
// record already exists and must not be retried.
func IsConflict(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindHTTP && te.Status == http.StatusConflict
}

// HTTPStatus returns the status carried by a KindHTTP transport error, or 0.
func HTTPStatus(err error) int {
	var te *TransportError
	if errors.As(err, &te) && te.Kind == KindHTTP {
		return te.Status
	}
	return 0
}
