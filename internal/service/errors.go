package service

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of conversion failures
type ErrorKind int

const (
	// KindInvalidArgument covers missing money or currency and a zero rate
	KindInvalidArgument ErrorKind = iota
	// KindServiceUnavailable is returned while the breaker is open
	KindServiceUnavailable
	// KindRateUnavailable means the provider answered without any rate
	KindRateUnavailable
	// KindProviderFailure means the provider call itself failed
	KindProviderFailure
)

func (kind ErrorKind) String() string {
	switch kind {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindRateUnavailable:
		return "rate_unavailable"
	case KindProviderFailure:
		return "provider_failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is; any ConversionError of the same kind matches
var (
	ErrInvalidArgument    = &ConversionError{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrServiceUnavailable = &ConversionError{Kind: KindServiceUnavailable, Message: "service is unavailable"}
	ErrRateUnavailable    = &ConversionError{Kind: KindRateUnavailable, Message: "no exchange rate available"}
	ErrProviderFailure    = &ConversionError{Kind: KindProviderFailure, Message: "rate provider failed"}
)

// ConversionError is a typed conversion failure with an optional cause
type ConversionError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// Is matches any ConversionError of the same kind
func (e *ConversionError) Is(target error) bool {
	other, ok := target.(*ConversionError)
	return ok && other.Kind == e.Kind
}

// Retryable reports whether repeating the call later can succeed
func (e *ConversionError) Retryable() bool {
	return e.Kind != KindInvalidArgument
}

func newError(kind ErrorKind, message string, cause error) *ConversionError {
	return &ConversionError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the kind of a conversion failure
func KindOf(err error) (ErrorKind, bool) {
	var conversionError *ConversionError
	if errors.As(err, &conversionError) {
		return conversionError.Kind, true
	}
	return 0, false
}
