package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable covers transport failures, non-2xx responses and timeouts
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidQuote covers malformed bodies and missing, non-numeric or non-positive values
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrAllProvidersExhausted is recorded when no live provider produced a valid quote
	ErrAllProvidersExhausted = errors.New("all providers exhausted")
	// ErrRateUnavailable is returned when no rate source could serve a pair
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	// ErrEmptyLotSet is returned when aggregating zero lots
	ErrEmptyLotSet = errors.New("empty lot set")
	ErrEmptyTicker = errors.New("ticker is empty")
	ErrInvalidLot  = errors.New("invalid lot")
	ErrLotNotFound = errors.New("lot not found")
)

// ProviderError tags a failure with the adapter that produced it
type ProviderError struct {
	Err      error
	Provider string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps kind (ErrProviderUnavailable or ErrInvalidQuote) with a detail message
func NewProviderError(provider string, kind error, format string, args ...any) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
	}
}
