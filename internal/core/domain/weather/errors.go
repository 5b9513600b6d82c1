package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for an empty city or API key.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateInstance is returned when the API key is already bound to a live instance.
	ErrDuplicateInstance = errors.New("an instance with this API key already exists")
	// ErrFetchFailed matches every error produced while talking to the provider.
	ErrFetchFailed = errors.New("weather fetch failed")
	// ErrDisposed is returned by lookups on a disposed instance.
	ErrDisposed = errors.New("weather service disposed")
)

type FetchErrorKind string

const (
	FetchUnauthorized FetchErrorKind = "unauthorized"
	FetchCityNotFound FetchErrorKind = "city_not_found"
	FetchUpstream     FetchErrorKind = "upstream"
	FetchNetwork      FetchErrorKind = "network"
	FetchDecode       FetchErrorKind = "decode"
)

// FetchError describes a failed provider call for one city.
type FetchError struct {
	City       string
	Kind       FetchErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch weather for %q: %s", e.City, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFetchFailed) match any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// AsFetchError normalizes any fetcher failure into a *FetchError.
func AsFetchError(city string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{City: city, Kind: FetchUpstream, Err: err}
}
