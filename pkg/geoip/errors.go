// Package geoip holds the error types shared by the database and web service backends.
package geoip

import (
	"errors"
	"fmt"
	"net/netip"
)

// ErrInvalidAddress is wrapped by every error caused by a malformed IP address.
var ErrInvalidAddress = errors.New("invalid IP address")

// ErrGeoIP matches every typed error of this package with errors.Is, so callers can handle
// any database or web service failure in one place.
var ErrGeoIP = errors.New("geoip error")

// Error is a generic failure, e.g. a response body that could not be decoded.
type Error struct {
	Message    string
	HTTPStatus int
	URI        string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == ErrGeoIP }

func (e *Error) Unwrap() error { return e.Err }

// AddressNotFoundError reports that the address is not covered by the database or the service.
//
// IPAddress and PrefixLen are only set for database lookups. Network returns the largest
// network around IPAddress for which no record exists, so callers iterating over a range can
// skip it entirely.
type AddressNotFoundError struct {
	Message   string
	IPAddress string
	PrefixLen int

	hasPrefix bool
}

// NewAddressNotFoundError returns a not-found error carrying the unmatched network.
func NewAddressNotFoundError(ip string, prefixLen int) *AddressNotFoundError {
	return &AddressNotFoundError{
		Message:   fmt.Sprintf("the address %s is not in the database", ip),
		IPAddress: ip,
		PrefixLen: prefixLen,
		hasPrefix: true,
	}
}

func (e *AddressNotFoundError) Error() string { return e.Message }

func (e *AddressNotFoundError) Is(target error) bool { return target == ErrGeoIP }

// Network returns the empty network, or an invalid prefix when it is unknown.
func (e *AddressNotFoundError) Network() netip.Prefix {
	if !e.hasPrefix || e.IPAddress == "" {
		return netip.Prefix{}
	}
	addr, err := netip.ParseAddr(e.IPAddress)
	if err != nil {
		return netip.Prefix{}
	}
	prefix, err := addr.Prefix(e.PrefixLen)
	if err != nil {
		return netip.Prefix{}
	}
	return prefix
}

// AuthenticationError reports a problem with the account ID or license key.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

func (e *AuthenticationError) Is(target error) bool { return target == ErrGeoIP }

// InvalidRequestError reports a request the service rejected.
type InvalidRequestError struct {
	Message    string
	Code       string
	HTTPStatus int
	URI        string
}

func (e *InvalidRequestError) Error() string { return e.Message }

func (e *InvalidRequestError) Is(target error) bool { return target == ErrGeoIP }

// OutOfQueriesError reports that the account is out of funds for the service queried.
type OutOfQueriesError struct {
	Message string
}

func (e *OutOfQueriesError) Error() string { return e.Message }

func (e *OutOfQueriesError) Is(target error) bool { return target == ErrGeoIP }

// PermissionRequiredError reports that the account may not access the service.
type PermissionRequiredError struct {
	Message string
}

func (e *PermissionRequiredError) Error() string { return e.Message }

func (e *PermissionRequiredError) Is(target error) bool { return target == ErrGeoIP }

// HTTPError reports an unexpected HTTP status.
type HTTPError struct {
	Message        string
	HTTPStatus     int
	URI            string
	DecodedContent string
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Is(target error) bool { return target == ErrGeoIP }

// TransportError wraps a network-level failure such as a timeout or a refused connection.
type TransportError struct {
	URI string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URI, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrGeoIP }

func (e *TransportError) Unwrap() error { return e.Err }

// DatabaseTypeError reports that a lookup method was called on a database of another type.
type DatabaseTypeError struct {
	Method       string
	DatabaseType string
}

func (e *DatabaseTypeError) Error() string {
	return fmt.Sprintf("the %s method cannot be used with the %s database", e.Method, e.DatabaseType)
}

func (e *DatabaseTypeError) Is(target error) bool { return target == ErrGeoIP }
