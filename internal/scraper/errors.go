package scraper

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"syscall"
)

var (
	ErrNetwork     = errors.New("network error")
	ErrRateLimited = errors.New("API rate limit reached")
	ErrAPI         = errors.New("API error")

	ErrEntityGone           = errors.New("entity is no longer valid")
	ErrUnsupportedMedia     = errors.New("provider does not support media type")
	ErrMissingID            = errors.New("provider id is required")
	ErrOverlappingOwnership = errors.New("provider routes share field ownership")
)

// ErrorType tags a classified scraper error.
type ErrorType int

const (
	ErrorNone ErrorType = iota
	ErrorNetwork
	ErrorRateLimit
	ErrorAPI
)

func (t ErrorType) String() string {
	switch t {
	case ErrorNetwork:
		return "network_error"
	case ErrorRateLimit:
		return "rate_limit_reached"
	case ErrorAPI:
		return "api_error"
	default:
		return "none"
	}
}

// Error is a classified request failure. A nil *Error means success.
type Error struct {
	Type      ErrorType
	Message   string
	Technical string
}

func (e *Error) Error() string {
	if e.Technical == "" {
		return e.Message
	}
	return e.Message + ": " + e.Technical
}

// Unwrap exposes the sentinel for the error type so callers can use errors.Is.
func (e *Error) Unwrap() error {
	switch e.Type {
	case ErrorNetwork:
		return ErrNetwork
	case ErrorRateLimit:
		return ErrRateLimited
	case ErrorAPI:
		return ErrAPI
	default:
		return nil
	}
}

// TypeOf returns the classification of err, or ErrorNone.
func TypeOf(err error) ErrorType {
	var se *Error
	if errors.As(err, &se) && se != nil {
		return se.Type
	}
	return ErrorNone
}

// Classify maps a transport outcome and an optional parse failure to a
// classified error. Transport failures always win over content inspection.
func Classify(resp *Response, parseErr error) *Error {
	if resp == nil {
		return &Error{Type: ErrorNetwork, Message: "An unknown network error occurred"}
	}

	if resp.Err != nil && !isGenericServerError(resp.Err) {
		return &Error{
			Type:      ErrorNetwork,
			Message:   translateNetworkError(resp.Err),
			Technical: resp.Err.Error(),
		}
	}

	if resp.Status == http.StatusTooManyRequests {
		return &Error{
			Type:    ErrorRateLimit,
			Message: "The scraper's rate limit reached. Please wait ~10 seconds and try again.",
		}
	}

	if resp.Err != nil {
		return &Error{
			Type:      ErrorNetwork,
			Message:   "An unknown network error occurred",
			Technical: resp.Err.Error(),
		}
	}

	if len(resp.Body) == 0 {
		return &Error{Type: ErrorAPI, Message: "The scraper did not respond with any data."}
	}

	if parseErr != nil {
		return &Error{
			Type:      ErrorAPI,
			Message:   "The scraper response could not be parsed.",
			Technical: parseErr.Error(),
		}
	}

	return nil
}

func isGenericServerError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Generic()
}

// translateNetworkError returns a human readable description of a transport failure.
func translateNetworkError(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized:
			return "The server requires authentication. Check the API key."
		case http.StatusForbidden:
			return "Access to the requested content was denied."
		case http.StatusNotFound:
			return "The requested content was not found on the server."
		case http.StatusMethodNotAllowed:
			return "The operation is not permitted on the server."
		case http.StatusConflict:
			return "The request conflicts with the current state of the content."
		case http.StatusGone:
			return "The requested content is no longer available."
		case http.StatusInternalServerError:
			return "The server encountered an internal error."
		case http.StatusNotImplemented:
			return "The server does not support the requested operation."
		case http.StatusServiceUnavailable:
			return "The service is currently unavailable."
		}
	}

	if errors.Is(err, context.Canceled) {
		return "The operation was canceled."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The connection to the server timed out."
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "The host name was not found."
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "The remote server refused the connection."
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return "The remote server closed the connection prematurely."
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "The connection to the server timed out."
	}

	var certErr *tls.CertificateVerificationError
	var authErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &authErr) || errors.As(err, &hostErr) {
		return "The SSL/TLS handshake failed."
	}

	return "A network error occurred."
}
