package scraper

import (
	"context"
	"fmt"
	"net/http"
)

// Transport performs GET requests on behalf of providers. Implementations
// must not return a nil Response.
type Transport interface {
	Get(ctx context.Context, url string, header http.Header) *Response
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, url string, header http.Header) *Response

// Get calls f.
func (f TransportFunc) Get(ctx context.Context, url string, header http.Header) *Response {
	return f(ctx, url, header)
}

// Response is the raw outcome of a transport call. Err is set for
// connection-level failures and for non-2xx statuses (as *StatusError).
type Response struct {
	Body   []byte
	Status int
	Err    error
}

// StatusError reports a non-2xx HTTP status returned by a provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server replied: %d %s", e.Code, http.StatusText(e.Code))
}

// Generic reports whether the status carries no specific meaning for the
// client, i.e. it is an "unknown server error". 429 falls in this group.
func (e *StatusError) Generic() bool {
	switch e.Code {
	case http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusMethodNotAllowed,
		http.StatusConflict,
		http.StatusGone,
		http.StatusInternalServerError,
		http.StatusNotImplemented,
		http.StatusServiceUnavailable:
		return false
	}
	return true
}

// JSONHeader returns the request headers every provider call carries.
func JSONHeader() http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json")
	return h
}
