package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// TimeoutError marks a request that ran past its deadline. Host is the
// registry or CDN that did not answer, when known.
type TimeoutError struct {
	Host string
	Err  error
}

func (timeoutErr *TimeoutError) Error() string {
	if timeoutErr.Host == "" {
		return "network request timed out"
	}
	return "request to " + timeoutErr.Host + " timed out"
}

func (timeoutErr *TimeoutError) Unwrap() error {
	return timeoutErr.Err
}

func IsTimeoutError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func WrapTimeoutError(err error) error {
	return wrapTimeout("", err)
}

// WrapRequestTimeout is WrapTimeoutError with the host of request attached.
func WrapRequestTimeout(request *http.Request, err error) error {
	host := ""
	if request != nil && request.URL != nil {
		host = request.URL.Host
	}
	return wrapTimeout(host, err)
}

func wrapTimeout(host string, err error) error {
	if !IsTimeoutError(err) {
		return err
	}
	var existing *TimeoutError
	if errors.As(err, &existing) {
		if existing.Host == "" && host != "" {
			existing.Host = host
		}
		return existing
	}
	return &TimeoutError{Host: host, Err: err}
}
