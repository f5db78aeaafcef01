package fetch

import "fmt"

// TransportError is a failed request: network error or non-2xx status
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("transport error for %s: status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new transport error
func NewTransportError(url string, statusCode int, err error) *TransportError {
	return &TransportError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ParseError is a response body that is not a record collection
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(url string, err error) *ParseError {
	return &ParseError{
		URL: url,
		Err: err,
	}
}
