package normalize

import "errors"

// ErrInvalidURL is matched by every *InvalidURLError.
var ErrInvalidURL = errors.New("Invalid URL")

// InvalidURLError reports input that cannot be parsed as a URL or data URL.
type InvalidURLError struct {
	Input string
	Err   error
}

func (e *InvalidURLError) Error() string {
	return "Invalid URL: " + e.Input
}

func (e *InvalidURLError) Is(target error) bool {
	return target == ErrInvalidURL
}

func (e *InvalidURLError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports contradictory Options.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

var ErrForceProtocolConflict = &ConfigurationError{"forceHttp and forceHttps cannot be used together"}
