package types

import "fmt"

// ConfigError reports missing or invalid client configuration, such as an
// absent API credential.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// InputError reports a missing or unusable input path (image file, image
// directory, or path-list file).
type InputError struct {
	Path   string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Path, e.Reason)
}

// RequestError reports a failed request to the remote service: either the
// transport failed outright or the service answered with a non-success
// HTTP status.
type RequestError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ResponseShapeError reports a success reply whose body is missing the
// fields the client expects.
type ResponseShapeError struct {
	Reason string
}

func (e *ResponseShapeError) Error() string {
	return "unexpected response shape: " + e.Reason
}
