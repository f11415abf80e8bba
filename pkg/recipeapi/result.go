package recipeapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Result is the outcome of a single API call: decoded JSON on success, a typed
// failure otherwise. It is never empty.
type Result struct {
	data any
	raw  json.RawMessage
	err  *Error
}

func success(raw []byte, data any) Result {
	return Result{data: data, raw: append(json.RawMessage(nil), raw...)}
}

func failure(err *Error) Result {
	return Result{err: err}
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.err == nil }

// Data returns the decoded JSON value, or nil on failure.
func (r Result) Data() any { return r.data }

// Raw returns the undecoded 2xx body, or nil on failure.
func (r Result) Raw() json.RawMessage { return r.raw }

// Err returns the failure, or nil on success.
func (r Result) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Kind returns the failure kind, or 0 on success.
func (r Result) Kind() ErrorKind {
	if r.err == nil {
		return 0
	}
	return r.err.Kind
}

// Value returns the decoded data, or FailedToLoad for any failure.
func (r Result) Value() any {
	if r.err != nil {
		return FailedToLoad
	}
	return r.data
}

// Decode unmarshals the successful payload into dst.
func (r Result) Decode(dst any) error {
	if r.err != nil {
		return r.err
	}
	if err := json.Unmarshal(r.raw, dst); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
