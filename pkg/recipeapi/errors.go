package recipeapi

import (
	"errors"
	"fmt"
	"strings"
)

// FailedToLoad is the legacy sentinel returned by Result.Value for any failure.
const FailedToLoad = "failed to load"

// ErrorKind classifies why a call failed.
type ErrorKind int

const (
	// KindNetwork covers DNS, connection, timeout and cancellation failures.
	KindNetwork ErrorKind = iota + 1
	// KindStatus means the server answered outside the 2xx range.
	KindStatus
	// KindDecode means a 2xx body was not valid JSON.
	KindDecode
	// KindEncode means the request body could not be serialized.
	KindEncode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is against an *Error.
var (
	ErrNetwork = errors.New("recipeapi: network failure")
	ErrStatus  = errors.New("recipeapi: unexpected status")
	ErrDecode  = errors.New("recipeapi: malformed response body")
	ErrEncode  = errors.New("recipeapi: request body not serializable")
)

// Error describes a failed call.
type Error struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int
	// Snippet is the start of the response body for status failures.
	Snippet string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s failure", e.Method, e.URL, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Snippet != "" {
		fmt.Fprintf(&b, ": %s", e.Snippet)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrStatus:
		return e.Kind == KindStatus
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrEncode:
		return e.Kind == KindEncode
	}
	return false
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
