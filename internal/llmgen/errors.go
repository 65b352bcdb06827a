package llmgen

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks failures to reach the generation backend: network
// errors, non-success statuses, timeouts. Distinct from malformed output,
// which indicates a prompt/model issue rather than connectivity.
var ErrUnavailable = errors.New("generation backend unavailable")

// MalformedOutputError reports that backend output contained no parseable
// JSON object. It carries the parse position and a context snippet.
type MalformedOutputError struct {
	Offset  int
	Snippet string
	Err     error
}

func (e *MalformedOutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed generation output at offset %d: %v (near %q)", e.Offset, e.Err, e.Snippet)
	}
	return fmt.Sprintf("malformed generation output: no JSON object found (near %q)", e.Snippet)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// IsMalformedOutput reports whether err is a structured-extraction failure.
func IsMalformedOutput(err error) bool {
	var m *MalformedOutputError
	return errors.As(err, &m)
}
