package profile

import "fmt"

// IncompleteProfileError reports a required field missing from the generated
// profile payload.
type IncompleteProfileError struct {
	Field string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("incomplete profile: missing field %q", e.Field)
}

// InsufficientExamplesError reports that the generated profile did not carry
// at least three complete real-case examples.
type InsufficientExamplesError struct {
	Count int
}

func (e *InsufficientExamplesError) Error() string {
	return fmt.Sprintf("insufficient real-case examples: %d valid, want at least 3", e.Count)
}
