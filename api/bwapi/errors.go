package bwapi

import (
	"errors"
	"fmt"
)

// Error kinds returned by every client operation. Match them with [errors.Is].
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRequestTimeout  = errors.New("request timed out")
	ErrDeserialization = errors.New("deserialization failed")
	ErrOther           = errors.New("request failed")
)

// The response body did not decode into the expected model.
// Detail carries the decoder's diagnostic.
type DeserializationError struct {
	URL    string
	Detail string
	Err    error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize response from %s: %s", e.URL, e.Detail)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

func (e *DeserializationError) Is(target error) bool {
	return target == ErrDeserialization
}

// A present leaderboard section named a different player than an earlier one.
type SectionMismatchError struct {
	Section  string
	Expected string
	Got      string
}

func (e *SectionMismatchError) Error() string {
	return fmt.Sprintf("leaderboard section %s belongs to %q, expected %q", e.Section, e.Got, e.Expected)
}

// The effect discriminant does not match any declared variant.
type UnknownVariantError struct {
	Value    uint64
	Expected []EffectType
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown variant `%d`, expected one of 0..%d", e.Value, len(e.Expected)-1)
}
