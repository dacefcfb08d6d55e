package errs

import (
	"errors"
	"fmt"
)

// ErrVersionIsInvalid is the sentinel for optimistic concurrency conflicts: the stored
// row no longer matches the version (or status) the caller based its update on.
var ErrVersionIsInvalid = errors.New("version is invalid")

// VersionIsInvalidError is returned when a compare-and-swap write matches no row.
// Callers should refetch the current state and decide whether to retry.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewVersionIsInvalidError(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName}
}

func NewVersionIsInvalidErrorWithCause(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *VersionIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrVersionIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrVersionIsInvalid, e.ParamName)
}

func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}
