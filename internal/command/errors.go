package command

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound           = errors.New("file not found")
	ErrInvalidNumericArgument = errors.New("invalid numeric argument")
	ErrInvalidRatioArgument   = errors.New("invalid ratio argument")
	ErrInvalidEnumArgument    = errors.New("invalid enum argument")
	ErrUnknownArgument        = errors.New("unknown argument")
)

// ArgumentError reports a token that does not have the shape its command
// expects. Kind is one of the sentinel errors above.
type ArgumentError struct {
	Kind     error
	Command  string
	Expected string
	Received string
}

func (e *ArgumentError) Error() string {
	if errors.Is(e.Kind, ErrUnknownArgument) {
		return fmt.Sprintf("Unknown command or misplaced argument: %s.", e.Received)
	}
	received := e.Received
	if received == "" {
		received = "nothing"
	}
	return fmt.Sprintf("Wrong argument to %s: expected %s, received %s", e.Command, e.Expected, received)
}

func (e *ArgumentError) Unwrap() error {
	return e.Kind
}

// FileError reports an input path that is not a readable file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return "Not a file: " + e.Path
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFileNotFound}
	}
	return []error{ErrFileNotFound, e.Err}
}
