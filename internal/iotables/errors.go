package iotables

import (
	"fmt"
)

func ReadFileError(path string, err error) error {
	return fmt.Errorf("cannot read %s: %w", path, err)
}

func WriteFileError(path string, err error) error {
	return fmt.Errorf("cannot write %s: %w", path, err)
}

func HeaderError(path, expected string) error {
	return fmt.Errorf("%s: header must contain %s", path, expected)
}

func RowLengthError(path string, line, want, got int) error {
	return fmt.Errorf("%s:%d: expected %d columns, got %d",
		path, line, want, got)
}

func FieldError(path string, line int, field string, err error) error {
	return fmt.Errorf("%s:%d: bad %s: %w", path, line, field, err)
}
