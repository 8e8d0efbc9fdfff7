package iofs

import (
	"fmt"
)

func CreateDirError(dir string, err error) error {
	return fmt.Errorf("cannot create directory %s: %w", dir, err)
}

func WriteConfigError(path string, err error) error {
	return fmt.Errorf("cannot write config file %s: %w", path, err)
}

func ReadFileError(path string, err error) error {
	return fmt.Errorf("cannot read %s: %w", path, err)
}
