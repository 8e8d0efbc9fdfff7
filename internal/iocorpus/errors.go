package iocorpus

import (
	"fmt"
)

func ScanDirError(dir string, err error) error {
	return fmt.Errorf("cannot scan corpus dir %s: %w", dir, err)
}

func ReadFileError(path string, err error) error {
	return fmt.Errorf("cannot read corpus file %s: %w", path, err)
}

func BadFormatError(path string, err error) error {
	return fmt.Errorf("malformed corpus file %s: %w", path, err)
}
