package memvol

import (
	"fmt"
	iofs "io/fs"

	"github.com/hupe1980/fatio/driver"
)

func errInvalidGeometry(what string, v int64) error {
	return fmt.Errorf("memvol: invalid %s %d: %w", what, v, driver.InvalidParameter)
}

func pathErr(op, path string, err error) error {
	return &iofs.PathError{Op: op, Path: path, Err: err}
}
