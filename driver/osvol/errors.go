package osvol

import (
	"errors"
	iofs "io/fs"
	"syscall"

	"github.com/hupe1980/fatio/driver"
)

// statusError carries the driver status together with the host error.
type statusError struct {
	status driver.Status
	cause  error
}

func (e *statusError) Error() string {
	return e.status.Error() + ": " + e.cause.Error()
}

func (e *statusError) Unwrap() []error {
	return []error{e.status, e.cause}
}

// toStatus maps a host error onto the FatFs taxonomy.
func toStatus(err error) driver.Status {
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return driver.NoFile
	case errors.Is(err, iofs.ErrExist):
		return driver.Exist
	case errors.Is(err, iofs.ErrPermission):
		return driver.Denied
	case errors.Is(err, syscall.ENAMETOOLONG):
		return driver.InvalidName
	case errors.Is(err, syscall.ENOSPC):
		return driver.Denied
	case errors.Is(err, syscall.EROFS):
		return driver.WriteProtected
	default:
		return driver.DiskErr
	}
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	var st driver.Status
	if errors.As(err, &st) {
		return err
	}
	return &statusError{status: toStatus(err), cause: err}
}

func pathErr(op, path string, err error) error {
	return &iofs.PathError{Op: op, Path: path, Err: err}
}
