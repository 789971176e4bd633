package fatio

import (
	"fmt"

	"github.com/hupe1980/fatio/driver"
)

// SetTimestamp sets the modification time of the descriptor's file.
func (f *File) SetTimestamp(ts driver.Timestamp) error {
	if !f.isOpen() {
		return ErrInvalidObject
	}
	if !f.writable() {
		return ErrDenied
	}
	return SetTimestamp(f.vol, f.path, ts)
}

// SetTimestamp sets the modification time of path on vol.
func SetTimestamp(vol driver.Volume, path string, ts driver.Timestamp) error {
	if vol == nil {
		return ErrInvalidObject
	}
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("fatio: timestamp %s: %w", ts, err)
	}
	if err := vol.SetTimestamp(path, ts); err != nil {
		return fmt.Errorf("fatio: set timestamp on %s: %w", path, err)
	}
	return nil
}
