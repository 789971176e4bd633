package testutil

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/fatio/driver"
)

// WriteFile creates path on vol (replacing it) and writes data through the
// raw driver handle.
func WriteFile(vol driver.Volume, path string, data []byte) error {
	h, err := vol.Open(path, driver.ModeWrite|driver.ModeCreateAlways)
	if err != nil {
		return err
	}
	n, err := h.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if cerr := h.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadFile returns the committed contents of path on vol.
func ReadFile(vol driver.Volume, path string) ([]byte, error) {
	h, err := vol.Open(path, driver.ModeRead)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	data := make([]byte, h.Size())
	total := 0
	for total < len(data) {
		n, err := h.Read(data[total:])
		total += n
		if err != nil {
			return data[:total], err
		}
		if n == 0 {
			break
		}
	}
	return data[:total], nil
}

// ErrStillPresent is returned by RemoveUntilAbsent when the file outlives
// every attempt.
var ErrStillPresent = errors.New("file still present")

// RemoveUntilAbsent unlinks path and confirms with Stat that it is gone,
// retrying up to attempts times. Some volumes report a removed file for a
// short while after Unlink returns.
func RemoveUntilAbsent(vol driver.Volume, path string, attempts int) error {
	backoff := time.Millisecond
	for range max(attempts, 1) {
		if err := vol.Unlink(path); err != nil && !errors.Is(err, driver.NoFile) {
			return err
		}
		_, err := vol.Stat(path)
		if errors.Is(err, driver.NoFile) {
			return nil
		}
		if err != nil {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return fmt.Errorf("remove %s: %w", path, ErrStillPresent)
}
