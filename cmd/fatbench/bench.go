package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/fatio"
	"github.com/hupe1980/fatio/driver"
	"github.com/hupe1980/fatio/internal/chrono"
	"github.com/hupe1980/fatio/testutil"
)

// result is the outcome of one timed test.
type result struct {
	name  string
	bytes int64
	write time.Duration
	read  time.Duration
}

type bench struct {
	vol     driver.Volume
	speed   SpeedProfile
	rng     *testutil.RNG
	opts    []fatio.Option
	metrics *fatio.BasicMetricsCollector
}

var errNoFreeName = errors.New("no free file name")

// tempName picks a random 8.3 name that does not exist on the volume.
func (b *bench) tempName() (string, error) {
	for range 100 {
		name := b.rng.Name(8) + ".TST"
		_, err := b.vol.Stat(name)
		if errors.Is(err, driver.NoFile) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errNoFreeName
}

// buffered writes and reads the test file in chunks through fatio.
func (b *bench) buffered() (result, error) {
	r := result{name: testBuffered}
	name, err := b.tempName()
	if err != nil {
		return r, err
	}
	chunk := b.speed.Chunk
	text := b.rng.Bytes(chunk)
	count := b.speed.Total / int64(chunk)
	opts := append([]fatio.Option{fatio.WithMetricsCollector(b.metrics)}, b.opts...)

	sw := chrono.Start()
	f, err := fatio.Open(b.vol, name, driver.ModeRead|driver.ModeWrite|driver.ModeCreateAlways, opts...)
	if err != nil {
		return r, err
	}
	for i := range count {
		n, err := f.WriteRange(i*int64(chunk), text)
		if err == nil && n != chunk {
			err = fmt.Errorf("wrote %d of %d bytes", n, chunk)
		}
		if err != nil {
			_ = f.Close()
			return r, fmt.Errorf("write chunk %d: %w", i, err)
		}
	}
	if err := f.Close(); err != nil {
		return r, err
	}
	r.write = sw.Restart()

	f, err = fatio.Open(b.vol, name, driver.ModeRead|driver.ModeWrite, opts...)
	if err != nil {
		return r, err
	}
	for i := range count {
		view, err := f.ReadRange(i*int64(chunk), chunk)
		if err == nil && len(view) == 0 {
			err = fmt.Errorf("empty read")
		}
		if err != nil {
			_ = f.Close()
			return r, fmt.Errorf("read chunk %d: %w", i, err)
		}
	}
	if err := f.Close(); err != nil {
		return r, err
	}
	r.read = sw.Elapsed()
	r.bytes = count * int64(chunk)

	return r, testutil.RemoveUntilAbsent(b.vol, name, 10)
}

// raw performs the same test on the bare driver handle.
func (b *bench) raw() (result, error) {
	r := result{name: testRaw}
	name, err := b.tempName()
	if err != nil {
		return r, err
	}
	chunk := b.speed.Chunk
	text := b.rng.Bytes(chunk)
	count := b.speed.Total / int64(chunk)

	sw := chrono.Start()
	h, err := b.vol.Open(name, driver.ModeRead|driver.ModeWrite|driver.ModeCreateAlways)
	if err != nil {
		return r, err
	}
	for i := range count {
		n, err := h.Write(text)
		if err == nil && n != chunk {
			err = fmt.Errorf("wrote %d of %d bytes", n, chunk)
		}
		if err != nil {
			_ = h.Close()
			return r, fmt.Errorf("write chunk %d: %w", i, err)
		}
	}
	if err := h.Close(); err != nil {
		return r, err
	}
	r.write = sw.Restart()

	h, err = b.vol.Open(name, driver.ModeRead)
	if err != nil {
		return r, err
	}
	buf := make([]byte, chunk)
	for i := range count {
		n, err := h.Read(buf)
		if err == nil && n == 0 {
			err = fmt.Errorf("empty read")
		}
		if err != nil {
			_ = h.Close()
			return r, fmt.Errorf("read chunk %d: %w", i, err)
		}
	}
	if err := h.Close(); err != nil {
		return r, err
	}
	r.read = sw.Elapsed()
	r.bytes = count * int64(chunk)

	return r, testutil.RemoveUntilAbsent(b.vol, name, 10)
}

// contiguous times the creation of a file with contiguous storage.
func (b *bench) contiguous() (result, error) {
	r := result{name: testContiguous, bytes: b.speed.Contiguous}
	name, err := b.tempName()
	if err != nil {
		return r, err
	}

	sw := chrono.Start()
	f, err := fatio.CreateContiguous(b.vol, name, driver.ModeRead, b.speed.Contiguous, b.opts...)
	if err != nil {
		return r, err
	}
	if err := f.Close(); err != nil {
		return r, err
	}
	r.write = sw.Elapsed()

	return r, testutil.RemoveUntilAbsent(b.vol, name, 10)
}
