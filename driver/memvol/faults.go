package memvol

import "github.com/hupe1980/fatio/driver"

// FailNextSync makes the next n Sync calls on any handle fail with DiskErr.
func (v *Volume) FailNextSync(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failSyncs = n
}

// Eject simulates media removal. Every operation fails with NotReady until
// Insert is called.
func (v *Volume) Eject() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ejected = true
	v.log.Debug("eject")
}

// Insert undoes Eject.
func (v *Volume) Insert() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ejected = false
}

// InjectDiskError puts path into the hard error state. Every handle on the
// file fails with DiskErr from then on and Err reports it, like f_error.
func (v *Volume) InjectDiskError(path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	e, err := v.lookup("inject", path)
	if err != nil {
		return err
	}
	e.err = driver.DiskErr
	return nil
}
