// Package testutil provides testing utilities for fatio.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random data, unique file names and helpers that
// move whole files in and out of a driver.Volume.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Bytes(4096)
//	name := rng.Name(8)
//
// # Volume Helpers
//
//	err := testutil.WriteFile(vol, "a.bin", data)
//	got, err := testutil.ReadFile(vol, "a.bin")
//	err = testutil.RemoveUntilAbsent(vol, "a.bin", 5)
package testutil
