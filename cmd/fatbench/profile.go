package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/fatio/driver/memvol"
)

// Profile describes one benchmark run. It is read from YAML and then
// overridden by any flag given on the command line.
type Profile struct {
	// Driver is memvol or osvol. Dir is the osvol root.
	Driver   string        `yaml:"driver"`
	Dir      string        `yaml:"dir"`
	Capacity int64         `yaml:"capacity"`
	Seed     int64         `yaml:"seed"`
	Tests    []string      `yaml:"tests"`
	Speed    SpeedProfile  `yaml:"speed"`
	Cache    CacheProfile  `yaml:"cache"`
	Limits   LimitsProfile `yaml:"limits"`

	// Snapshot receives a compressed memvol image after the run: a local
	// directory, s3://bucket/prefix or minio://endpoint/bucket/prefix.
	Snapshot string `yaml:"snapshot,omitempty"`
	Compress string `yaml:"compress,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// SpeedProfile sizes the read/write speed tests and the contiguous create.
type SpeedProfile struct {
	Chunk      int   `yaml:"chunk"`
	Total      int64 `yaml:"total"`
	Contiguous int64 `yaml:"contiguous"`
}

// CacheProfile configures the buffered descriptors.
type CacheProfile struct {
	SectorMultiplier int `yaml:"sector_multiplier"`
	MaxBufferSize    int `yaml:"max_buffer_size"`
}

// LimitsProfile configures the shared resource controller.
type LimitsProfile struct {
	MemoryBytes   int64 `yaml:"memory_bytes"`
	IOBytesPerSec int64 `yaml:"io_bytes_per_sec"`
}

const (
	testBuffered   = "buffered"
	testRaw        = "raw"
	testContiguous = "contiguous"
)

func defaultProfile() Profile {
	return Profile{
		Driver:   "memvol",
		Capacity: 256 << 20,
		Seed:     1,
		Tests:    []string{testBuffered, testRaw, testContiguous},
		Speed: SpeedProfile{
			Chunk:      512,
			Total:      4 << 20,
			Contiguous: 16 << 20,
		},
		Cache: CacheProfile{
			SectorMultiplier: 1,
			MaxBufferSize:    16384,
		},
		Compress: "zstd",
		LogLevel: "warn",
	}
}

// loadProfile reads a YAML profile on top of the defaults.
func loadProfile(path string) (Profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// flags mirrors the profile fields that can be set on the command line.
type flags struct {
	profile    string
	driver     string
	dir        string
	capacity   int64
	seed       int64
	tests      []string
	chunk      int
	total      int64
	contiguous int64
	multiplier int
	maxBuffer  int
	memLimit   int64
	ioLimit    int64
	snapshot   string
	compress   string
	logLevel   string
}

func (f *flags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.profile, "profile", "p", "", "YAML profile to load before applying flags")
	flagSet.StringVar(&f.driver, "driver", "", "volume driver: memvol or osvol")
	flagSet.StringVar(&f.dir, "dir", "", "host directory for the osvol driver")
	flagSet.Int64Var(&f.capacity, "capacity", 0, "volume capacity in bytes")
	flagSet.Int64Var(&f.seed, "seed", 0, "random seed for test data")
	flagSet.StringSliceVar(&f.tests, "tests", nil, "tests to run: buffered, raw, contiguous")
	flagSet.IntVar(&f.chunk, "chunk", 0, "bytes per read or write call")
	flagSet.Int64Var(&f.total, "total", 0, "bytes written and read by each speed test")
	flagSet.Int64Var(&f.contiguous, "contiguous", 0, "size of the contiguous file")
	flagSet.IntVar(&f.multiplier, "sector-multiplier", 0, "sectors per cache unit")
	flagSet.IntVar(&f.maxBuffer, "max-buffer", 0, "largest cache window in bytes")
	flagSet.Int64Var(&f.memLimit, "memory-limit", 0, "shared cache memory budget in bytes")
	flagSet.Int64Var(&f.ioLimit, "io-limit", 0, "osvol throughput limit in bytes per second")
	flagSet.StringVar(&f.snapshot, "snapshot", "", "directory, s3:// or minio:// URL to store a memvol image after the run")
	flagSet.StringVar(&f.compress, "compress", "", "snapshot compression: none, lz4 or zstd")
	flagSet.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// apply copies every flag the user set into p.
func (f *flags) apply(flagSet *pflag.FlagSet, p *Profile) {
	set := func(name string, fn func()) {
		if flagSet.Changed(name) {
			fn()
		}
	}
	set("driver", func() { p.Driver = f.driver })
	set("dir", func() { p.Dir = f.dir })
	set("capacity", func() { p.Capacity = f.capacity })
	set("seed", func() { p.Seed = f.seed })
	set("tests", func() { p.Tests = f.tests })
	set("chunk", func() { p.Speed.Chunk = f.chunk })
	set("total", func() { p.Speed.Total = f.total })
	set("contiguous", func() { p.Speed.Contiguous = f.contiguous })
	set("sector-multiplier", func() { p.Cache.SectorMultiplier = f.multiplier })
	set("max-buffer", func() { p.Cache.MaxBufferSize = f.maxBuffer })
	set("memory-limit", func() { p.Limits.MemoryBytes = f.memLimit })
	set("io-limit", func() { p.Limits.IOBytesPerSec = f.ioLimit })
	set("snapshot", func() { p.Snapshot = f.snapshot })
	set("compress", func() { p.Compress = f.compress })
	set("log-level", func() { p.LogLevel = f.logLevel })
}

// validate rejects profiles the benchmark cannot run.
func (p Profile) validate() error {
	switch p.Driver {
	case "memvol":
	case "osvol":
		if p.Dir == "" {
			return fmt.Errorf("osvol driver needs --dir")
		}
	default:
		return fmt.Errorf("unknown driver %q", p.Driver)
	}
	if p.Speed.Chunk <= 0 {
		return fmt.Errorf("chunk must be positive, got %d", p.Speed.Chunk)
	}
	if p.Cache.MaxBufferSize > 0 && p.Speed.Chunk > p.Cache.MaxBufferSize/2 {
		return fmt.Errorf("chunk %d exceeds half the cache window %d", p.Speed.Chunk, p.Cache.MaxBufferSize)
	}
	if p.Speed.Total < int64(p.Speed.Chunk) {
		return fmt.Errorf("total %d is smaller than one chunk", p.Speed.Total)
	}
	for _, t := range p.Tests {
		switch t {
		case testBuffered, testRaw, testContiguous:
		default:
			return fmt.Errorf("unknown test %q", t)
		}
	}
	if _, err := parseCompression(p.Compress); err != nil {
		return err
	}
	return nil
}

func parseCompression(s string) (memvol.Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return memvol.CompressionNone, nil
	case "lz4":
		return memvol.CompressionLZ4, nil
	case "zstd":
		return memvol.CompressionZSTD, nil
	}
	return 0, fmt.Errorf("unknown compression %q", s)
}
