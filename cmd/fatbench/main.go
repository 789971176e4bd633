// fatbench measures the speed of buffered fatio descriptors against the
// bare volume driver, and the time to create a contiguous file.
//
// A run is described by a YAML profile; flags override its fields:
//
//	fatbench --profile bench.yaml --driver osvol --dir /mnt/sd --total 8388608
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/hupe1980/fatio"
	"github.com/hupe1980/fatio/driver"
	"github.com/hupe1980/fatio/driver/memvol"
	"github.com/hupe1980/fatio/driver/osvol"
	"github.com/hupe1980/fatio/internal/resource"
	"github.com/hupe1980/fatio/testutil"
)

const snapshotName = "fatbench.img"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var fl flags
	flagSet := pflag.NewFlagSet("fatbench", pflag.ContinueOnError)
	fl.register(flagSet)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	p, err := loadProfile(fl.profile)
	if err != nil {
		return err
	}
	fl.apply(flagSet, &p)
	if err := p.validate(); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(p.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := fatio.NewTextLogger(level)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   p.Limits.MemoryBytes,
		IOLimitBytesPerSec: p.Limits.IOBytesPerSec,
	})

	vol, mem, err := openVolume(p, rc, logger.Logger)
	if err != nil {
		return err
	}

	b := &bench{
		vol:     vol,
		speed:   p.Speed,
		rng:     testutil.NewRNG(p.Seed),
		metrics: &fatio.BasicMetricsCollector{},
		opts: []fatio.Option{
			fatio.WithSectorMultiplier(p.Cache.SectorMultiplier),
			fatio.WithMaxBufferSize(p.Cache.MaxBufferSize),
			fatio.WithLogger(logger),
			fatio.WithResourceController(rc),
		},
	}

	fmt.Fprintf(stdout, "driver %s, sector %d, chunk %s, total %s\n",
		p.Driver, vol.SectorSize(), humanize.IBytes(uint64(p.Speed.Chunk)), humanize.IBytes(uint64(p.Speed.Total)))

	for _, name := range p.Tests {
		if err := ctx.Err(); err != nil {
			return err
		}
		var r result
		switch name {
		case testBuffered:
			r, err = b.buffered()
		case testRaw:
			r, err = b.raw()
		case testContiguous:
			r, err = b.contiguous()
		}
		if err != nil {
			return fmt.Errorf("%s test: %w", name, err)
		}
		printResult(stdout, r)
	}

	stats := b.metrics.GetStats()
	fmt.Fprintf(stdout, "cache: %d hits, %d misses, %d flushes (%s), %d window moves, peak buffer memory %s\n",
		stats.ReadHits, stats.ReadMisses, stats.FlushCount,
		humanize.IBytes(uint64(stats.FlushBytes)), stats.EvictionCount,
		humanize.IBytes(uint64(rc.MemoryPeak())))

	if mem != nil && p.Snapshot != "" {
		return snapshot(ctx, stdout, mem, p)
	}
	return nil
}

// openVolume returns the volume for the profile; mem is set for memvol.
func openVolume(p Profile, rc *resource.Controller, logger *slog.Logger) (vol driver.Volume, mem *memvol.Volume, err error) {
	switch p.Driver {
	case "osvol":
		opts := []osvol.Option{osvol.WithResourceController(rc), osvol.WithLogger(logger)}
		if p.Capacity > 0 {
			opts = append(opts, osvol.WithCapacity(p.Capacity))
		}
		v, err := osvol.New(p.Dir, opts...)
		if err != nil {
			return nil, nil, err
		}
		return v, nil, nil
	default:
		mem, err = memvol.New(memvol.WithCapacity(p.Capacity), memvol.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return mem, mem, nil
	}
}

func snapshot(ctx context.Context, w io.Writer, mem *memvol.Volume, p Profile) error {
	c, err := parseCompression(p.Compress)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, p.Snapshot)
	if err != nil {
		return err
	}
	if err := mem.Snapshot(ctx, store, snapshotName, c); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	blob, err := store.Open(ctx, snapshotName)
	if err != nil {
		return err
	}
	defer blob.Close()

	fmt.Fprintf(w, "snapshot %s (%s, %s)\n", snapshotName, c, humanize.IBytes(uint64(blob.Size())))
	return nil
}

func printResult(w io.Writer, r result) {
	if r.read == 0 {
		fmt.Fprintf(w, "%-10s %9s in %v (%s)\n", r.name, humanize.IBytes(uint64(r.bytes)), r.write, rate(r.bytes, r.write))
		return
	}
	fmt.Fprintf(w, "%-10s %9s  write %v (%s)  read %v (%s)\n", r.name, humanize.IBytes(uint64(r.bytes)),
		r.write, rate(r.bytes, r.write), r.read, rate(r.bytes, r.read))
}

func rate(bytes int64, d time.Duration) string {
	s := d.Seconds()
	if s <= 0 {
		return "n/a"
	}
	return humanize.IBytes(uint64(float64(bytes)/s)) + "/s"
}
