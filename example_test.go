package fatio_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/fatio"
	"github.com/hupe1980/fatio/driver"
	"github.com/hupe1980/fatio/driver/memvol"
)

func ExampleOpen() {
	vol, err := memvol.New()
	if err != nil {
		log.Fatal(err)
	}

	f, err := fatio.Open(vol, "HELLO.TXT", driver.ModeWrite|driver.ModeCreateAlways)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteRange(0, []byte("hello, fat")); err != nil {
		log.Fatal(err)
	}

	view, err := f.ReadRange(0, 5)
	if err != nil {
		log.Fatal(err)
	}

	st := f.Stats()
	fmt.Printf("%s dirty=%v disk=%d logical=%d\n", view, st.Dirty, st.DiskSize, st.LogicalSize)

	if err := f.Sync(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("disk after sync:", f.Stats().DiskSize)
	// Output:
	// hello dirty=true disk=0 logical=10
	// disk after sync: 10
}

func ExampleFile_WriteRange_sparse() {
	vol, err := memvol.New()
	if err != nil {
		log.Fatal(err)
	}

	f, err := fatio.Open(vol, "SPARSE.BIN", driver.ModeWrite|driver.ModeCreateAlways)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteRange(20, []byte{0xA1, 0xA2, 0xA3, 0xA4}); err != nil {
		log.Fatal(err)
	}

	size, _ := f.Size()
	view, _ := f.ReadRange(16, 8)
	fmt.Println(size)
	fmt.Printf("% x\n", view)
	// Output:
	// 24
	// 00 00 00 00 a1 a2 a3 a4
}

func ExampleFile_WriteRange_ceiling() {
	vol, err := memvol.New()
	if err != nil {
		log.Fatal(err)
	}

	f, err := fatio.Open(vol, "CEIL.BIN", driver.ModeWrite|driver.ModeCreateAlways)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	n, err := f.WriteRange(fatio.MaxFileSize, []byte("x"))
	fmt.Println(n, err)
	// Output: 0 <nil>
}

func ExampleBasicMetricsCollector() {
	vol, err := memvol.New()
	if err != nil {
		log.Fatal(err)
	}

	metrics := &fatio.BasicMetricsCollector{}
	f, err := fatio.Open(vol, "STATS.BIN", driver.ModeWrite|driver.ModeCreateAlways,
		fatio.WithMetricsCollector(metrics))
	if err != nil {
		log.Fatal(err)
	}

	_, _ = f.WriteRange(0, make([]byte, 1000))
	_, _ = f.ReadRange(0, 100)
	_, _ = f.ReadRange(900, 100)
	_ = f.Close()

	stats := metrics.GetStats()
	fmt.Printf("hits=%d flushes=%d flushed=%d\n", stats.ReadHits, stats.FlushCount, stats.FlushBytes)
	// Output: hits=2 flushes=1 flushed=1000
}
