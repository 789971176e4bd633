package memvol

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/fatio/blobstore"
)

const (
	imageMagic   = "FATV"
	imageVersion = 1
)

// ErrCorruptImage is returned by Restore for images it cannot decode.
var ErrCorruptImage = errors.New("memvol: corrupt volume image")

type imageHeader struct {
	Version        uint8
	SectorSize     uint32
	ClusterSectors uint32
	Capacity       uint64
	ReadOnly       uint8
	Files          uint32
}

type imageEntry struct {
	NameLen  uint16
	Date     uint16
	Time     uint16
	ReadOnly uint8
	Size     uint32
	Chunks   uint32
}

// Snapshot serializes the volume and stores it under name in store.
// Open handles keep working; their unsynced timestamps are not captured.
func (v *Volume) Snapshot(ctx context.Context, store blobstore.Store, name string, c Compression) error {
	v.mu.Lock()
	raw, err := v.encode()
	v.mu.Unlock()
	if err != nil {
		return err
	}

	frame, err := compressFrame(raw, c)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, frame); err != nil {
		return fmt.Errorf("memvol: snapshot %s: %w", name, err)
	}
	v.log.Debug("snapshot", "name", name, "raw_bytes", len(raw), "stored_bytes", len(frame), "compression", c.String())
	return nil
}

// Restore loads a volume image written by Snapshot. Geometry comes from the
// image; opts may add a logger or clock.
func Restore(ctx context.Context, store blobstore.Store, name string, opts ...Option) (*Volume, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("memvol: restore %s: %w", name, err)
	}
	frame, err := blobstore.ReadAll(ctx, blob)
	_ = blob.Close()
	if err != nil {
		return nil, fmt.Errorf("memvol: restore %s: %w", name, err)
	}

	raw, err := decompressFrame(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	return decode(raw, opts)
}

func (v *Volume) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(imageMagic)

	keys := make([]string, 0, len(v.files))
	for k := range v.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	hdr := imageHeader{
		Version:        imageVersion,
		SectorSize:     uint32(v.opts.sectorSize),
		ClusterSectors: uint32(v.opts.clusterSectors),
		Capacity:       uint64(v.Capacity()),
		Files:          uint32(len(keys)),
	}
	if v.opts.readOnly {
		hdr.ReadOnly = 1
	}
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		return nil, err
	}

	for _, k := range keys {
		e := v.files[k]
		idx := make([]int64, 0, len(e.chunks))
		for i := range e.chunks {
			idx = append(idx, i)
		}
		sort.Slice(idx, func(a, b int) bool { return idx[a] < idx[b] })

		ie := imageEntry{
			NameLen: uint16(len(e.name)),
			Date:    e.date,
			Time:    e.time,
			Size:    uint32(e.size),
			Chunks:  uint32(len(idx)),
		}
		if e.readOnly {
			ie.ReadOnly = 1
		}
		if err := binary.Write(&buf, binary.LittleEndian, ie); err != nil {
			return nil, err
		}
		buf.WriteString(e.name)
		for _, i := range idx {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(i))
			buf.Write(b[:])
			buf.Write(e.chunks[i])
		}
	}
	return buf.Bytes(), nil
}

func decode(raw []byte, opts []Option) (*Volume, error) {
	r := bytes.NewReader(raw)
	magic := make([]byte, len(imageMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != imageMagic {
		return nil, ErrCorruptImage
	}

	var hdr imageHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorruptImage, err)
	}
	if hdr.Version != imageVersion {
		return nil, fmt.Errorf("%w: version %d", ErrCorruptImage, hdr.Version)
	}

	all := append([]Option{
		WithSectorSize(int(hdr.SectorSize)),
		WithClusterSectors(int(hdr.ClusterSectors)),
		WithCapacity(int64(hdr.Capacity)),
	}, opts...)
	v, err := New(all...)
	if err != nil {
		return nil, err
	}
	v.opts.readOnly = hdr.ReadOnly == 1

	for i := uint32(0); i < hdr.Files; i++ {
		var ie imageEntry
		if err := binary.Read(r, binary.LittleEndian, &ie); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptImage, i, err)
		}
		name := make([]byte, ie.NameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("%w: entry %d name: %v", ErrCorruptImage, i, err)
		}
		key, st := normalize(string(name))
		if st != 0 {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrCorruptImage, name, st)
		}

		e := &entry{
			name:     string(name),
			chunks:   make(map[int64][]byte, ie.Chunks),
			clusters: roaring.New(),
			date:     ie.Date,
			time:     ie.Time,
			readOnly: ie.ReadOnly == 1,
		}
		if got := v.grow(e, int64(ie.Size)); got != int64(ie.Size) {
			return nil, fmt.Errorf("%w: entry %q exceeds capacity", ErrCorruptImage, name)
		}
		e.size = int64(ie.Size)

		for j := uint32(0); j < ie.Chunks; j++ {
			var b [4]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, fmt.Errorf("%w: entry %q chunk: %v", ErrCorruptImage, name, err)
			}
			c := make([]byte, v.clusterSize)
			if _, err := io.ReadFull(r, c); err != nil {
				return nil, fmt.Errorf("%w: entry %q chunk: %v", ErrCorruptImage, name, err)
			}
			e.chunks[int64(binary.LittleEndian.Uint32(b[:]))] = c
		}
		v.files[key] = e
	}
	return v, nil
}
