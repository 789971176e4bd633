package memvol

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// clustersFor returns the number of clusters needed to hold size bytes.
func (v *Volume) clustersFor(size int64) uint64 {
	return uint64((size + v.clusterSize - 1) / v.clusterSize)
}

// grow allocates clusters so that e can hold size bytes and returns the size
// that is actually reachable. A full volume yields a smaller result.
func (v *Volume) grow(e *entry, size int64) int64 {
	need := v.clustersFor(size)
	have := e.clusters.GetCardinality()
	if need > have {
		want := need - have
		if avail := v.free.GetCardinality(); want > avail {
			want = avail
		}
		if want > 0 {
			taken := v.take(want)
			e.clusters.Or(taken)
			have += want
		}
	}
	return min(size, int64(have)*v.clusterSize)
}

// take removes the n lowest free clusters from the free map.
func (v *Volume) take(n uint64) *roaring.Bitmap {
	taken := roaring.New()
	it := v.free.Iterator()
	for it.HasNext() && taken.GetCardinality() < n {
		// Consume whole runs where possible.
		start := it.Next()
		end := start
		for it.HasNext() && uint64(end-start+1) < n-taken.GetCardinality() && it.PeekNext() == end+1 {
			end = it.Next()
		}
		taken.AddRange(uint64(start), uint64(end)+1)
	}
	v.free.AndNot(taken)
	return taken
}

// findRun returns the first cluster of n contiguous free clusters.
func (v *Volume) findRun(n uint64) (uint32, bool) {
	if n == 0 {
		return 0, false
	}
	var start, length uint64
	prev := int64(-2)
	it := v.free.Iterator()
	for it.HasNext() {
		c := it.Next()
		if int64(c) != prev+1 {
			start, length = uint64(c), 0
		}
		length++
		prev = int64(c)
		if length == n {
			return uint32(start), true
		}
	}
	return 0, false
}

// resize sets the size of e, zeroing and freeing everything past the new end.
// Growing through resize is only used for reservations that already hold
// the clusters.
func (v *Volume) resize(e *entry, size int64) {
	if size < e.size {
		for idx := range e.chunks {
			if idx*v.clusterSize >= size {
				delete(e.chunks, idx)
			}
		}
		if tail := size % v.clusterSize; tail != 0 {
			if c, ok := e.chunks[size/v.clusterSize]; ok {
				clear(c[tail:])
			}
		}

		keep := v.clustersFor(size)
		if card := e.clusters.GetCardinality(); card > keep {
			released := roaring.New()
			it := e.clusters.ReverseIterator()
			for i := uint64(0); i < card-keep && it.HasNext(); i++ {
				released.Add(it.Next())
			}
			e.clusters.AndNot(released)
			v.free.Or(released)
		}
	}
	e.size = size
}

// readAt copies file data at off into p. Unwritten clusters read as zeros.
func (v *Volume) readAt(e *entry, p []byte, off int64) int {
	if off >= e.size {
		return 0
	}
	p = p[:min(int64(len(p)), e.size-off)]
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		idx, within := pos/v.clusterSize, pos%v.clusterSize
		span := min(int64(len(p)-n), v.clusterSize-within)
		dst := p[n : n+int(span)]
		if c, ok := e.chunks[idx]; ok {
			copy(dst, c[within:])
		} else {
			clear(dst)
		}
		n += int(span)
	}
	return n
}

// writeAt stores p at off. The caller has allocated clusters for the range.
func (v *Volume) writeAt(e *entry, p []byte, off int64) {
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		idx, within := pos/v.clusterSize, pos%v.clusterSize
		c, ok := e.chunks[idx]
		if !ok {
			c = make([]byte, v.clusterSize)
			e.chunks[idx] = c
		}
		n += copy(c[within:], p[n:])
	}
	if end := off + int64(len(p)); end > e.size {
		e.size = end
	}
}
