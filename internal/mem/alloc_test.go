package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	for _, align := range []int{0, 64, 512, 4096} {
		for _, size := range []int{1, 15, 512, 16384} {
			b := AllocAligned(size, align)
			assert.Len(t, b, size)
			assert.Equal(t, size, cap(b))
			want := max(align, Alignment)
			assert.True(t, IsAligned(b, want), "size=%d align=%d", size, align)
			for _, v := range b {
				if v != 0 {
					t.Fatalf("buffer not zeroed")
				}
			}
		}
	}
}

func TestAllocAligned_Empty(t *testing.T) {
	assert.Nil(t, AllocAligned(0, 512))
	assert.Nil(t, AllocAligned(-1, 512))
}

func TestAllocAligned_BadAlignment(t *testing.T) {
	assert.Panics(t, func() { AllocAligned(16, 100) })
}
