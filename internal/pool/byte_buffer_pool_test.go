package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(16)

	bb.MustWrite([]byte("tag"))
	bb.MustWrite([]byte{0x01, 0x02})
	assert.Equal(t, []byte{'t', 'a', 'g', 0x01, 0x02}, bb.Bytes())
	assert.Equal(t, 5, bb.Len())

	capBefore := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, capBefore, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(StreamBufferDefaultSize)
		bb.Grow(100)
		assert.Equal(t, StreamBufferDefaultSize, bb.Cap())
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(StreamBufferDefaultSize)
		bb.B = append(bb.B, make([]byte, StreamBufferDefaultSize)...)
		bb.Grow(1)
		assert.GreaterOrEqual(t, bb.Cap(), 2*StreamBufferDefaultSize)
		assert.Equal(t, StreamBufferDefaultSize, bb.Len())
	})

	t.Run("huge request", func(t *testing.T) {
		bb := NewByteBuffer(64)
		bb.MustWrite([]byte("keep"))
		bb.Grow(StreamBufferDefaultSize * 10)
		assert.GreaterOrEqual(t, bb.Cap(), 4+StreamBufferDefaultSize*10)
		assert.Equal(t, []byte("keep"), bb.Bytes())
	})
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2, 3})

	assert.True(t, bb.Extend(1))
	assert.False(t, bb.Extend(1))

	bb.ExtendOrGrow(8)
	assert.Equal(t, 12, bb.Len())
	assert.Equal(t, []byte{1, 2, 3}, bb.B[:3])
}

func TestByteBuffer_AppendZeros(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	bb.Reset()
	bb.MustWrite([]byte{0xAA})

	bb.AppendZeros(16)
	require.Equal(t, 17, bb.Len())
	assert.Equal(t, byte(0xAA), bb.B[0])
	assert.Equal(t, make([]byte, 16), bb.B[1:])
}

func TestByteBuffer_SetLength(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.SetLength(8)
	assert.Equal(t, 8, bb.Len())
	assert.Panics(t, func() { bb.SetLength(9) })
	assert.Panics(t, func() { bb.SetLength(-1) })
}

func TestStreamPool(t *testing.T) {
	bb := GetStreamBuffer()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), StreamBufferDefaultSize)

	bb.MustWrite([]byte("data"))
	PutStreamBuffer(bb)
	assert.Equal(t, 0, bb.Len(), "Put should reset the buffer")

	assert.NotPanics(t, func() { PutStreamBuffer(nil) })
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(1024, 4096)

	bb := p.Get()
	bb.Grow(10000)
	require.Greater(t, bb.Cap(), 4096)
	bb.MustWrite([]byte("oversized"))
	p.Put(bb)

	assert.Equal(t, 9, bb.Len(), "oversized buffer is discarded without reset")

	next := p.Get()
	assert.LessOrEqual(t, next.Cap(), 4096)
}

func TestStreamPool_ConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				bb := GetStreamBuffer()
				bb.MustWrite([]byte("data"))
				assert.Equal(t, 4, bb.Len())
				PutStreamBuffer(bb)
			}
		}()
	}
	wg.Wait()
}

func BenchmarkStreamPool_GetWritePut(b *testing.B) {
	payload := make([]byte, 128)
	for b.Loop() {
		bb := GetStreamBuffer()
		bb.MustWrite(payload)
		PutStreamBuffer(bb)
	}
}
