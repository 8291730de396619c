// Package pool provides pooled byte buffers for the store stream reader and writer.
package pool

import "sync"

const (
	// StreamBufferDefaultSize is the initial capacity of pooled stream buffers.
	StreamBufferDefaultSize = 64 << 10
	// StreamBufferMaxThreshold is the largest capacity returned to the pool.
	StreamBufferMaxThreshold = 1 << 20
)

// ByteBuffer is a growable byte slice. B may be used directly.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer returns an empty buffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

func (bb *ByteBuffer) Bytes() []byte { return bb.B }
func (bb *ByteBuffer) Len() int      { return len(bb.B) }
func (bb *ByteBuffer) Cap() int      { return cap(bb.B) }

// Reset empties the buffer and keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// MustWrite appends data.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// SetLength reslices the buffer to n bytes. It panics if n exceeds the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("pool: SetLength out of range")
	}
	bb.B = bb.B[:n]
}

// Extend lengthens the buffer by n bytes within its capacity and reports
// whether there was room.
func (bb *ByteBuffer) Extend(n int) bool {
	if cap(bb.B)-len(bb.B) < n {
		return false
	}
	bb.B = bb.B[:len(bb.B)+n]

	return true
}

// ExtendOrGrow lengthens the buffer by n bytes, reallocating when needed.
// The new bytes are not cleared.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	if bb.Extend(n) {
		return
	}
	bb.Grow(n)
	bb.B = bb.B[:len(bb.B)+n]
}

// AppendZeros appends n zero bytes.
func (bb *ByteBuffer) AppendZeros(n int) {
	start := len(bb.B)
	bb.ExtendOrGrow(n)
	clear(bb.B[start:])
}

// Grow ensures room for n more bytes. Buffers up to four default sizes grow
// by StreamBufferDefaultSize, larger ones by a quarter of their capacity.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	step := StreamBufferDefaultSize
	if cap(bb.B) > 4*StreamBufferDefaultSize {
		step = cap(bb.B) / 4
	}

	grown := make([]byte, len(bb.B), len(bb.B)+max(step, n))
	copy(grown, bb.B)
	bb.B = grown
}

// ByteBufferPool recycles ByteBuffers. Buffers that grew past maxThreshold
// are dropped instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool returns a pool of buffers with the given initial capacity.
// A maxThreshold of 0 keeps every buffer.
func NewByteBufferPool(capacity, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(capacity) },
		},
		maxThreshold: maxThreshold,
	}
}

func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put resets bb and returns it to the pool.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil || (bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold) {
		return
	}
	bb.Reset()
	bbp.pool.Put(bb)
}

var streamPool = NewByteBufferPool(StreamBufferDefaultSize, StreamBufferMaxThreshold)

// GetStreamBuffer takes a buffer from the shared stream pool.
func GetStreamBuffer() *ByteBuffer {
	return streamPool.Get()
}

// PutStreamBuffer returns bb to the shared stream pool.
func PutStreamBuffer(bb *ByteBuffer) {
	streamPool.Put(bb)
}
