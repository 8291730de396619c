package stream

import (
	"fmt"
	"io"

	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/internal/pool"
)

// File is the destination of a Writer. *os.File satisfies it.
type File interface {
	io.WriterAt
	Sync() error
	Truncate(size int64) error
}

// Writer is a buffered writer that tracks its absolute offset and can patch
// earlier bytes in place.
type Writer struct {
	dst       File
	buf       *pool.ByteBuffer
	base      int64 // file offset of buf.B[0]
	flushSize int
	released  bool

	bytesWritten int64
}

// NewWriter creates a Writer that starts writing at offset off of dst.
// Buffered data is flushed once it reaches flushSize bytes.
func NewWriter(dst File, off int64, flushSize int) *Writer {
	if flushSize <= 0 {
		flushSize = pool.StreamBufferDefaultSize
	}

	return &Writer{
		dst:       dst,
		buf:       pool.GetStreamBuffer(),
		base:      off,
		flushSize: flushSize,
	}
}

// Pos returns the absolute offset of the next byte written.
func (w *Writer) Pos() int64 {
	return w.base + int64(w.buf.Len())
}

// BytesWritten returns the number of bytes appended, excluding patches.
func (w *Writer) BytesWritten() int64 {
	return w.bytesWritten
}

// Buffer exposes the pending buffer for in-place appends. Callers must call
// Commit after appending.
func (w *Writer) Buffer() *[]byte {
	return &w.buf.B
}

// Commit accounts for n bytes appended through Buffer and flushes when the
// buffer is full.
func (w *Writer) Commit(n int) error {
	w.bytesWritten += int64(n)
	if w.buf.Len() >= w.flushSize {
		return w.Flush()
	}

	return nil
}

// Write appends p.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf.MustWrite(p)
	if err := w.Commit(len(p)); err != nil {
		return 0, err
	}

	return len(p), nil
}

// Reserve appends n zero bytes and returns the offset of the first one.
func (w *Writer) Reserve(n int) (int64, error) {
	start := w.Pos()
	for n > 0 {
		chunk := min(n, w.flushSize)
		w.buf.AppendZeros(chunk)
		if err := w.Commit(chunk); err != nil {
			return 0, err
		}
		n -= chunk
	}

	return start, nil
}

// WriteAt overwrites len(p) bytes at off, which must lie before Pos.
func (w *Writer) WriteAt(p []byte, off int64) error {
	end := off + int64(len(p))
	if off < 0 || end > w.Pos() {
		return fmt.Errorf("%w: patch [%d, %d) beyond written data %d", errs.ErrIO, off, end, w.Pos())
	}

	// part already flushed
	if off < w.base {
		n := min(end, w.base) - off
		if _, err := w.dst.WriteAt(p[:n], off); err != nil {
			return fmt.Errorf("%w: patch at %d: %w", errs.ErrIO, off, err)
		}
		p = p[n:]
		off += n
	}

	// part still buffered
	if len(p) > 0 {
		copy(w.buf.B[off-w.base:], p)
	}

	return nil
}

// Flush writes buffered data to the destination.
func (w *Writer) Flush() error {
	if w.buf.Len() == 0 {
		return nil
	}

	n, err := w.dst.WriteAt(w.buf.B, w.base)
	if err != nil {
		return fmt.Errorf("%w: write %d bytes at %d: %w", errs.ErrIO, w.buf.Len(), w.base, err)
	}
	w.base += int64(n)
	w.buf.Reset()

	return nil
}

// Sync flushes and commits the destination to durable storage.
func (w *Writer) Sync() error {
	if err := w.Flush(); err != nil {
		return err
	}

	if err := w.dst.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %w", errs.ErrIO, err)
	}

	return nil
}

// Finish flushes, truncates the destination at Pos and releases the buffer.
func (w *Writer) Finish() error {
	if err := w.Flush(); err != nil {
		return err
	}

	if err := w.dst.Truncate(w.base); err != nil {
		return fmt.Errorf("%w: truncate at %d: %w", errs.ErrIO, w.base, err)
	}

	w.Release()

	return nil
}

// Release returns the buffer to the pool without flushing.
func (w *Writer) Release() {
	if !w.released {
		w.released = true
		pool.PutStreamBuffer(w.buf)
		w.buf = pool.NewByteBuffer(0)
	}
}
