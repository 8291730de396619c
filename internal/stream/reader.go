package stream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/internal/pool"
)

// Reader is a buffered, seekable reader over a fixed-size source.
type Reader struct {
	src    io.ReaderAt
	size   int64
	pos    int64
	mapped []byte

	window   *pool.ByteBuffer
	winStart int64

	bytesRead int64
	closer    func() error
}

// NewReader creates a Reader over src, which holds size bytes.
func NewReader(src io.ReaderAt, size int64) *Reader {
	return &Reader{
		src:    src,
		size:   size,
		window: pool.GetStreamBuffer(),
	}
}

// NewBytesReader creates a Reader that serves data directly.
func NewBytesReader(data []byte) *Reader {
	return &Reader{
		size:   int64(len(data)),
		mapped: data,
	}
}

// OpenFile opens path for reading. With useMmap the file is memory mapped when
// the platform allows it; otherwise, or if mapping fails, reads are buffered.
func OpenFile(path string, useMmap bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", errs.ErrIO, path, err)
	}

	if useMmap && info.Size() > 0 {
		data, unmap, err := mmapFile(f, info.Size())
		if err == nil {
			f.Close()
			r := NewBytesReader(data)
			r.closer = unmap

			return r, nil
		}
	}

	r := NewReader(f, info.Size())
	r.closer = f.Close

	return r, nil
}

// Size returns the total size of the source.
func (r *Reader) Size() int64 {
	return r.size
}

// Pos returns the current read offset.
func (r *Reader) Pos() int64 {
	return r.pos
}

// BytesRead returns the number of bytes consumed through Next and ReadByte.
func (r *Reader) BytesRead() int64 {
	return r.bytesRead
}

// IsMapped reports whether the reader serves from a memory mapping.
func (r *Reader) IsMapped() bool {
	return r.mapped != nil
}

// SeekTo moves the read offset to the absolute position off.
func (r *Reader) SeekTo(off int64) error {
	if off < 0 || off > r.size {
		return fmt.Errorf("%w: seek to %d outside [0, %d]", errs.ErrIO, off, r.size)
	}
	r.pos = off

	return nil
}

// Skip advances the read offset by n bytes.
func (r *Reader) Skip(n int64) error {
	if n < 0 || r.pos+n > r.size {
		return fmt.Errorf("%w: skip %d at %d: %w", errs.ErrIO, n, r.pos, io.ErrUnexpectedEOF)
	}
	r.pos += n

	return nil
}

// ReadByte reads one byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.Next(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// Peek returns the next n bytes without advancing. The slice is valid until
// the next call on r.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n < 0 || r.pos+int64(n) > r.size {
		return nil, fmt.Errorf("%w: read %d bytes at %d: %w", errs.ErrIO, n, r.pos, io.ErrUnexpectedEOF)
	}

	if r.mapped != nil {
		return r.mapped[r.pos : r.pos+int64(n)], nil
	}

	if r.pos >= r.winStart && r.pos+int64(n) <= r.winStart+int64(r.window.Len()) {
		off := r.pos - r.winStart
		return r.window.B[off : off+int64(n)], nil
	}

	if err := r.fill(n); err != nil {
		return nil, err
	}

	return r.window.B[:n], nil
}

// Next returns the next n bytes and advances past them. The slice is valid
// until the next call on r.
func (r *Reader) Next(n int) ([]byte, error) {
	b, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.pos += int64(n)
	r.bytesRead += int64(n)

	return b, nil
}

// ReadAt reads len(p) bytes at off without moving the read offset.
func (r *Reader) ReadAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > r.size {
		return fmt.Errorf("%w: read %d bytes at %d: %w", errs.ErrIO, len(p), off, io.ErrUnexpectedEOF)
	}

	if r.mapped != nil {
		copy(p, r.mapped[off:])
		return nil
	}

	if _, err := r.src.ReadAt(p, off); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return nil
}

// fill loads at least n bytes starting at pos into the window.
func (r *Reader) fill(n int) error {
	want := max(n, pool.StreamBufferDefaultSize)
	if remaining := r.size - r.pos; int64(want) > remaining {
		want = int(remaining)
	}

	r.window.Reset()
	r.window.ExtendOrGrow(want)

	got, err := r.src.ReadAt(r.window.B, r.pos)
	if got < n {
		r.window.Reset()
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return fmt.Errorf("%w: read at %d: %w", errs.ErrIO, r.pos, err)
	}

	r.window.SetLength(got)
	r.winStart = r.pos

	return nil
}

// Close releases the window and the underlying file or mapping.
func (r *Reader) Close() error {
	if r.window != nil {
		pool.PutStreamBuffer(r.window)
		r.window = nil
	}
	r.mapped = nil

	if r.closer != nil {
		closer := r.closer
		r.closer = nil
		if err := closer(); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrIO, err)
		}
	}

	return nil
}
