package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arloliu/bstruct/compress"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
	"github.com/arloliu/bstruct/internal/hash"
	"github.com/arloliu/bstruct/store"
)

const (
	// Magic identifies an archive container.
	Magic = "BSTZ"
	// HeaderSize is the size of the container header in bytes.
	HeaderSize = 21

	codecPos    = 4
	rawSizePos  = 5
	checksumPos = 13

	// MaxRawSize bounds the store size accepted by Pack and Unpack.
	MaxRawSize = 1 << 40
)

// Stats describes one packed or unpacked archive.
type Stats struct {
	Codec      format.CompressionType
	RawSize    int64
	PackedSize int64
	Checksum   uint64
}

// Ratio returns PackedSize/RawSize, or 0 for an empty payload.
func (s Stats) Ratio() float64 {
	if s.RawSize == 0 {
		return 0
	}

	return float64(s.PackedSize) / float64(s.RawSize)
}

// Pack compresses the whole of src with codec and writes the container to dst.
//
// Parameters:
//   - dst: Destination of the container
//   - src: Store bytes, read to EOF
//   - codec: Block codec, see compress.GetCodec
//
// Returns:
//   - Stats: Sizes and checksum of the written container
//   - error: errs.ErrIO on read/write failure
func Pack(dst io.Writer, src io.Reader, codec compress.Codec) (Stats, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: read source: %w", errs.ErrIO, err)
	}
	if int64(len(raw)) > MaxRawSize {
		return Stats{}, fmt.Errorf("%w: source of %d bytes exceeds %d", errs.ErrResource, len(raw), int64(MaxRawSize))
	}

	stats := Stats{
		Codec:    codec.Type(),
		RawSize:  int64(len(raw)),
		Checksum: hash.Sum(raw),
	}

	out := make([]byte, HeaderSize, HeaderSize+len(raw)/2)
	copy(out, Magic)
	out[codecPos] = byte(stats.Codec)
	binary.LittleEndian.PutUint64(out[rawSizePos:], uint64(stats.RawSize))
	binary.LittleEndian.PutUint64(out[checksumPos:], stats.Checksum)

	out, err = codec.Compress(out, raw)
	if err != nil {
		return Stats{}, fmt.Errorf("%s compress: %w", stats.Codec, err)
	}
	stats.PackedSize = int64(len(out) - HeaderSize)

	if _, err := dst.Write(out); err != nil {
		return Stats{}, fmt.Errorf("%w: write archive: %w", errs.ErrIO, err)
	}

	return stats, nil
}

// ReadHeader parses the container header at the start of data.
func ReadHeader(data []byte) (Stats, error) {
	if len(data) < HeaderSize {
		return Stats{}, fmt.Errorf("%w: %d bytes, header needs %d", errs.ErrInvalidPayload, len(data), HeaderSize)
	}
	if string(data[:codecPos]) != Magic {
		return Stats{}, fmt.Errorf("%w: %q", errs.ErrInvalidMagic, data[:codecPos])
	}

	stats := Stats{
		Codec:      format.CompressionType(data[codecPos]),
		RawSize:    int64(binary.LittleEndian.Uint64(data[rawSizePos:])),
		Checksum:   binary.LittleEndian.Uint64(data[checksumPos:]),
		PackedSize: int64(len(data) - HeaderSize),
	}
	if stats.RawSize < 0 || stats.RawSize > MaxRawSize {
		return Stats{}, fmt.Errorf("%w: raw size %d", errs.ErrInvalidPayload, stats.RawSize)
	}

	return stats, nil
}

// Unpack reads a container from src, verifies it and writes the store bytes to dst.
//
// Returns:
//   - Stats: Header values of the container
//   - error: errs.ErrInvalidPayload when the size or checksum does not match,
//     errs.ErrIO on read/write failure
func Unpack(dst io.Writer, src io.Reader) (Stats, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: read archive: %w", errs.ErrIO, err)
	}

	stats, err := ReadHeader(data)
	if err != nil {
		return Stats{}, err
	}

	codec, err := compress.GetCodec(stats.Codec)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
	}

	raw, err := codec.Decompress(nil, data[HeaderSize:], int(stats.RawSize))
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
	}
	if sum := hash.Sum(raw); sum != stats.Checksum {
		return Stats{}, fmt.Errorf("%w: checksum %016x, header says %016x", errs.ErrInvalidPayload, sum, stats.Checksum)
	}

	if _, err := dst.Write(raw); err != nil {
		return Stats{}, fmt.Errorf("%w: write store: %w", errs.ErrIO, err)
	}

	return stats, nil
}

// PackFile archives the closed store at srcPath into dstPath.
//
// The source is opened with store.Open first, so unfinished or corrupt stores
// are rejected before anything is written. dstPath is written through a
// temporary file in the same directory and renamed into place.
func PackFile(srcPath, dstPath string, compressionType format.CompressionType) (Stats, error) {
	codec, err := compress.GetCodec(compressionType)
	if err != nil {
		return Stats{}, err
	}

	r, err := store.Open(srcPath)
	if err != nil {
		return Stats{}, err
	}
	if err := r.Close(); err != nil {
		return Stats{}, err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	defer src.Close()

	var stats Stats
	err = writeAtomic(dstPath, func(w io.Writer) error {
		stats, err = Pack(w, src, codec)
		return err
	})

	return stats, err
}

// UnpackFile restores the store archived at srcPath into dstPath and checks
// that the result is a readable store.
func UnpackFile(srcPath, dstPath string) (Stats, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	defer src.Close()

	var stats Stats
	err = writeAtomic(dstPath, func(w io.Writer) error {
		stats, err = Unpack(w, src)
		return err
	})
	if err != nil {
		return Stats{}, err
	}

	r, err := store.Open(dstPath)
	if err != nil {
		return Stats{}, err
	}
	if err := r.Close(); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// writeAtomic writes path through a temporary sibling, syncs it and renames it
// into place. The temporary file is removed on any failure.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		if !ok {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", errs.ErrIO, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", errs.ErrIO, tmpPath, err)
	}
	ok = true
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: rename %s: %w", errs.ErrIO, tmpPath, err)
	}

	return nil
}
