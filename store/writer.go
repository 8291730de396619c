package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/arloliu/bstruct/encoding"
	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
	"github.com/arloliu/bstruct/internal/nametable"
	"github.com/arloliu/bstruct/internal/stream"
	"github.com/arloliu/bstruct/metrics"
	"github.com/arloliu/bstruct/section"
)

// wframe is one open struct or array of a write session.
type wframe struct {
	array bool
	name  string
	size  int // declared element count of an array
	count int // elements written so far
}

// Writer is a write session over a store file.
//
// A Writer is not safe for concurrent use. After any error other than a
// schema or placement error the session should be abandoned.
type Writer struct {
	session

	file    *os.File
	out     *stream.Writer
	header  *section.Header
	names   *nametable.Writer
	frames  []wframe
	scratch []byte
	// indexes maps the base of every index array reserved in this session
	// to its slot count.
	indexes map[int64]int
}

// Create creates or truncates the store file at path and writes its header.
//
// Parameters:
//   - path: File path
//   - opts: Session options
//
// Returns:
//   - *Writer: Write session positioned inside the top-level struct
//   - error: Option or I/O error
func Create(path string, opts ...Option) (*Writer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create: %w", errs.ErrIO, err)
	}

	w := &Writer{
		session: newSession(path, metrics.ModeWrite, cfg),
		file:    f,
		header:  section.NewHeader(cfg.engine),
		names:   nametable.NewWriter(),
		frames:  make([]wframe, 1, cfg.maxDepth+1),
	}
	w.out = stream.NewWriter(f, 0, cfg.bufferSize)

	if _, err := w.out.Write(w.header.Bytes()); err != nil {
		w.abort()
		return nil, err
	}

	w.logger.Debug().Str("byte_order", endian.Name(w.engine)).Msg("store created")

	return w, nil
}

// Append reopens a closed store file for writing. Writing continues at the end
// of the stream; the existing name table is kept so previously interned names
// keep their ids. The byte order of the file is kept regardless of options.
//
// Returns:
//   - *Writer: Write session positioned inside the top-level struct
//   - error: ErrNoNameTable if the file was never closed, or another format or I/O error
func Append(path string, opts ...Option) (*Writer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: append: %w", errs.ErrIO, err)
	}

	w, err := resume(f, path, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}

	return w, nil
}

func resume(f *os.File, path string, cfg *Config) (*Writer, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat: %w", errs.ErrIO, err)
	}

	in := stream.NewReader(f, info.Size())
	defer in.Close()

	header, entries, err := loadTail(in)
	if err != nil {
		return nil, err
	}

	end := header.NameTableOffset - 1
	tag := make([]byte, 1)
	if err := in.ReadAt(tag, end); err != nil {
		return nil, err
	}
	if format.Token(tag[0]) != format.TokenEnd {
		return nil, fmt.Errorf("%w: stream does not end with End at %d", errs.ErrUnexpectedEnd, end)
	}

	names, err := nametable.NewWriterFrom(entries)
	if err != nil {
		return nil, err
	}

	if cfg.engine != header.Engine {
		cfg.logger.Debug().Str("file", path).
			Str("byte_order", endian.Name(header.Engine)).
			Msg("append keeps the byte order of the file")
	}
	cfg.engine = header.Engine

	// The file is unreadable until Close writes the new table.
	if _, err := f.WriteAt(header.OffsetBytes(section.NameTablePlaceholder), section.NameTableOffsetPos); err != nil {
		return nil, fmt.Errorf("%w: reset name table offset: %w", errs.ErrIO, err)
	}

	w := &Writer{
		session: newSession(path, metrics.ModeAppend, cfg),
		file:    f,
		header:  &header,
		names:   names,
		frames:  make([]wframe, 1, cfg.maxDepth+1),
	}
	w.out = stream.NewWriter(f, end, cfg.bufferSize)

	w.logger.Debug().Int("names", names.Len()).Int64("offset", end).Msg("store reopened for append")

	return w, nil
}

// Offset returns the file offset at which the next item will be written.
// Record it before writing an element to patch it into an index array.
func (w *Writer) Offset() int64 {
	return w.out.Pos()
}

// Depth returns the number of open structs and arrays.
func (w *Writer) Depth() int {
	return len(w.frames) - 1
}

// Stats returns the session counters.
func (w *Writer) Stats() Stats {
	return Stats{
		BytesWritten: w.out.BytesWritten(),
		Names:        w.names.Len(),
	}
}

// place validates that an item may be written in the current frame and
// returns the name id for its tag.
func (w *Writer) place(op, name string) (int, error) {
	if err := w.checkOpen(op); err != nil {
		return 0, err
	}

	top := &w.frames[len(w.frames)-1]
	if top.array {
		if name != "" {
			return 0, w.fail(&errs.FieldError{Op: op, Field: name, Offset: w.out.Pos(), Err: errs.ErrNameForbidden})
		}
		if top.count >= top.size {
			return 0, w.fail(&errs.FieldError{
				Op: op, Field: top.name, Offset: w.out.Pos(),
				Expected: sizeString(top.size), Found: "more",
				Err: errs.ErrSizeMismatch,
			})
		}
		top.count++

		return encoding.Anonymous, nil
	}

	if name == "" {
		return 0, w.fail(&errs.FieldError{Op: op, Offset: w.out.Pos(), Err: errs.ErrNameRequired})
	}

	id, err := w.names.Intern(name)
	if err != nil {
		return 0, w.fail(&errs.FieldError{Op: op, Field: name, Offset: w.out.Pos(), Err: err})
	}

	return id, nil
}

// commit accounts for n bytes appended to the stream buffer.
func (w *Writer) commit(op, name string, n int) error {
	if err := w.out.Commit(n); err != nil {
		return w.fail(&errs.FieldError{Op: op, Field: name, Offset: w.out.Pos(), Err: err})
	}

	return nil
}

func (w *Writer) writeInt(op, name string, token format.Token, v int32) error {
	id, err := w.place(op, name)
	if err != nil {
		return err
	}

	buf := w.out.Buffer()
	n := len(*buf)
	*buf = encoding.AppendTag(*buf, w.engine, token, id)
	*buf = encoding.AppendInt(*buf, w.engine, token, v)

	return w.commit(op, name, len(*buf)-n)
}

func (w *Writer) writeDouble(op, name string, token format.Token, v float64) error {
	id, err := w.place(op, name)
	if err != nil {
		return err
	}

	buf := w.out.Buffer()
	n := len(*buf)
	*buf = encoding.AppendTag(*buf, w.engine, token, id)
	*buf = encoding.AppendDouble(*buf, w.engine, token, v)

	return w.commit(op, name, len(*buf)-n)
}

// writeTag writes a token without payload.
func (w *Writer) writeTag(op, name string, token format.Token) error {
	id, err := w.place(op, name)
	if err != nil {
		return err
	}

	buf := w.out.Buffer()
	n := len(*buf)
	*buf = encoding.AppendTag(*buf, w.engine, token, id)

	return w.commit(op, name, len(*buf)-n)
}

// WriteInt32 writes v in the narrowest integer token that holds it.
// Inside a struct name is required; inside an array it must be empty.
func (w *Writer) WriteInt32(name string, v int32) error {
	return w.writeInt("write int32", name, encoding.IntToken(v), v)
}

// WriteInt16 writes v in the narrowest integer token that holds it.
func (w *Writer) WriteInt16(name string, v int16) error {
	return w.writeInt("write int16", name, encoding.ShortToken(v), int32(v))
}

// WriteUint16 writes v in the narrowest unsigned token that holds it.
func (w *Writer) WriteUint16(name string, v uint16) error {
	return w.writeInt("write uint16", name, encoding.UShortToken(v), int32(v))
}

// WriteUint8 writes v as TokenByte, or TokenZero when v is 0.
func (w *Writer) WriteUint8(name string, v uint8) error {
	token := format.TokenByte
	if v == 0 {
		token = format.TokenZero
	}

	return w.writeInt("write uint8", name, token, int32(v))
}

// WriteFloat32 writes v as TokenFloat, or TokenZero for positive zero.
func (w *Writer) WriteFloat32(name string, v float32) error {
	return w.writeDouble("write float32", name, encoding.FloatToken(v), float64(v))
}

// WriteFloat64 writes v as TokenFloat when float32 holds it exactly, as
// TokenZero for positive zero, and as TokenDouble otherwise.
func (w *Writer) WriteFloat64(name string, v float64) error {
	return w.writeDouble("write float64", name, encoding.DoubleToken(v), v)
}

// WriteBool writes v as TokenTrue or TokenFalse.
func (w *Writer) WriteBool(name string, v bool) error {
	return w.writeTag("write bool", name, encoding.BoolToken(v))
}

// WriteString writes s with a 1-byte length when it fits, a 4-byte length otherwise.
func (w *Writer) WriteString(name string, s string) error {
	const op = "write string"
	if len(s) > encoding.MaxLength {
		return w.fail(&errs.FieldError{Op: op, Field: name, Offset: w.out.Pos(), Err: errs.ErrStringTooLong})
	}

	id, err := w.place(op, name)
	if err != nil {
		return err
	}

	buf := w.out.Buffer()
	n := len(*buf)
	*buf = encoding.AppendTag(*buf, w.engine, encoding.StringToken(s), id)
	*buf = encoding.AppendString(*buf, w.engine, s)

	return w.commit(op, name, len(*buf)-n)
}

func (w *Writer) checkDepth(op, name string) error {
	if len(w.frames) > w.maxDepth {
		return w.fail(&errs.FieldError{
			Op: op, Field: name, Offset: w.out.Pos(),
			Expected: "depth <= " + strconv.Itoa(w.maxDepth),
			Err:      errs.ErrLevelOverflow,
		})
	}

	return nil
}

// BeginStruct opens a struct. Structs inside arrays are anonymous.
func (w *Writer) BeginStruct(name string) error {
	const op = "begin struct"
	if err := w.checkDepth(op, name); err != nil {
		return err
	}

	if err := w.writeTag(op, name, format.TokenBeginStruct); err != nil {
		return err
	}
	w.frames = append(w.frames, wframe{name: name})

	return nil
}

// EndStruct closes the innermost struct.
func (w *Writer) EndStruct() error {
	const op = "end struct"
	if err := w.checkOpen(op); err != nil {
		return err
	}

	if err := w.closeFrame(op, false); err != nil {
		return err
	}

	return w.end(op, format.TokenEndStruct)
}

// BeginArray opens an array of exactly size elements.
func (w *Writer) BeginArray(name string, size int) error {
	const op = "begin array"
	if size < 0 || size > encoding.MaxLength {
		return w.fail(&errs.FieldError{
			Op: op, Field: name, Offset: w.out.Pos(),
			Found: strconv.Itoa(size), Err: errs.ErrSizeMismatch,
		})
	}
	if err := w.checkDepth(op, name); err != nil {
		return err
	}

	id, err := w.place(op, name)
	if err != nil {
		return err
	}

	token := encoding.ArrayToken(size)
	buf := w.out.Buffer()
	n := len(*buf)
	*buf = encoding.AppendTag(*buf, w.engine, token, id)
	*buf = encoding.AppendLength(*buf, w.engine, token, size)
	if err := w.commit(op, name, len(*buf)-n); err != nil {
		return err
	}
	w.frames = append(w.frames, wframe{array: true, name: name, size: size})

	return nil
}

// EndArray closes the innermost array. All declared elements must have been written.
func (w *Writer) EndArray() error {
	const op = "end array"
	if err := w.checkOpen(op); err != nil {
		return err
	}

	if err := w.closeFrame(op, true); err != nil {
		return err
	}

	return w.end(op, format.TokenEndArray)
}

// closeFrame validates and pops the innermost frame.
func (w *Writer) closeFrame(op string, array bool) error {
	if len(w.frames) == 1 {
		return w.fail(&errs.FieldError{Op: op, Offset: w.out.Pos(), Err: errs.ErrTooManyEnds})
	}

	top := w.frames[len(w.frames)-1]
	if top.array != array {
		return w.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: w.out.Pos(),
			Expected: frameKind(top.array), Found: frameKind(array),
			Err: errs.ErrUnexpectedEnd,
		})
	}
	if array && top.count != top.size {
		return w.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: w.out.Pos(),
			Expected: sizeString(top.size), Found: strconv.Itoa(top.count),
			Err: errs.ErrSizeMismatch,
		})
	}
	w.frames = w.frames[:len(w.frames)-1]

	return nil
}

func (w *Writer) end(op string, token format.Token) error {
	buf := w.out.Buffer()
	*buf = append(*buf, byte(token))

	return w.commit(op, "", 1)
}

// Sync flushes buffered data and commits the file to durable storage.
func (w *Writer) Sync() error {
	const op = "sync"
	if err := w.checkOpen(op); err != nil {
		return err
	}

	if err := w.out.Sync(); err != nil {
		return w.fail(&errs.FieldError{Op: op, Offset: w.out.Pos(), Err: err})
	}

	return nil
}

// Close terminates the stream, writes the name table and patches its offset
// into the header. Closing with open structs or arrays fails and leaves the
// file without a name table.
func (w *Writer) Close() error {
	const op = "close"
	if w.closed {
		return nil
	}

	if len(w.frames) != 1 {
		top := w.frames[len(w.frames)-1]
		err := w.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: w.out.Pos(),
			Expected: "no open frames", Found: strconv.Itoa(len(w.frames)-1) + " open",
			Err: errs.ErrUnexpectedEnd,
		})

		return errors.Join(err, w.abort())
	}

	if err := w.finalize(); err != nil {
		return errors.Join(w.fail(&errs.FieldError{Op: op, Offset: w.out.Pos(), Err: err}), w.abort())
	}

	w.closed = true
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", errs.ErrIO, err)
	}

	stats := w.Stats()
	w.metrics.ObserveSession(metrics.SessionStats{
		Mode:         w.mode,
		BytesWritten: stats.BytesWritten,
		Names:        stats.Names,
	})
	w.logger.Debug().Int64("bytes", stats.BytesWritten).Int("names", stats.Names).Msg("store closed")

	return nil
}

func (w *Writer) finalize() error {
	buf := w.out.Buffer()
	*buf = append(*buf, byte(format.TokenEnd))
	if err := w.out.Commit(1); err != nil {
		return err
	}

	offset := w.out.Pos()
	buf = w.out.Buffer()
	n := len(*buf)
	table, err := w.names.AppendTo(*buf, w.engine)
	if err != nil {
		return err
	}
	*buf = table
	if err := w.out.Commit(len(table) - n); err != nil {
		return err
	}

	if err := w.out.WriteAt(w.header.OffsetBytes(offset), section.NameTableOffsetPos); err != nil {
		return err
	}
	w.header.NameTableOffset = offset

	return w.out.Finish()
}

// abort flushes what was written, releases the buffer and closes the file
// without writing a name table.
func (w *Writer) abort() error {
	w.closed = true
	err := w.out.Flush()
	w.out.Release()

	return errors.Join(err, w.file.Close())
}

func frameKind(array bool) string {
	if array {
		return "array"
	}

	return "struct"
}
