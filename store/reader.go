package store

import (
	"fmt"
	"io"
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

// field is a struct member whose tag has been scanned.
type field struct {
	id     int
	token  format.Token
	offset int64 // payload offset, just past the tag and name id
	read   bool
}

// hit is a located item with the stream positioned at its payload.
type hit struct {
	token  format.Token
	offset int64
	field  int  // index into the frame's fields, -1 for array elements
	inline bool // found at the frame frontier
}

// frame is one open struct or array of a read session.
type frame struct {
	array  bool
	name   string
	fields []field
	// frontier is the offset of the first tag not yet scanned.
	frontier int64
	// size and remaining count the elements of an array.
	size      int
	remaining int
	// index is the offset of the first slot of an index array, -1 if none.
	index  int64
	origin hit
}

// Reader is a read session over a closed store file.
//
// Fields of a struct may be requested in any order. Requests are answered by
// scanning forward from the furthest position reached in the struct; fields
// passed over on the way are remembered, so a later request for them seeks
// directly to their payload.
//
// A Reader is not safe for concurrent use. Independent Readers may share a file.
type Reader struct {
	session

	in     *stream.Reader
	header section.Header
	names  *nametable.Reader
	frames []frame

	misses int64
	unread int64

	skipStack []format.Token
	slot      [8]byte
}

// Open opens the store file at path for reading and loads its name table.
//
// Parameters:
//   - path: File path
//   - opts: Session options; WithMmap maps the file into memory
//
// Returns:
//   - *Reader: Read session positioned at the start of the top-level struct
//   - error: ErrNoNameTable if the file was never closed, or another format or I/O error
func Open(path string, opts ...Option) (*Reader, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	in, err := stream.OpenFile(path, cfg.mmap)
	if err != nil {
		return nil, err
	}

	return newReader(in, path, cfg)
}

// NewReader opens a read session over size bytes of src. The name is used in
// error messages only.
func NewReader(name string, src io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newReader(stream.NewReader(src, size), name, cfg)
}

func newReader(in *stream.Reader, path string, cfg *Config) (*Reader, error) {
	header, entries, err := loadTail(in)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	names, err := nametable.NewReader(entries)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.engine = header.Engine
	r := &Reader{
		session:   newSession(path, metrics.ModeRead, cfg),
		in:        in,
		header:    header,
		names:     names,
		frames:    make([]frame, 1, cfg.maxDepth+1),
		skipStack: make([]format.Token, 0, 16),
	}
	r.frames[0] = frame{frontier: section.HeaderSize, index: -1, origin: hit{field: -1}}

	r.logger.Debug().
		Str("byte_order", endian.Name(header.Engine)).
		Bool("swapped", header.IsSwapped()).
		Bool("mmap", in.IsMapped()).
		Int("names", names.Len()).
		Msg("store opened")

	return r, nil
}

// loadTail parses the header and the name table at the end of the file.
func loadTail(in *stream.Reader) (section.Header, []encoding.NameEntry, error) {
	size := in.Size()
	if size < section.HeaderSize {
		return section.Header{}, nil, fmt.Errorf("%w: file size %d", errs.ErrInvalidHeader, size)
	}

	data := make([]byte, section.HeaderSize)
	if err := in.ReadAt(data, 0); err != nil {
		return section.Header{}, nil, err
	}

	header, err := section.ParseHeader(data)
	if err != nil {
		return section.Header{}, nil, err
	}

	offset := header.NameTableOffset
	if offset == section.NameTablePlaceholder {
		return section.Header{}, nil, errs.ErrNoNameTable
	}
	if offset <= section.HeaderSize || offset > size {
		return section.Header{}, nil, fmt.Errorf("%w: offset %d outside (%d, %d]",
			errs.ErrInvalidNameTable, offset, section.HeaderSize, size)
	}

	data = make([]byte, size-offset)
	if err := in.ReadAt(data, offset); err != nil {
		return section.Header{}, nil, err
	}

	entries, _, err := encoding.DecodeNameTable(data, header.Engine)
	if err != nil {
		return section.Header{}, nil, err
	}

	return header, entries, nil
}

// Header returns the parsed file header.
func (r *Reader) Header() section.Header {
	return r.header
}

// Names returns the name table in id order.
func (r *Reader) Names() []encoding.NameEntry {
	return r.names.Entries()
}

// Fingerprint returns the xxhash64 of the name table in id order. Files whose
// writers interned the same names in the same order share a fingerprint.
func (r *Reader) Fingerprint() uint64 {
	return r.names.Fingerprint()
}

// Misses returns the number of fields scanned past while resolving requests
// made out of on-disk order. Each field is counted at most once.
func (r *Reader) Misses() int64 {
	return r.misses
}

// Unread returns the number of struct fields that were present on disk but
// never requested before their struct was closed.
func (r *Reader) Unread() int64 {
	return r.unread
}

// Depth returns the number of open structs and arrays.
func (r *Reader) Depth() int {
	return len(r.frames) - 1
}

// Stats returns the session counters.
func (r *Reader) Stats() Stats {
	return Stats{
		Misses:    r.misses,
		Unread:    r.unread,
		BytesRead: r.in.BytesRead(),
		Names:     r.names.Len(),
	}
}

// Close releases the file and all open frames.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	stats := r.Stats()
	r.frames = nil
	err := r.in.Close()

	r.metrics.ObserveSession(metrics.SessionStats{
		Mode:      r.mode,
		Misses:    stats.Misses,
		Unread:    stats.Unread,
		BytesRead: stats.BytesRead,
		Names:     stats.Names,
	})
	r.logger.Debug().Int64("misses", stats.Misses).Int64("unread", stats.Unread).Msg("store closed")

	return err
}

func (r *Reader) top() *frame {
	return &r.frames[len(r.frames)-1]
}

// readTag reads the tag at the current position.
func (r *Reader) readTag() (format.Token, int, error) {
	b, err := r.in.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	token, idSize := encoding.ParseTag(b)
	if !token.IsValid() {
		return 0, 0, fmt.Errorf("%w: tag 0x%02x", errs.ErrInvalidToken, b)
	}
	if idSize == 0 {
		return token, encoding.Anonymous, nil
	}

	data, err := r.in.Next(idSize)
	if err != nil {
		return 0, 0, err
	}

	return token, encoding.DecodeID(r.engine, data), nil
}

// endToken returns the token closing the current struct level.
func (r *Reader) endToken() format.Token {
	if len(r.frames) == 1 {
		return format.TokenEnd
	}

	return format.TokenEndStruct
}

// locate positions the stream at the payload of the item requested by name.
//
// In an array the next element is returned and name must be empty. In a
// struct the field is looked up among the fields already scanned, then by
// scanning forward from the frontier. With optional set, a field that is
// absent or whose name is not in the table returns false without an error.
func (r *Reader) locate(op, name string, optional bool) (hit, bool, error) {
	if err := r.checkOpen(op); err != nil {
		return hit{}, false, err
	}

	top := r.top()
	if top.array {
		return r.next(op, name, top)
	}

	if name == "" {
		return hit{}, false, r.fail(&errs.FieldError{Op: op, Offset: top.frontier, Err: errs.ErrNameRequired})
	}

	id, err := r.names.Lookup(name)
	if err != nil {
		if optional {
			return hit{}, false, nil
		}

		return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: -1, Err: errs.ErrNameNotInTable})
	}

	for i, f := range top.fields {
		if f.id == id {
			if err := r.in.SeekTo(f.offset); err != nil {
				return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: f.offset, Err: err})
			}

			return hit{token: f.token, offset: f.offset, field: i}, true, nil
		}
	}

	return r.scan(op, name, id, optional, top)
}

// next returns the next element of an array.
func (r *Reader) next(op, name string, top *frame) (hit, bool, error) {
	if name != "" {
		return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: top.frontier, Err: errs.ErrNameForbidden})
	}
	if top.remaining == 0 {
		return hit{}, false, r.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: top.frontier,
			Expected: sizeString(top.size), Found: "read past end",
			Err: errs.ErrSizeMismatch,
		})
	}

	if err := r.in.SeekTo(top.frontier); err != nil {
		return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: top.frontier, Err: err})
	}

	token, id, err := r.readTag()
	switch {
	case err != nil:
		return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: top.frontier, Err: err})
	case token.IsEnd() || token == format.TokenIndexArray:
		return hit{}, false, r.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: top.frontier,
			Expected: "element", Found: token.String(),
			Err: errs.ErrUnexpectedEnd,
		})
	case id != encoding.Anonymous:
		return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: top.frontier, Err: errs.ErrNameForbidden})
	}
	top.remaining--

	return hit{token: token, offset: r.in.Pos(), field: -1, inline: true}, true, nil
}

// scan resolves a struct field by reading forward from the frontier. Every
// field passed over is remembered and counted as a miss.
func (r *Reader) scan(op, name string, id int, optional bool, top *frame) (hit, bool, error) {
	if err := r.in.SeekTo(top.frontier); err != nil {
		return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: top.frontier, Err: err})
	}

	end := r.endToken()
	for {
		tagOffset := r.in.Pos()
		token, fid, err := r.readTag()
		if err != nil {
			return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: tagOffset, Err: err})
		}

		switch {
		case token == end:
			if optional {
				return hit{}, false, nil
			}

			return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: tagOffset, Err: errs.ErrFieldNotFound})
		case token.IsEnd() || token == format.TokenIndexArray:
			return hit{}, false, r.fail(&errs.FieldError{
				Op: op, Field: name, Offset: tagOffset,
				Expected: end.String(), Found: token.String(),
				Err: errs.ErrUnexpectedEnd,
			})
		case fid == encoding.Anonymous:
			return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: tagOffset, Err: errs.ErrNameRequired})
		}

		top.fields = append(top.fields, field{id: fid, token: token, offset: r.in.Pos()})
		if fid == id {
			return hit{token: token, offset: r.in.Pos(), field: len(top.fields) - 1, inline: true}, true, nil
		}

		r.misses++
		if err := r.skipValue(token); err != nil {
			return hit{}, false, r.fail(&errs.FieldError{Op: op, Field: r.nameOf(fid), Offset: tagOffset, Err: err})
		}
		top.frontier = r.in.Pos()
	}
}

// settle completes a located item. A consumed item is marked read; an item
// found at the frontier moves the frontier past its value, skipping it first
// when it was not consumed.
func (r *Reader) settle(f *frame, h hit, consumed bool) error {
	if h.field >= 0 && consumed {
		f.fields[h.field].read = true
	}
	if !h.inline {
		return nil
	}

	if !consumed {
		if err := r.in.SeekTo(h.offset); err != nil {
			return err
		}
		if err := r.skipValue(h.token); err != nil {
			return err
		}
	}
	f.frontier = r.in.Pos()

	return nil
}

func (r *Reader) nameOf(id int) string {
	name, ok := r.names.Name(id)
	if !ok {
		return "#" + strconv.Itoa(id)
	}

	return name
}
