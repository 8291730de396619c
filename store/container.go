package store

import (
	"strconv"

	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
)

func (r *Reader) checkDepth(op, name string) error {
	if len(r.frames) > r.maxDepth {
		return r.fail(&errs.FieldError{
			Op: op, Field: name, Offset: -1,
			Expected: "depth <= " + strconv.Itoa(r.maxDepth),
			Err:      errs.ErrLevelOverflow,
		})
	}

	return nil
}

// BeginStruct enters the struct called name. Structs inside arrays are
// anonymous and are entered with an empty name.
func (r *Reader) BeginStruct(name string) error {
	const op = "begin struct"
	if err := r.checkDepth(op, name); err != nil {
		return err
	}

	h, _, err := r.locate(op, name, false)
	if err != nil {
		return err
	}
	if err := r.accept(op, name, h, format.TokenBeginStruct); err != nil {
		return err
	}

	r.frames = append(r.frames, frame{name: name, frontier: r.in.Pos(), index: -1, origin: h})

	return nil
}

// EndStruct leaves the innermost struct, which must have been entered as name.
// Fields that were never requested are skipped and counted as unread.
func (r *Reader) EndStruct(name string) error {
	const op = "end struct"
	if err := r.checkOpen(op); err != nil {
		return err
	}
	if len(r.frames) == 1 {
		return r.fail(&errs.FieldError{Op: op, Field: name, Offset: -1, Err: errs.ErrTooManyEnds})
	}

	top := r.top()
	if top.array {
		return r.fail(&errs.FieldError{
			Op: op, Field: name, Offset: top.frontier,
			Expected: "end array", Found: "end struct",
			Err: errs.ErrUnexpectedEnd,
		})
	}
	if top.name != name {
		return r.fail(&errs.FieldError{
			Op: op, Field: name, Offset: top.frontier,
			Expected: quoteName(top.name), Found: quoteName(name),
			Err: errs.ErrNameMismatch,
		})
	}

	if err := r.in.SeekTo(top.frontier); err != nil {
		return r.fail(&errs.FieldError{Op: op, Field: name, Offset: top.frontier, Err: err})
	}

	var drained int64
	for {
		tagOffset := r.in.Pos()
		token, id, err := r.readTag()
		if err != nil {
			return r.fail(&errs.FieldError{Op: op, Field: name, Offset: tagOffset, Err: err})
		}
		if token == format.TokenEndStruct {
			break
		}
		if token.IsEnd() || token == format.TokenIndexArray {
			return r.fail(&errs.FieldError{
				Op: op, Field: name, Offset: tagOffset,
				Expected: format.TokenEndStruct.String(), Found: token.String(),
				Err: errs.ErrUnexpectedEnd,
			})
		}
		if id < 0 {
			return r.fail(&errs.FieldError{Op: op, Field: name, Offset: tagOffset, Err: errs.ErrNameRequired})
		}
		if err := r.skipValue(token); err != nil {
			return r.fail(&errs.FieldError{Op: op, Field: r.nameOf(id), Offset: tagOffset, Err: err})
		}
		drained++
	}

	for _, f := range top.fields {
		if !f.read {
			drained++
		}
	}
	if drained > 0 {
		r.unread += drained
		r.logger.Debug().Str("struct", name).Int64("unread", drained).Msg("struct closed with unread fields")
	}

	return r.pop(op, name)
}

// pop removes the innermost frame and settles the item it was opened from.
func (r *Reader) pop(op, name string) error {
	origin := r.top().origin
	r.frames = r.frames[:len(r.frames)-1]

	if err := r.settle(r.top(), origin, true); err != nil {
		return r.fail(&errs.FieldError{Op: op, Field: name, Offset: origin.offset, Err: err})
	}

	return nil
}

// BeginArray enters the array called name and returns its declared size.
// An index array stored at its start is loaded for SeekIndex and is otherwise
// skipped transparently.
func (r *Reader) BeginArray(name string) (int, error) {
	const op = "begin array"
	if err := r.checkDepth(op, name); err != nil {
		return 0, err
	}

	h, _, err := r.locate(op, name, false)
	if err != nil {
		return 0, err
	}
	if err := r.accept(op, name, h, format.TokenBeginArray); err != nil {
		return 0, err
	}

	size, err := r.length(h.token)
	if err != nil {
		return 0, r.fail(&errs.FieldError{Op: op, Field: name, Offset: h.offset, Err: err})
	}

	f := frame{array: true, name: name, size: size, remaining: size, index: -1, origin: h}

	b, err := r.in.Peek(1)
	if err != nil {
		return 0, r.fail(&errs.FieldError{Op: op, Field: name, Offset: r.in.Pos(), Err: err})
	}
	if b[0] == byte(format.TokenIndexArray) {
		base, err := r.skipIndex(size)
		if err != nil {
			return 0, r.fail(&errs.FieldError{Op: op, Field: name, Offset: r.in.Pos(), Err: err})
		}
		f.index = base
	}
	f.frontier = r.in.Pos()
	r.frames = append(r.frames, f)

	return size, nil
}

// beginSized enters an array that must hold exactly size elements.
func (r *Reader) beginSized(op, name string, size int) error {
	n, err := r.BeginArray(name)
	if err != nil {
		return err
	}
	if n != size {
		return r.fail(&errs.FieldError{
			Op: op, Field: name, Offset: r.top().frontier,
			Expected: sizeString(size), Found: sizeString(n),
			Err: errs.ErrSizeMismatch,
		})
	}

	return nil
}

// EndArray leaves the innermost array, skipping elements that were not read.
func (r *Reader) EndArray() error {
	const op = "end array"
	if err := r.checkOpen(op); err != nil {
		return err
	}
	if len(r.frames) == 1 {
		return r.fail(&errs.FieldError{Op: op, Offset: -1, Err: errs.ErrTooManyEnds})
	}

	top := r.top()
	if !top.array {
		return r.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: top.frontier,
			Expected: "end struct", Found: "end array",
			Err: errs.ErrUnexpectedEnd,
		})
	}

	if err := r.fastForward(top); err != nil {
		return r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: top.frontier, Err: err})
	}

	if err := r.in.SeekTo(top.frontier); err != nil {
		return r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: top.frontier, Err: err})
	}

	for ; top.remaining > 0; top.remaining-- {
		tagOffset := r.in.Pos()
		token, _, err := r.readTag()
		if err != nil {
			return r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: tagOffset, Err: err})
		}
		if token.IsEnd() || token == format.TokenIndexArray {
			return r.fail(&errs.FieldError{
				Op: op, Field: top.name, Offset: tagOffset,
				Expected: sizeString(top.size), Found: token.String(),
				Err: errs.ErrUnexpectedEnd,
			})
		}
		if err := r.skipValue(token); err != nil {
			return r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: tagOffset, Err: err})
		}
	}

	tagOffset := r.in.Pos()
	token, _, err := r.readTag()
	if err != nil {
		return r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: tagOffset, Err: err})
	}
	if token != format.TokenEndArray {
		return r.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: tagOffset,
			Expected: format.TokenEndArray.String(), Found: token.String(),
			Err: errs.ErrSizeMismatch,
		})
	}

	return r.pop(op, top.name)
}

func quoteName(name string) string {
	if name == "" {
		return "anonymous"
	}

	return "'" + name + "'"
}
