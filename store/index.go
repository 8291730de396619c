package store

import (
	"fmt"
	"strconv"

	"github.com/arloliu/bstruct/encoding"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
	"github.com/arloliu/bstruct/section"
)

// slotSize is the size of one index array slot.
const slotSize = 8

// ReserveIndexArray opens an array of size elements and reserves an index
// array of size zeroed slots at its start. The caller writes the elements,
// records Offset before each one and patches it with PatchIndex. The array is
// closed with EndArray as usual.
//
// Parameters:
//   - name: Array name, empty inside another array
//   - size: Number of elements and slots
//
// Returns:
//   - int64: File offset of slot 0, the base for PatchIndex
//   - error: Placement or I/O error
func (w *Writer) ReserveIndexArray(name string, size int) (int64, error) {
	const op = "reserve index"
	if err := w.BeginArray(name, size); err != nil {
		return 0, err
	}

	buf := w.out.Buffer()
	n := len(*buf)
	*buf = encoding.AppendTag(*buf, w.engine, format.TokenIndexArray, encoding.Anonymous)
	*buf = w.engine.AppendUint32(*buf, uint32(size)) //nolint:gosec
	if err := w.commit(op, name, len(*buf)-n); err != nil {
		return 0, err
	}

	base, err := w.out.Reserve(size * slotSize)
	if err != nil {
		return 0, w.fail(&errs.FieldError{Op: op, Field: name, Offset: w.out.Pos(), Err: err})
	}
	if w.indexes == nil {
		w.indexes = make(map[int64]int)
	}
	w.indexes[base] = size

	return base, nil
}

// PatchIndex writes offsets into consecutive slots starting at slot first of
// the index array reserved at base. Each slot should be patched exactly once
// before the file is closed. base must come from ReserveIndexArray in the same
// session and the slots must lie within the reserved size.
func (w *Writer) PatchIndex(base int64, first int, offsets ...int64) error {
	const op = "patch index"
	if err := w.checkOpen(op); err != nil {
		return err
	}
	if base < section.HeaderSize || first < 0 {
		return w.fail(&errs.FieldError{
			Op: op, Offset: base,
			Found: "slot " + strconv.Itoa(first),
			Err:   fmt.Errorf("%w: invalid index slot", errs.ErrFormat),
		})
	}

	size, ok := w.indexes[base]
	if !ok || first+len(offsets) > size {
		return w.fail(&errs.FieldError{
			Op: op, Offset: base,
			Expected: strconv.Itoa(size) + " slots",
			Found:    "slots " + strconv.Itoa(first) + "-" + strconv.Itoa(first+len(offsets)-1),
			Err:      fmt.Errorf("%w: slots outside reserved index array", errs.ErrSizeMismatch),
		})
	}

	w.scratch = w.scratch[:0]
	for _, off := range offsets {
		w.scratch = w.engine.AppendUint64(w.scratch, uint64(off)) //nolint:gosec
	}

	at := base + int64(first)*slotSize
	if err := w.out.WriteAt(w.scratch, at); err != nil {
		return w.fail(&errs.FieldError{Op: op, Offset: at, Err: err})
	}

	return nil
}

// skipIndex consumes the index array tag following an array header and
// returns the offset of its first slot.
func (r *Reader) skipIndex(size int) (int64, error) {
	if _, err := r.in.Next(1); err != nil {
		return 0, err
	}

	data, err := r.in.Next(4)
	if err != nil {
		return 0, err
	}
	if n := int(int32(r.engine.Uint32(data))); n != size { //nolint:gosec
		return 0, fmt.Errorf("%w: index holds %d slots for %d elements", errs.ErrSizeMismatch, n, size)
	}

	base := r.in.Pos()
	if err := r.in.Skip(int64(size) * slotSize); err != nil {
		return 0, err
	}

	return base, nil
}

// slotOffset reads slot i of the index array at base.
func (r *Reader) slotOffset(base int64, i int) (int64, error) {
	if err := r.in.ReadAt(r.slot[:], base+int64(i)*slotSize); err != nil {
		return 0, err
	}

	return int64(r.engine.Uint64(r.slot[:])), nil //nolint:gosec
}

// inStream reports whether off may hold an element tag.
func (r *Reader) inStream(off int64) bool {
	return off >= section.HeaderSize && off < r.header.NameTableOffset
}

// fastForward moves an indexed array to its last element so closing it does
// not scan the elements in between.
func (r *Reader) fastForward(top *frame) error {
	if top.index < 0 || top.remaining <= 1 {
		return nil
	}

	off, err := r.slotOffset(top.index, top.size-1)
	if err != nil {
		return err
	}
	if off > top.frontier && r.inStream(off) {
		top.frontier = off
		top.remaining = 1
	}

	return nil
}

// IsIndexed reports whether the innermost frame is an array with an index.
func (r *Reader) IsIndexed() bool {
	if r.closed {
		return false
	}
	top := r.top()
	return top.array && top.index >= 0
}

// SeekIndex positions the innermost array at element slot using its index
// array, so the next read returns that element. Elements after it can be read
// sequentially.
//
// Returns:
//   - error: ErrNotIndexed, ErrSizeMismatch for a slot out of range, or
//     ErrUnpatchedSlot if the slot was never patched
func (r *Reader) SeekIndex(slot int) error {
	const op = "seek index"
	if err := r.checkOpen(op); err != nil {
		return err
	}

	top := r.top()
	if !top.array || top.index < 0 {
		return r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: -1, Err: errs.ErrNotIndexed})
	}
	if slot < 0 || slot >= top.size {
		return r.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: top.index,
			Expected: "slot < " + strconv.Itoa(top.size), Found: strconv.Itoa(slot),
			Err: errs.ErrSizeMismatch,
		})
	}

	at := top.index + int64(slot)*slotSize
	off, err := r.slotOffset(top.index, slot)
	if err != nil {
		return r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: at, Err: err})
	}
	if off == 0 {
		return r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: at, Found: "slot " + strconv.Itoa(slot), Err: errs.ErrUnpatchedSlot})
	}
	if !r.inStream(off) {
		return r.fail(&errs.FieldError{
			Op: op, Field: top.name, Offset: at,
			Err: fmt.Errorf("%w: slot %d points to %d outside the stream", errs.ErrFormat, slot, off),
		})
	}

	top.frontier = off
	top.remaining = top.size - slot

	return nil
}

// ReadIndexArray returns every slot of the innermost array's index.
func (r *Reader) ReadIndexArray() ([]int64, error) {
	const op = "read index"
	if err := r.checkOpen(op); err != nil {
		return nil, err
	}

	top := r.top()
	if !top.array || top.index < 0 {
		return nil, r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: -1, Err: errs.ErrNotIndexed})
	}

	data := make([]byte, top.size*slotSize)
	if err := r.in.ReadAt(data, top.index); err != nil {
		return nil, r.fail(&errs.FieldError{Op: op, Field: top.name, Offset: top.index, Err: err})
	}

	offsets := make([]int64, top.size)
	for i := range offsets {
		offsets[i] = int64(r.engine.Uint64(data[i*slotSize:])) //nolint:gosec
	}

	return offsets, nil
}
