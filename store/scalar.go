package store

import (
	"strconv"

	"github.com/arloliu/bstruct/encoding"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
)

// kindName returns the Go type a declaration token is read into.
func kindName(want format.Token) string {
	switch want {
	case format.TokenByte:
		return "uint8"
	case format.TokenShort:
		return "int16"
	case format.TokenUShort:
		return "uint16"
	case format.TokenInt:
		return "int32"
	case format.TokenFloat:
		return "float32"
	case format.TokenDouble:
		return "float64"
	case format.TokenTrue:
		return "bool"
	case format.TokenString:
		return "string"
	case format.TokenBeginStruct:
		return "struct"
	case format.TokenBeginArray:
		return "array"
	default:
		return want.String()
	}
}

// accept checks the located token against the declared kind. On mismatch the
// item is left unconsumed and a type error is returned.
func (r *Reader) accept(op, name string, h hit, want format.Token) error {
	var ok bool
	switch want {
	case format.TokenBeginStruct:
		ok = h.token == format.TokenBeginStruct
	case format.TokenBeginArray:
		ok = h.token.IsArray()
	default:
		ok = encoding.Accepts(want, h.token)
	}
	if ok {
		return nil
	}

	top := r.top()
	_ = r.settle(top, h, false)

	return r.fail(&errs.FieldError{
		Op: op, Field: name, Offset: h.offset,
		Expected: kindName(want), Found: h.token.String(),
		Err: errs.ErrTypeMismatch,
	})
}

// number locates a numeric item and decodes it as int64 or float64.
func (r *Reader) number(op, name string, want format.Token, optional bool) (int64, float64, bool, error) {
	h, ok, err := r.locate(op, name, optional)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	if err := r.accept(op, name, h, want); err != nil {
		return 0, 0, false, err
	}

	payload, err := r.in.Next(h.token.PayloadSize())
	if err != nil {
		return 0, 0, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: h.offset, Err: err})
	}

	var (
		i int64
		f float64
	)
	if want == format.TokenFloat || want == format.TokenDouble {
		f, _ = encoding.DecodeDouble(r.engine, h.token, payload)
	} else {
		i, _ = encoding.DecodeInt(r.engine, h.token, payload)
	}

	if err := r.settle(r.top(), h, true); err != nil {
		return 0, 0, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: h.offset, Err: err})
	}

	return i, f, true, nil
}

// ReadInt32 reads an integer field. Byte, short, unsigned short and zero
// tokens widen to int32.
func (r *Reader) ReadInt32(name string) (int32, error) {
	v, _, _, err := r.number("read int32", name, format.TokenInt, false)
	return int32(v), err //nolint:gosec
}

// ReadInt16 reads a 16-bit signed field stored as zero, byte or short.
func (r *Reader) ReadInt16(name string) (int16, error) {
	v, _, _, err := r.number("read int16", name, format.TokenShort, false)
	return int16(v), err //nolint:gosec
}

// ReadUint16 reads a 16-bit unsigned field stored as zero, byte or unsigned short.
func (r *Reader) ReadUint16(name string) (uint16, error) {
	v, _, _, err := r.number("read uint16", name, format.TokenUShort, false)
	return uint16(v), err //nolint:gosec
}

// ReadUint8 reads a byte field stored as zero or byte.
func (r *Reader) ReadUint8(name string) (uint8, error) {
	v, _, _, err := r.number("read uint8", name, format.TokenByte, false)
	return uint8(v), err //nolint:gosec
}

// ReadFloat32 reads a single precision field stored as zero or float.
func (r *Reader) ReadFloat32(name string) (float32, error) {
	_, v, _, err := r.number("read float32", name, format.TokenFloat, false)
	return float32(v), err
}

// ReadFloat64 reads any numeric field as float64.
func (r *Reader) ReadFloat64(name string) (float64, error) {
	_, v, _, err := r.number("read float64", name, format.TokenDouble, false)
	return v, err
}

// ReadBool reads a boolean field.
func (r *Reader) ReadBool(name string) (bool, error) {
	v, _, err := r.readBool("read bool", name, false)
	return v, err
}

func (r *Reader) readBool(op, name string, optional bool) (bool, bool, error) {
	h, ok, err := r.locate(op, name, optional)
	if err != nil || !ok {
		return false, false, err
	}
	if err := r.accept(op, name, h, format.TokenTrue); err != nil {
		return false, false, err
	}

	if err := r.settle(r.top(), h, true); err != nil {
		return false, false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: h.offset, Err: err})
	}

	return h.token == format.TokenTrue, true, nil
}

// ReadString reads a string field.
func (r *Reader) ReadString(name string) (string, error) {
	v, _, err := r.readString("read string", name, false)
	return v, err
}

func (r *Reader) readString(op, name string, optional bool) (string, bool, error) {
	h, ok, err := r.locate(op, name, optional)
	if err != nil || !ok {
		return "", false, err
	}
	if err := r.accept(op, name, h, format.TokenString); err != nil {
		return "", false, err
	}

	n, err := r.length(h.token)
	if err != nil {
		return "", false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: h.offset, Err: err})
	}

	data, err := r.in.Next(n)
	if err != nil {
		return "", false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: h.offset, Err: err})
	}
	s := string(data)

	if err := r.settle(r.top(), h, true); err != nil {
		return "", false, r.fail(&errs.FieldError{Op: op, Field: name, Offset: h.offset, Err: err})
	}

	return s, true, nil
}

// length reads the length prefix of a string or array token.
func (r *Reader) length(token format.Token) (int, error) {
	data, err := r.in.Next(encoding.LengthSize(token))
	if err != nil {
		return 0, err
	}

	n := encoding.DecodeLength(r.engine, token, data)
	if n < 0 {
		return 0, errs.ErrInvalidToken
	}
	// Every element or byte occupies at least one byte before the name table.
	if left := r.header.NameTableOffset - r.in.Pos(); int64(n) > left {
		return 0, errs.ErrLengthOutOfRange
	}

	return n, nil
}

// ReadInt32Default reads an integer field, returning def when the field is
// absent from the current struct or its name is unknown to the file.
func (r *Reader) ReadInt32Default(name string, def int32) (int32, error) {
	v, _, ok, err := r.number("read int32", name, format.TokenInt, true)
	if err != nil || !ok {
		return def, err
	}

	return int32(v), nil //nolint:gosec
}

// ReadInt16Default reads a 16-bit field or returns def when it is absent.
func (r *Reader) ReadInt16Default(name string, def int16) (int16, error) {
	v, _, ok, err := r.number("read int16", name, format.TokenShort, true)
	if err != nil || !ok {
		return def, err
	}

	return int16(v), nil //nolint:gosec
}

// ReadFloat32Default reads a float field or returns def when it is absent.
func (r *Reader) ReadFloat32Default(name string, def float32) (float32, error) {
	_, v, ok, err := r.number("read float32", name, format.TokenFloat, true)
	if err != nil || !ok {
		return def, err
	}

	return float32(v), nil
}

// ReadFloat64Default reads a numeric field or returns def when it is absent.
func (r *Reader) ReadFloat64Default(name string, def float64) (float64, error) {
	_, v, ok, err := r.number("read float64", name, format.TokenDouble, true)
	if err != nil || !ok {
		return def, err
	}

	return v, nil
}

// ReadBoolDefault reads a boolean field or returns def when it is absent.
func (r *Reader) ReadBoolDefault(name string, def bool) (bool, error) {
	v, ok, err := r.readBool("read bool", name, true)
	if err != nil || !ok {
		return def, err
	}

	return v, nil
}

// ReadStringDefault reads a string field or returns def when it is absent.
func (r *Reader) ReadStringDefault(name string, def string) (string, error) {
	v, ok, err := r.readString("read string", name, true)
	if err != nil || !ok {
		return def, err
	}

	return v, nil
}

// IsDefined reports whether the current struct has a field called name. The
// field is not consumed and no diagnostics are emitted; fields passed over
// while probing are remembered and counted as misses like any other scan.
func (r *Reader) IsDefined(name string) (bool, error) {
	const op = "is defined"
	if err := r.checkOpen(op); err != nil {
		return false, err
	}
	if r.top().array {
		return false, nil
	}

	prev := r.SetDiagnostics(false)
	defer r.SetDiagnostics(prev)

	pos := r.in.Pos()
	h, ok, err := r.locate(op, name, true)
	if err != nil || !ok {
		return false, err
	}
	if err := r.settle(r.top(), h, false); err != nil {
		return false, err
	}

	if err := r.in.SeekTo(pos); err != nil {
		return false, err
	}

	return true, nil
}

func sizeString(n int) string {
	return strconv.Itoa(n) + " elements"
}
