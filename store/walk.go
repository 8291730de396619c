package store

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/arloliu/bstruct/encoding"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
	"github.com/arloliu/bstruct/section"
)

// maxDecodePrealloc bounds the capacity reserved for a decoded array before
// its elements are read.
const maxDecodePrealloc = 1024

// Event is one item visited by Walk.
type Event struct {
	// Depth is the nesting level of the item, 0 for top-level fields.
	Depth int
	// Token is the on-disk kind. Ends of structs and arrays are reported too.
	Token format.Token
	// Name is the field name, empty for array elements and end tokens.
	Name string
	// Value is int64, float64, bool or string for scalars and nil otherwise.
	Value any
	// Size is the declared element count of an array.
	Size int
}

// Walk visits every item of the stream in file order. It does not change
// the position or state of field requests made through r.
func (r *Reader) Walk(fn func(Event) error) error {
	const op = "walk"
	if err := r.checkOpen(op); err != nil {
		return err
	}

	saved := r.in.Pos()
	defer func() { _ = r.in.SeekTo(saved) }()

	if err := r.in.SeekTo(section.HeaderSize); err != nil {
		return r.fail(&errs.FieldError{Op: op, Offset: section.HeaderSize, Err: err})
	}

	var ends []format.Token
	for {
		tagOffset := r.in.Pos()
		token, id, err := r.readTag()
		if err != nil {
			return r.fail(&errs.FieldError{Op: op, Offset: tagOffset, Err: err})
		}

		ev := Event{Depth: len(ends), Token: token}
		if id >= 0 {
			ev.Name = r.nameOf(id)
		}

		switch {
		case token == format.TokenEnd:
			if len(ends) != 0 {
				return r.fail(&errs.FieldError{Op: op, Offset: tagOffset, Found: token.String(), Err: errs.ErrUnexpectedEnd})
			}

			return nil
		case token == format.TokenEndStruct || token == format.TokenEndArray:
			if len(ends) == 0 {
				return r.fail(&errs.FieldError{Op: op, Offset: tagOffset, Found: token.String(), Err: errs.ErrTooManyEnds})
			}
			if want := ends[len(ends)-1]; want != token {
				return r.fail(&errs.FieldError{
					Op: op, Offset: tagOffset,
					Expected: want.String(), Found: token.String(),
					Err: errs.ErrUnexpectedEnd,
				})
			}
			ends = ends[:len(ends)-1]
			ev.Depth = len(ends)
		case token == format.TokenBeginStruct:
			ends = append(ends, format.TokenEndStruct)
		case token.IsArray():
			if ev.Size, err = r.length(token); err != nil {
				return r.fail(&errs.FieldError{Op: op, Field: ev.Name, Offset: tagOffset, Err: err})
			}
			b, err := r.in.Peek(1)
			if err != nil {
				return r.fail(&errs.FieldError{Op: op, Field: ev.Name, Offset: tagOffset, Err: err})
			}
			if b[0] == byte(format.TokenIndexArray) {
				if _, err := r.skipIndex(ev.Size); err != nil {
					return r.fail(&errs.FieldError{Op: op, Field: ev.Name, Offset: tagOffset, Err: err})
				}
			}
			ends = append(ends, format.TokenEndArray)
		case token == format.TokenIndexArray:
			return r.fail(&errs.FieldError{Op: op, Offset: tagOffset, Found: token.String(), Err: errs.ErrInvalidToken})
		default:
			if ev.Value, err = r.scalarValue(token); err != nil {
				return r.fail(&errs.FieldError{Op: op, Field: ev.Name, Offset: tagOffset, Err: err})
			}
		}

		if len(ends) > r.maxDepth {
			return r.fail(&errs.FieldError{Op: op, Field: ev.Name, Offset: tagOffset, Err: errs.ErrLevelOverflow})
		}

		if err := fn(ev); err != nil {
			return err
		}
	}
}

// scalarValue decodes the payload of a scalar token.
func (r *Reader) scalarValue(token format.Token) (any, error) {
	switch {
	case token.IsBool():
		return token == format.TokenTrue, nil
	case token.IsString():
		n, err := r.length(token)
		if err != nil {
			return nil, err
		}
		data, err := r.in.Next(n)
		if err != nil {
			return nil, err
		}

		return string(data), nil
	case token == format.TokenFloat || token == format.TokenDouble:
		data, err := r.in.Next(token.PayloadSize())
		if err != nil {
			return nil, err
		}
		v, _ := encoding.DecodeDouble(r.engine, token, data)

		return v, nil
	default:
		data, err := r.in.Next(token.PayloadSize())
		if err != nil {
			return nil, err
		}
		v, _ := encoding.DecodeInt(r.engine, token, data)

		return v, nil
	}
}

// Object is a decoded struct that keeps its fields in file order.
type Object struct {
	Keys   []string
	Values []any
}

// Get returns the value of the first field called key.
func (o *Object) Get(key string) (any, bool) {
	for i, k := range o.Keys {
		if k == key {
			return o.Values[i], true
		}
	}

	return nil, false
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.Keys)
}

// MarshalJSON encodes the object with its keys in file order. Non-finite
// floats, which JSON cannot represent, are encoded as strings.
func (o *Object) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, k := range o.Keys {
		if i > 0 {
			buf = append(buf, ',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')

		val, err := json.Marshal(jsonValue(o.Values[i]))
		if err != nil {
			return nil, err
		}
		buf = append(buf, val...)
	}

	return append(buf, '}'), nil
}

func jsonValue(v any) any {
	switch v := v.(type) {
	case float64:
		switch {
		case math.IsNaN(v):
			return "NaN"
		case math.IsInf(v, 1):
			return "+Inf"
		case math.IsInf(v, -1):
			return "-Inf"
		}

		return v
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = jsonValue(e)
		}

		return out
	default:
		return v
	}
}

// Decode reads the whole stream into memory. Structs become *Object, arrays
// []any and scalars int64, float64, bool or string.
func (r *Reader) Decode() (*Object, error) {
	root := &Object{}

	type level struct {
		obj *Object
		arr []any
	}
	stack := []level{{obj: root}}

	add := func(name string, v any) {
		top := &stack[len(stack)-1]
		if top.obj != nil {
			top.obj.Keys = append(top.obj.Keys, name)
			top.obj.Values = append(top.obj.Values, v)
		} else {
			top.arr = append(top.arr, v)
		}
	}

	names := make([]string, 0, 8)
	err := r.Walk(func(ev Event) error {
		switch {
		case ev.Token == format.TokenBeginStruct:
			names = append(names, ev.Name)
			stack = append(stack, level{obj: &Object{}})
		case ev.Token.IsArray():
			names = append(names, ev.Name)
			stack = append(stack, level{arr: make([]any, 0, min(ev.Size, maxDecodePrealloc))})
		case ev.Token == format.TokenEndStruct || ev.Token == format.TokenEndArray:
			done := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			name := names[len(names)-1]
			names = names[:len(names)-1]

			if done.obj != nil {
				add(name, done.obj)
			} else {
				add(name, done.arr)
			}
		default:
			add(ev.Name, ev.Value)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: %d containers left open", errs.ErrUnexpectedEnd, len(stack)-1)
	}

	return root, nil
}
