package store

import (
	"bytes"
	"errors"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	testifyrequire "github.com/stretchr/testify/require"

	"github.com/arloliu/bstruct/encoding"
	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
	"github.com/arloliu/bstruct/section"
)

func TestReader_ReversedOrder(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) { writeCell(t, w) })
	r := open(t, path)

	require.NoError(r.BeginStruct("cell"))

	values, err := r.ReadVarFloat64Array("values")
	require.NoError(err)
	require.Equal([]float64{1.5, 0, -3}, values)

	name, err := r.ReadString("name")
	require.NoError(err)
	require.Equal("cellA", name)

	size, err := r.ReadInt32("size")
	require.NoError(err)
	require.Equal(int32(0), size)

	require.NoError(r.EndStruct("cell"))
	require.Equal(int64(2), r.Misses())
	require.Equal(int64(0), r.Unread())
}

func TestReader_InOrder(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) { writeCell(t, w) })
	r := open(t, path)

	require.NoError(r.BeginStruct("cell"))
	size, err := r.ReadInt32("size")
	require.NoError(err)
	name, err := r.ReadString("name")
	require.NoError(err)
	values := make([]float64, 3)
	require.NoError(r.ReadFloat64Array("values", values))
	require.NoError(r.EndStruct("cell"))

	require.Equal(int32(0), size)
	require.Equal("cellA", name)
	require.Equal([]float64{1.5, 0, -3}, values)
	require.Equal(int64(0), r.Misses())
}

func TestReader_RoundTripIntegers(t *testing.T) {
	values := []struct {
		v     int32
		token format.Token
	}{
		{0, format.TokenZero},
		{1, format.TokenByte},
		{255, format.TokenByte},
		{256, format.TokenShort},
		{32767, format.TokenShort},
		{32768, format.TokenUShort},
		{65535, format.TokenUShort},
		{65536, format.TokenInt},
		{math.MaxInt32, format.TokenInt},
		{-1, format.TokenShort},
		{math.MinInt16, format.TokenShort},
		{math.MinInt16 - 1, format.TokenInt},
		{math.MinInt32, format.TokenInt},
	}

	require := require.New(t)
	path := build(t, func(w *Writer) {
		for i, tt := range values {
			require.NoError(w.WriteInt32(fieldName(i), tt.v))
		}
	})

	r := open(t, path)
	tokens := map[string]format.Token{}
	require.NoError(r.Walk(func(ev Event) error {
		tokens[ev.Name] = ev.Token
		return nil
	}))

	for i, tt := range values {
		got, err := r.ReadInt32(fieldName(i))
		require.NoError(err)
		require.Equal(tt.v, got)
		require.Equal(tt.token, tokens[fieldName(i)], "value %d", tt.v)
	}
	require.Equal(int64(0), r.Misses())
}

func TestReader_RoundTripNarrowTypes(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.WriteInt16("i16min", math.MinInt16))
		require.NoError(w.WriteInt16("i16max", math.MaxInt16))
		require.NoError(w.WriteUint16("u16", math.MaxUint16))
		require.NoError(w.WriteUint16("u16small", 200))
		require.NoError(w.WriteUint8("u8", 255))
		require.NoError(w.WriteUint8("u8zero", 0))
		require.NoError(w.WriteFloat32("f32", 3.25))
		require.NoError(w.WriteFloat32("f32max", math.MaxFloat32))
		require.NoError(w.WriteBool("yes", true))
		require.NoError(w.WriteBool("no", false))
	})

	r := open(t, path)

	i16, err := r.ReadInt16("i16min")
	require.NoError(err)
	require.Equal(int16(math.MinInt16), i16)
	i16, err = r.ReadInt16("i16max")
	require.NoError(err)
	require.Equal(int16(math.MaxInt16), i16)

	u16, err := r.ReadUint16("u16")
	require.NoError(err)
	require.Equal(uint16(math.MaxUint16), u16)
	u16, err = r.ReadUint16("u16small")
	require.NoError(err)
	require.Equal(uint16(200), u16)

	u8, err := r.ReadUint8("u8")
	require.NoError(err)
	require.Equal(uint8(255), u8)
	u8, err = r.ReadUint8("u8zero")
	require.NoError(err)
	require.Equal(uint8(0), u8)

	f32, err := r.ReadFloat32("f32")
	require.NoError(err)
	require.InDelta(3.25, f32, 0)
	f32, err = r.ReadFloat32("f32max")
	require.NoError(err)
	require.Equal(float32(math.MaxFloat32), f32)

	yes, err := r.ReadBool("yes")
	require.NoError(err)
	require.True(yes)
	no, err := r.ReadBool("no")
	require.NoError(err)
	require.False(no)

	// narrow values widen into wider declarations
	wide, err := r.ReadInt32("u16")
	require.NoError(err)
	require.Equal(int32(math.MaxUint16), wide)
	d, err := r.ReadFloat64("i16min")
	require.NoError(err)
	require.InDelta(float64(math.MinInt16), d, 0)
}

func TestReader_RoundTripFloats(t *testing.T) {
	values := []struct {
		name  string
		v     float64
		token format.Token
	}{
		{"zero", 0, format.TokenZero},
		{"negzero", math.Copysign(0, -1), format.TokenDouble},
		{"half", 1.5, format.TokenFloat},
		{"tenth", 0.1, format.TokenDouble},
		{"nan", math.NaN(), format.TokenDouble},
		{"inf", math.Inf(1), format.TokenFloat},
		{"neginf", math.Inf(-1), format.TokenFloat},
		{"max", math.MaxFloat64, format.TokenDouble},
		{"tiny", math.SmallestNonzeroFloat64, format.TokenDouble},
	}

	require := require.New(t)
	path := build(t, func(w *Writer) {
		for _, tt := range values {
			require.NoError(w.WriteFloat64(tt.name, tt.v))
		}
	})

	r := open(t, path)
	tokens := map[string]format.Token{}
	require.NoError(r.Walk(func(ev Event) error {
		tokens[ev.Name] = ev.Token
		return nil
	}))

	for _, tt := range values {
		t.Run(tt.name, func(t *testing.T) {
			req := testifyrequire.New(t)
			got, err := r.ReadFloat64(tt.name)
			req.NoError(err)
			req.Equal(tt.token, tokens[tt.name])
			if math.IsNaN(tt.v) {
				req.True(math.IsNaN(got))
				return
			}
			req.Equal(math.Float64bits(tt.v), math.Float64bits(got))
		})
	}
}

func TestReader_RoundTripStrings(t *testing.T) {
	values := map[string]string{
		"empty": "",
		"one":   "a",
		"short": strings.Repeat("s", 255),
		"long":  strings.Repeat("l", 256),
		"huge":  strings.Repeat("h", 100000),
		"utf8":  "grüße, 世界",
	}

	require := require.New(t)
	path := build(t, func(w *Writer) {
		for name, v := range values {
			require.NoError(w.WriteString(name, v))
		}
	})

	r := open(t, path)
	for name, want := range values {
		got, err := r.ReadString(name)
		require.NoError(err)
		require.Equal(want, got, name)
	}
}

func TestReader_RoundTripArrays(t *testing.T) {
	require := require.New(t)

	sizes := []int{0, 1, 255, 256, 1000}
	path := build(t, func(w *Writer) {
		for _, n := range sizes {
			ints := make([]int32, n)
			doubles := make([]float64, n)
			for i := range n {
				ints[i] = int32(i * 1000)
				doubles[i] = float64(i) / 3
			}
			require.NoError(w.WriteInt32Array(fieldName(n)+"i", ints))
			require.NoError(w.WriteFloat64Array(fieldName(n)+"d", doubles))
		}
		require.NoError(w.WriteInt16Array("shorts", []int16{-1, 0, 1}))
		require.NoError(w.WriteUint16Array("ushorts", []uint16{0, 300, 65535}))
		require.NoError(w.WriteFloat32Array("floats", []float32{0, 0.5, -2}))
	})

	r := open(t, path)
	for _, n := range sizes {
		ints, err := r.ReadVarInt32Array(fieldName(n) + "i")
		require.NoError(err)
		require.Len(ints, n)
		doubles := make([]float64, n)
		require.NoError(r.ReadFloat64Array(fieldName(n)+"d", doubles))
		for i := range n {
			require.Equal(int32(i*1000), ints[i])
			require.Equal(float64(i)/3, doubles[i])
		}
	}

	shorts := make([]int16, 3)
	require.NoError(r.ReadInt16Array("shorts", shorts))
	require.Equal([]int16{-1, 0, 1}, shorts)

	ushorts := make([]uint16, 3)
	require.NoError(r.ReadUint16Array("ushorts", ushorts))
	require.Equal([]uint16{0, 300, 65535}, ushorts)

	floats := make([]float32, 3)
	require.NoError(r.ReadFloat32Array("floats", floats))
	require.Equal([]float32{0, 0.5, -2}, floats)

	err := r.ReadInt32Array(fieldName(1)+"i", make([]int32, 2))
	require.ErrorIs(err, errs.ErrSizeMismatch)
}

func TestReader_ByteOrderTransparency(t *testing.T) {
	require := require.New(t)

	write := func(w *Writer) {
		writeCell(t, w)
		require.NoError(w.WriteInt32("big", -123456789))
		require.NoError(w.WriteUint16("u16", 40000))
		require.NoError(w.WriteFloat64("pi", math.Pi))
		require.NoError(w.WriteString("long", strings.Repeat("x", 300)))
		require.NoError(w.WriteInt32Array("arr", make([]int32, 300)))
	}

	native := endian.GetNativeEngine()
	nativePath := build(t, write, WithByteOrder(native))
	foreignPath := build(t, write, WithByteOrder(endian.Opposite(native)))

	// a foreign header has a zero low byte in its version when read natively
	raw := readFile(t, foreignPath)
	require.Zero(native.Uint32(raw[section.VersionOffset:]) & 0xFF)

	nr := open(t, nativePath)
	fr := open(t, foreignPath)
	require.False(nr.Header().IsSwapped())
	require.True(fr.Header().IsSwapped())
	require.Equal(nr.Fingerprint(), fr.Fingerprint())

	nativeDoc, err := nr.Decode()
	require.NoError(err)
	foreignDoc, err := fr.Decode()
	require.NoError(err)
	require.Equal(nativeDoc, foreignDoc)

	for _, r := range []*Reader{nr, fr} {
		v, err := r.ReadInt32("big")
		require.NoError(err)
		require.Equal(int32(-123456789), v)
		pi, err := r.ReadFloat64("pi")
		require.NoError(err)
		require.Equal(math.Pi, pi)
	}
}

func TestReader_MissingField(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.BeginStruct("first"))
		require.NoError(w.WriteInt32("a", 1))
		require.NoError(w.EndStruct())
		require.NoError(w.BeginStruct("second"))
		require.NoError(w.WriteInt32("b", 2))
		require.NoError(w.EndStruct())
	})

	r := open(t, path, WithDiagnostics(false))
	require.NoError(r.BeginStruct("first"))

	b, err := r.ReadInt32Default("b", 7)
	require.NoError(err)
	require.Equal(int32(7), b)

	s, err := r.ReadStringDefault("unknown", "def")
	require.NoError(err)
	require.Equal("def", s)

	f, err := r.ReadFloat64Default("b", 2.5)
	require.NoError(err)
	require.InDelta(2.5, f, 0)

	ok, err := r.ReadBoolDefault("b", true)
	require.NoError(err)
	require.True(ok)

	_, err = r.ReadInt32("b")
	require.ErrorIs(err, errs.ErrFieldNotFound)
	require.ErrorIs(err, errs.ErrSchema)

	_, err = r.ReadInt32("unknown")
	require.ErrorIs(err, errs.ErrNameNotInTable)

	// the search stopped at the end of "first"
	a, err := r.ReadInt32("a")
	require.NoError(err)
	require.Equal(int32(1), a)
	require.NoError(r.EndStruct("first"))

	require.NoError(r.BeginStruct("second"))
	b, err = r.ReadInt32Default("b", 7)
	require.NoError(err)
	require.Equal(int32(2), b)
	require.NoError(r.EndStruct("second"))
}

func TestReader_NestingValidation(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.BeginArray("cells", 1))
		require.NoError(w.BeginStruct(""))
		require.NoError(w.WriteInt32("id", 1))
		require.NoError(w.EndStruct())
		require.NoError(w.EndArray())
		require.NoError(w.BeginStruct("grid"))
		require.NoError(w.EndStruct())
	})

	r := open(t, path, WithDiagnostics(false))
	_, err := r.BeginArray("cells")
	require.NoError(err)
	require.NoError(r.BeginStruct(""))

	err = r.EndStruct("grid")
	require.ErrorIs(err, errs.ErrNameMismatch)
	require.ErrorIs(err, errs.ErrFormat)

	require.ErrorIs(r.EndArray(), errs.ErrUnexpectedEnd)
	require.NoError(r.EndStruct(""))
	require.ErrorIs(r.EndStruct(""), errs.ErrUnexpectedEnd)
	require.NoError(r.EndArray())

	require.NoError(r.BeginStruct("grid"))
	require.ErrorIs(r.EndStruct("other"), errs.ErrNameMismatch)
	require.ErrorIs(r.EndStruct(""), errs.ErrNameMismatch)
	require.NoError(r.EndStruct("grid"))

	require.ErrorIs(r.EndStruct("grid"), errs.ErrTooManyEnds)
	require.ErrorIs(r.EndArray(), errs.ErrTooManyEnds)
}

func TestReader_TypeMismatch(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.WriteString("name", "cellA"))
		require.NoError(w.WriteInt32("n", 70000))
	})

	r := open(t, path, WithDiagnostics(false))

	_, err := r.ReadInt32("name")
	require.ErrorIs(err, errs.ErrTypeMismatch)

	var fe *errs.FieldError
	require.True(errors.As(err, &fe))
	require.Equal("name", fe.Field)
	require.Equal("int32", fe.Expected)
	require.Equal("String1", fe.Found)
	require.Equal(path, fe.File)
	require.Contains(err.Error(), "expected int32, found String1")

	// a narrower declaration than the stored token is a mismatch as well
	_, err = r.ReadInt16("n")
	require.ErrorIs(err, errs.ErrTypeMismatch)

	// the field is still readable with the right type
	s, err := r.ReadString("name")
	require.NoError(err)
	require.Equal("cellA", s)

	n, err := r.ReadInt32("n")
	require.NoError(err)
	require.Equal(int32(70000), n)

	require.ErrorIs(r.BeginStruct("n"), errs.ErrTypeMismatch)
	_, err = r.BeginArray("name")
	require.ErrorIs(err, errs.ErrTypeMismatch)
}

func TestReader_ZeroIsTypeAgnostic(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.WriteInt32("i", 0))
		require.NoError(w.WriteFloat64("d", 0))
	})

	r := open(t, path, WithDiagnostics(false))

	u8, err := r.ReadUint8("i")
	require.NoError(err)
	require.Zero(u8)
	f32, err := r.ReadFloat32("i")
	require.NoError(err)
	require.Zero(f32)
	i, err := r.ReadInt32("d")
	require.NoError(err)
	require.Zero(i)
	u16, err := r.ReadUint16("d")
	require.NoError(err)
	require.Zero(u16)

	_, err = r.ReadString("i")
	require.ErrorIs(err, errs.ErrTypeMismatch)
	_, err = r.ReadBool("d")
	require.ErrorIs(err, errs.ErrTypeMismatch)
}

func TestReader_UnreadFields(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.BeginStruct("s"))
		require.NoError(w.WriteInt32("a", 1))
		require.NoError(w.WriteInt32("b", 2))
		require.NoError(w.WriteInt32("c", 3))
		require.NoError(w.EndStruct())
		require.NoError(w.WriteInt32("after", 4))
	})

	r := open(t, path)
	require.NoError(r.BeginStruct("s"))
	b, err := r.ReadInt32("b")
	require.NoError(err)
	require.Equal(int32(2), b)
	require.NoError(r.EndStruct("s"))

	require.Equal(int64(1), r.Misses())
	require.Equal(int64(2), r.Unread())

	after, err := r.ReadInt32("after")
	require.NoError(err)
	require.Equal(int32(4), after)
	require.Equal(int64(1), r.Misses())
}

func TestReader_IsDefined(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.BeginStruct("s"))
		require.NoError(w.WriteInt32("a", 1))
		require.NoError(w.WriteInt32("b", 2))
		require.NoError(w.EndStruct())
		require.NoError(w.WriteInt32("c", 3))
	})

	var logs bytes.Buffer
	r := open(t, path, WithLogger(zerolog.New(&logs).Level(zerolog.WarnLevel)))
	require.NoError(r.BeginStruct("s"))

	ok, err := r.IsDefined("b")
	require.NoError(err)
	require.True(ok)
	require.Equal(int64(1), r.Misses())

	ok, err = r.IsDefined("c")
	require.NoError(err)
	require.False(ok)

	ok, err = r.IsDefined("never declared")
	require.NoError(err)
	require.False(ok)

	// probing consumed nothing
	b, err := r.ReadInt32("b")
	require.NoError(err)
	require.Equal(int32(2), b)
	a, err := r.ReadInt32("a")
	require.NoError(err)
	require.Equal(int32(1), a)

	require.NoError(r.EndStruct("s"))
	require.Equal(int64(1), r.Misses())
	require.Equal(int64(0), r.Unread())
	require.Empty(logs.String())
}

func TestReader_Diagnostics(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.WriteInt32("a", 1))
		require.NoError(w.WriteInt32("b", 2))
	})

	var logs bytes.Buffer
	r := open(t, path, WithLogger(zerolog.New(&logs).Level(zerolog.WarnLevel)))

	_, err := r.ReadInt32("missing")
	require.ErrorIs(err, errs.ErrNameNotInTable)
	require.Contains(logs.String(), "store operation failed")
	require.Contains(logs.String(), `"field":"missing"`)
	require.Contains(logs.String(), path)

	logs.Reset()
	require.True(r.SetDiagnostics(false))
	_, err = r.ReadInt32("missing")
	require.ErrorIs(err, errs.ErrNameNotInTable)
	require.Empty(logs.String())

	require.False(r.SetDiagnostics(true))
	_, err = r.ReadString("a")
	require.ErrorIs(err, errs.ErrTypeMismatch)
	require.Contains(logs.String(), `"expected":"string"`)
	require.Contains(logs.String(), `"found":"Byte"`)
}

func TestReader_SkipNested(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) {
		require.NoError(w.BeginStruct("skipme"))
		require.NoError(w.WriteString("label", strings.Repeat("z", 400)))
		base, err := w.ReserveIndexArray("cells", 2)
		require.NoError(err)
		for i := range 2 {
			require.NoError(w.PatchIndex(base, i, w.Offset()))
			require.NoError(w.BeginStruct(""))
			require.NoError(w.WriteInt32Array("v", []int32{1, 2, 3}))
			require.NoError(w.BeginArray("nested", 1))
			require.NoError(w.BeginArray("", 0))
			require.NoError(w.EndArray())
			require.NoError(w.EndArray())
			require.NoError(w.EndStruct())
		}
		require.NoError(w.EndArray())
		require.NoError(w.EndStruct())
		require.NoError(w.WriteBool("target", true))
	})

	r := open(t, path)
	v, err := r.ReadBool("target")
	require.NoError(err)
	require.True(v)
	require.Equal(int64(1), r.Misses())

	require.NoError(r.BeginStruct("skipme"))
	n, err := r.BeginArray("cells")
	require.NoError(err)
	require.Equal(2, n)
	require.True(r.IsIndexed())
	require.NoError(r.EndArray())
	require.NoError(r.EndStruct("skipme"))
	require.Equal(int64(2), r.Misses())
	require.Equal(int64(1), r.Unread())
}

func TestReader_Corruption(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		require := require.New(t)

		path := build(t, func(w *Writer) {
			require.NoError(w.WriteInt32("a", 1))
			require.NoError(w.WriteInt32("b", 2))
		})

		data := readFile(t, path)
		data[section.HeaderSize] = 0x80 | 0x3F
		require.NoError(os.WriteFile(path, data, 0o644))

		r := open(t, path, WithDiagnostics(false))
		_, err := r.ReadInt32("b")
		require.ErrorIs(err, errs.ErrInvalidToken)
		require.ErrorIs(err, errs.ErrFormat)
	})

	t.Run("oversized array", func(t *testing.T) {
		values := make([]float64, 300)
		for i := range values {
			values[i] = float64(i) + 0.5
		}
		path := build(t, func(w *Writer) {
			require.NoError(t, w.WriteFloat64Array("v", values))
		})

		data := readFile(t, path)
		header, err := section.ParseHeader(data)
		require.NoError(t, err)
		// tag, one byte name id, then the int32 element count
		require.Equal(t, byte(0x80|format.TokenBeginArray), data[section.HeaderSize])
		header.Engine.PutUint32(data[section.HeaderSize+2:], 0x7fffffff)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		r := open(t, path, WithDiagnostics(false))
		_, err = r.ReadVarFloat64Array("v")
		require.ErrorIs(t, err, errs.ErrLengthOutOfRange)
		require.ErrorIs(t, err, errs.ErrFormat)

		r = open(t, path, WithDiagnostics(false))
		_, err = r.Decode()
		require.ErrorIs(t, err, errs.ErrFormat)

		r = open(t, path, WithDiagnostics(false))
		err = r.Walk(func(Event) error { return nil })
		require.ErrorIs(t, err, errs.ErrLengthOutOfRange)
	})

	t.Run("oversized string", func(t *testing.T) {
		path := build(t, func(w *Writer) {
			require.NoError(t, w.WriteString("s", "hello"))
		})

		data := readFile(t, path)
		header, err := section.ParseHeader(data)
		require.NoError(t, err)
		token, _ := encoding.ParseTag(data[section.HeaderSize])
		require.True(t, token.IsString())
		switch encoding.LengthSize(token) {
		case 1:
			data[section.HeaderSize+2] = 0xFF
		default:
			header.Engine.PutUint32(data[section.HeaderSize+2:], 0x7fffffff)
		}
		require.NoError(t, os.WriteFile(path, data, 0o644))

		r := open(t, path, WithDiagnostics(false))
		_, err = r.ReadString("s")
		require.ErrorIs(t, err, errs.ErrLengthOutOfRange)
	})

	t.Run("bad magic", func(t *testing.T) {
		path := build(t, func(w *Writer) {})
		data := readFile(t, path)
		data[0] = 'X'
		require.NoError(t, os.WriteFile(path, data, 0o644))

		_, err := Open(path)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("truncated", func(t *testing.T) {
		path := build(t, func(w *Writer) { writeCell(t, w) })
		data := readFile(t, path)
		require.NoError(t, os.WriteFile(path, data[:len(data)-3], 0o644))

		_, err := Open(path)
		require.ErrorIs(t, err, errs.ErrInvalidNameTable)
	})

	t.Run("too short", func(t *testing.T) {
		path := tempPath(t)
		require.NoError(t, os.WriteFile(path, []byte("BSTR"), 0o644))

		_, err := Open(path)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})
}

func TestReader_Mmap(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) { writeCell(t, w) })
	r := open(t, path, WithMmap(true))

	require.NoError(r.BeginStruct("cell"))
	name, err := r.ReadString("name")
	require.NoError(err)
	require.Equal("cellA", name)
	require.NoError(r.EndStruct("cell"))
	require.Positive(r.Stats().BytesRead)
}

func TestReader_NewReader(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) { writeCell(t, w) })
	data := readFile(t, path)

	r, err := NewReader("memory", bytes.NewReader(data), int64(len(data)))
	require.NoError(err)
	defer r.Close()

	doc, err := r.Decode()
	require.NoError(err)
	cell, ok := doc.Get("cell")
	require.True(ok)
	require.Equal(3, cell.(*Object).Len())
}

func TestReader_Closed(t *testing.T) {
	require := require.New(t)

	path := build(t, func(w *Writer) { writeCell(t, w) })
	r, err := Open(path)
	require.NoError(err)
	require.NoError(r.Close())
	require.NoError(r.Close())

	_, err = r.ReadInt32("size")
	require.ErrorIs(err, errs.ErrClosed)
	require.ErrorIs(r.EndStruct("cell"), errs.ErrClosed)
}

func fieldName(i int) string {
	return "f" + strconv.Itoa(i)
}
