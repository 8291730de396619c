package store

// WriteInt32Array writes values as an array of anonymous integers.
func (w *Writer) WriteInt32Array(name string, values []int32) error {
	if err := w.BeginArray(name, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteInt32("", v); err != nil {
			return err
		}
	}

	return w.EndArray()
}

// WriteInt16Array writes values as an array of anonymous integers.
func (w *Writer) WriteInt16Array(name string, values []int16) error {
	if err := w.BeginArray(name, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteInt16("", v); err != nil {
			return err
		}
	}

	return w.EndArray()
}

// WriteUint16Array writes values as an array of anonymous unsigned integers.
func (w *Writer) WriteUint16Array(name string, values []uint16) error {
	if err := w.BeginArray(name, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteUint16("", v); err != nil {
			return err
		}
	}

	return w.EndArray()
}

// WriteFloat32Array writes values as an array of anonymous floats.
func (w *Writer) WriteFloat32Array(name string, values []float32) error {
	if err := w.BeginArray(name, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteFloat32("", v); err != nil {
			return err
		}
	}

	return w.EndArray()
}

// WriteFloat64Array writes values as an array of anonymous doubles, each in
// its narrowest exact token.
func (w *Writer) WriteFloat64Array(name string, values []float64) error {
	if err := w.BeginArray(name, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteFloat64("", v); err != nil {
			return err
		}
	}

	return w.EndArray()
}

// ReadInt32Array reads an array of exactly len(dst) integers into dst.
func (r *Reader) ReadInt32Array(name string, dst []int32) error {
	if err := r.beginSized("read int32 array", name, len(dst)); err != nil {
		return err
	}
	for i := range dst {
		v, err := r.ReadInt32("")
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return r.EndArray()
}

// ReadInt16Array reads an array of exactly len(dst) integers into dst.
func (r *Reader) ReadInt16Array(name string, dst []int16) error {
	if err := r.beginSized("read int16 array", name, len(dst)); err != nil {
		return err
	}
	for i := range dst {
		v, err := r.ReadInt16("")
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return r.EndArray()
}

// ReadUint16Array reads an array of exactly len(dst) unsigned integers into dst.
func (r *Reader) ReadUint16Array(name string, dst []uint16) error {
	if err := r.beginSized("read uint16 array", name, len(dst)); err != nil {
		return err
	}
	for i := range dst {
		v, err := r.ReadUint16("")
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return r.EndArray()
}

// ReadFloat32Array reads an array of exactly len(dst) floats into dst.
func (r *Reader) ReadFloat32Array(name string, dst []float32) error {
	if err := r.beginSized("read float32 array", name, len(dst)); err != nil {
		return err
	}
	for i := range dst {
		v, err := r.ReadFloat32("")
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return r.EndArray()
}

// ReadFloat64Array reads an array of exactly len(dst) numbers into dst.
func (r *Reader) ReadFloat64Array(name string, dst []float64) error {
	if err := r.beginSized("read float64 array", name, len(dst)); err != nil {
		return err
	}
	for i := range dst {
		v, err := r.ReadFloat64("")
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return r.EndArray()
}

// ReadVarInt32Array reads an integer array of any length.
func (r *Reader) ReadVarInt32Array(name string) ([]int32, error) {
	n, err := r.BeginArray(name)
	if err != nil {
		return nil, err
	}

	values := make([]int32, n)
	for i := range values {
		if values[i], err = r.ReadInt32(""); err != nil {
			return nil, err
		}
	}

	if err := r.EndArray(); err != nil {
		return nil, err
	}

	return values, nil
}

// ReadVarFloat64Array reads a numeric array of any length.
func (r *Reader) ReadVarFloat64Array(name string) ([]float64, error) {
	n, err := r.BeginArray(name)
	if err != nil {
		return nil, err
	}

	values := make([]float64, n)
	for i := range values {
		if values[i], err = r.ReadFloat64(""); err != nil {
			return nil, err
		}
	}

	if err := r.EndArray(); err != nil {
		return nil, err
	}

	return values, nil
}
