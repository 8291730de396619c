// Package store implements sessions over bstruct files: a self-describing,
// tagged binary stream of named scalars, structs and arrays used for
// checkpoint and restart data.
//
// # Writing
//
// A Writer is created with Create or Append. Every item inside a struct has a
// name; items inside an array are anonymous. Values are stored in the
// narrowest token that represents them exactly.
//
//	w, err := store.Create(path)
//	if err != nil {
//	    return err
//	}
//	_ = w.WriteInt32("size", 0)
//	_ = w.WriteString("name", "cellA")
//	_ = w.WriteFloat64Array("values", []float64{1.5, 0, -3})
//	return w.Close()
//
// # Reading
//
// A Reader is opened with Open. Fields are requested by name in any order.
// Fields scanned past while looking for another are remembered, so each field
// is read from disk at most once per struct. Misses reports how many fields
// were scanned past, which measures how far the request order has drifted
// from the file layout.
//
//	r, err := store.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	values, err := r.ReadVarFloat64Array("values")
//	name, err := r.ReadString("name")
//	size, err := r.ReadInt32Default("size", 0)
//
// # Index arrays
//
// An array may carry an index of element offsets for direct access:
//
//	base, err := w.ReserveIndexArray("cells", n)
//	for i := range n {
//	    off := w.Offset()
//	    writeCell(w, i)
//	    _ = w.PatchIndex(base, i, off)
//	}
//	_ = w.EndArray()
//
// A reader enters the array and calls SeekIndex before reading an element.
//
// # Byte order
//
// Files are written in the host byte order unless WithByteOrder says
// otherwise. Readers detect the order from the header and convert every
// multi-byte value transparently.
//
// # Concurrency
//
// Sessions are not safe for concurrent use. Several Readers may open the same
// closed file at once.
package store
