// Package stream provides the positioned byte stream under a store session.
//
// Reader serves reads from a window over an io.ReaderAt, or directly from a
// read-only memory mapping of the file where the platform supports it. Writer
// appends into a pooled buffer, flushes with WriteAt and can patch bytes that
// were already written, whether still buffered or already on disk.
//
// Neither type is safe for concurrent use. Independent Readers over the same
// file are.
package stream
