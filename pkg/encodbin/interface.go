// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package encodbin

import "fmt"

// Reader is a cursor over a fixed account blob: reads advance it and Seek
// moves it to any absolute offset. It never
// panics on short reads; callers get an error they can turn into a
// FilterRecord instead of the parser crashing on a malformed account.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the reader's current position.
func (r *Reader) Offset() int { return r.off }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.off }

func (r *Reader) need(n int) error {
	if r.off+n > len(r.buf) {
		return fmt.Errorf("encodbin: short read at offset %d: need %d bytes, have %d", r.off, n, r.Len())
	}
	return nil
}

// Seek repositions the cursor to an absolute offset.
func (r *Reader) Seek(offset int) error {
	if offset < 0 || offset > len(r.buf) {
		return fmt.Errorf("encodbin: seek out of range: %d (len %d)", offset, len(r.buf))
	}
	r.off = offset
	return nil
}

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// Bytes reads the next n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Bool reads a single byte and treats any non-zero value as true.
func (r *Reader) Bool() (bool, error) {
	if err := r.need(1); err != nil {
		return false, err
	}
	v := r.buf[r.off] != 0
	r.off++
	return v, nil
}

// U8 reads a single unsigned byte.
func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := LE.Uint64(r.buf[r.off : r.off+8])
	r.off += 8
	return v, nil
}

// I64 reads a little-endian int64.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// PublicKey reads the next 32 raw bytes.
func (r *Reader) PublicKey() ([32]byte, error) {
	var out [32]byte
	b, err := r.Bytes(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// PeekBytes reads n bytes starting at offset without moving any cursor.
func PeekBytes(buf []byte, offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > len(buf) {
		return nil, fmt.Errorf("encodbin: peek out of range: offset=%d n=%d len=%d", offset, n, len(buf))
	}
	return buf[offset : offset+n], nil
}

// PeekU64 reads a little-endian uint64 at offset without moving any cursor.
func PeekU64(buf []byte, offset int) (uint64, error) {
	b, err := PeekBytes(buf, offset, 8)
	if err != nil {
		return 0, err
	}
	return LE.Uint64(b), nil
}

// PeekI64 reads a little-endian int64 at offset without moving any cursor.
func PeekI64(buf []byte, offset int) (int64, error) {
	v, err := PeekU64(buf, offset)
	return int64(v), err
}
