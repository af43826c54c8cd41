// Package store decodes the on-disk OneStore revision-store format: the
// byte-level primitives, file-node variants, file-node list iteration,
// global ID tables, property sets and the object-group/revision/object-space
// graph that sits underneath a .one or .onetoc2 file.
package store

import (
	"fmt"

	"github.com/joshuapare/onekit/internal/buf"
	"github.com/joshuapare/onekit/internal/format"
)

// Reader is a cursor over an immutable byte slab. It never mutates or copies
// the underlying buffer; every read returns a view into it.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps b starting at offset 0.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// Len returns the total length of the underlying slab.
func (r *Reader) Len() int { return len(r.buf) }

// Seek moves the cursor to an absolute offset within the slab.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return fmt.Errorf("reader: seek to %d: %w (len %d)", off, format.ErrTruncated, len(r.buf))
	}
	r.off = off
	return nil
}

// Advance moves the cursor forward by n bytes without reading.
func (r *Reader) Advance(n int) error {
	return r.Seek(r.off + n)
}

func (r *Reader) need(n int) error {
	if !buf.Has(r.buf, r.off, n) {
		return fmt.Errorf("reader: need %d bytes at %d: %w (remaining %d)", n, r.off, format.ErrTruncated, r.Remaining())
	}
	return nil
}

// U8 reads one byte and advances.
func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// U16 reads a little-endian uint16 and advances.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := format.ReadU16(r.buf, r.off)
	r.off += 2
	return v, nil
}

// U32 reads a little-endian uint32 and advances.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := format.ReadU32(r.buf, r.off)
	r.off += 4
	return v, nil
}

// U64 reads a little-endian uint64 and advances.
func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := format.ReadU64(r.buf, r.off)
	r.off += 8
	return v, nil
}

// Bytes reads n raw bytes and advances. The returned slice aliases the
// underlying buffer; callers must not mutate it.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.off : r.off+n]
	r.off += n
	return v, nil
}

// PeekBytes reads n raw bytes at the current offset without advancing.
func (r *Reader) PeekBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	return r.buf[r.off : r.off+n], nil
}

// Sub returns a new Reader over the next n bytes and advances past them.
func (r *Reader) Sub(n int) (*Reader, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return nil, err
	}
	return NewReader(b), nil
}

// TailSub returns a new Reader over the last n bytes of the remaining slab,
// without consuming them from r. Used for reading fixed-size footers (e.g.
// the file-node-list fragment trailer) that sit at a known distance from the
// fragment's end.
func (r *Reader) TailSub(n int) (*Reader, error) {
	if n > r.Remaining() {
		return nil, fmt.Errorf("reader: tail of %d bytes: %w (remaining %d)", n, format.ErrTruncated, r.Remaining())
	}
	start := len(r.buf) - n
	return NewReader(r.buf[start:]), nil
}

// Truncate drops the last n bytes from what this reader considers readable,
// returning a reader over the remainder. Used to split a fragment body from
// its trailing nextFragment+footer bytes.
func (r *Reader) Truncate(n int) (*Reader, error) {
	rem := r.Remaining()
	if n > rem {
		return nil, fmt.Errorf("reader: truncate %d from %d remaining: %w", n, rem, format.ErrTruncated)
	}
	end := len(r.buf) - n
	return NewReader(r.buf[r.off:end]), nil
}
