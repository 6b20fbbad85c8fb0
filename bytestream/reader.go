// Package bytestream provides a bounded, big-endian forward reader over an
// in-memory buffer. A Reader remembers the first error it hits; every later
// read returns a zero value, so callers can decode a whole record and check
// Err once.
package bytestream

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

var (
	ErrUnexpectedEOF = errors.New("unexpected end of data")
	ErrRegion        = errors.New("invalid region length")
)

type Reader struct {
	s    cryptobyte.String
	base int
	size int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{s: cryptobyte.String(data), size: len(data)}
}

// Offset reports the absolute position of the next byte, counted from the
// start of the outermost buffer.
func (r *Reader) Offset() int {
	return r.base + r.Consumed()
}

// Consumed reports how many bytes of this reader's own region were read.
func (r *Reader) Consumed() int {
	return r.size - len(r.s)
}

func (r *Reader) Len() int {
	return len(r.s)
}

func (r *Reader) Empty() bool {
	return len(r.s) == 0
}

func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an earlier error is already set.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) eof(want int) {
	r.Fail(fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrUnexpectedEOF, want, r.Offset(), len(r.s)))
}

func (r *Reader) U1() uint8 {
	var v uint8
	if r.err != nil {
		return 0
	}
	if !r.s.ReadUint8(&v) {
		r.eof(1)
	}
	return v
}

func (r *Reader) U2() uint16 {
	var v uint16
	if r.err != nil {
		return 0
	}
	if !r.s.ReadUint16(&v) {
		r.eof(2)
	}
	return v
}

func (r *Reader) U4() uint32 {
	var v uint32
	if r.err != nil {
		return 0
	}
	if !r.s.ReadUint32(&v) {
		r.eof(4)
	}
	return v
}

func (r *Reader) U8() uint64 {
	var v uint64
	if r.err != nil {
		return 0
	}
	if !r.s.ReadUint64(&v) {
		r.eof(8)
	}
	return v
}

func (r *Reader) S1() int8  { return int8(r.U1()) }
func (r *Reader) S2() int16 { return int16(r.U2()) }
func (r *Reader) S4() int32 { return int32(r.U4()) }

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.Fail(fmt.Errorf("%w: %d at offset %d", ErrRegion, n, r.Offset()))
		return nil
	}
	out := make([]byte, n)
	if !r.s.CopyBytes(out) {
		r.eof(n)
		return nil
	}
	return out
}

func (r *Reader) Skip(n int) {
	if r.err != nil {
		return
	}
	if n < 0 {
		r.Fail(fmt.Errorf("%w: %d at offset %d", ErrRegion, n, r.Offset()))
		return
	}
	if !r.s.Skip(n) {
		r.eof(n)
	}
}

// Region carves the next n bytes into a sub-reader and advances past them.
// Reads on the sub-reader can never run past its n bytes. If fewer than n
// bytes remain, both readers carry the error.
func (r *Reader) Region(n int) *Reader {
	start := r.Offset()
	if r.err != nil {
		return &Reader{base: start, err: r.err}
	}
	if n < 0 {
		r.Fail(fmt.Errorf("%w: %d at offset %d", ErrRegion, n, start))
		return &Reader{base: start, err: r.err}
	}
	var sub []byte
	if !r.s.ReadBytes(&sub, n) {
		r.eof(n)
		return &Reader{base: start, err: r.err}
	}
	return &Reader{s: cryptobyte.String(sub), base: start, size: n}
}

// Rest returns a copy of every unread byte and leaves the reader empty.
func (r *Reader) Rest() []byte {
	return r.Bytes(len(r.s))
}
