package rvmbin

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dshills/rvmscene/pkg/intern"
)

// reader is a cursor over an in-memory copy of the input file. The whole
// file is read up front so offset verification can compare the declared
// next-chunk offsets against a simple byte position.
type reader struct {
	buf []byte
	pos int
}

// parseError is the error type for every structural failure, including a
// read running past the end of buf (EOF mid-chunk).
type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

func errf(format string, args ...any) error {
	return &parseError{msg: fmt.Sprintf(format, args...)}
}

func (r *reader) offset() uint32 { return uint32(r.pos) }

func (r *reader) require(n int) error {
	if r.pos+n > len(r.buf) {
		return errf("unexpected EOF: need %d bytes at offset 0x%x, have %d", n, r.pos, len(r.buf)-r.pos)
	}
	return nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *reader) floats(n int) ([]float32, error) {
	out := make([]float32, n)
	for i := range out {
		v, err := r.f32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// chunkID reads the 4-character chunk id, each character stored as its own
// big-endian uint32 whose low byte is the ASCII character.
func (r *reader) chunkID() (string, error) {
	if err := r.require(16); err != nil {
		return "", err
	}
	var id [4]byte
	for i := 0; i < 4; i++ {
		b := r.buf[r.pos : r.pos+4]
		id[i] = b[3]
		r.pos += 4
	}
	return string(id[:]), nil
}

// str reads a length-prefixed string: a uint32 word count, then up to
// 4*count bytes, truncated at the first NUL. The full word count is
// always consumed even if the effective string is shorter.
func (r *reader) str(in *intern.Interner) (intern.Handle, error) {
	words, err := r.u32()
	if err != nil {
		return 0, err
	}
	n := int(words) * 4
	if err := r.require(n); err != nil {
		return 0, err
	}
	raw := r.buf[r.pos : r.pos+n]
	r.pos += n

	effLen := n
	for i, b := range raw {
		if b == 0 {
			effLen = i
			break
		}
	}
	return in.Intern(string(raw[:effLen])), nil
}

// verifyOffset compares the current position to the chunk's declared
// next-chunk offset, catching truncation and misalignment early.
func (r *reader) verifyOffset(chunkID string, expected uint32) error {
	if r.offset() != expected {
		return errf("After chunk %s, expected offset %#x, current offset is %#x", chunkID, expected, r.offset())
	}
	return nil
}
