package tvm

import (
	"math/big"

	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// Reader wraps a cell slice and keeps the first error. Every failure is reported under the
// category the reader was created with (ErrMalformedMessage for messages, ErrCorruptStorage for
// storage) so decoders never leak tonutils-go errors as their own category.
type Reader struct {
	s        *cell.Slice
	category error
	err      error
}

func NewReader(c *cell.Cell, category error) *Reader {
	r := &Reader{category: category}
	if c == nil {
		r.err = eris.Wrap(category, "missing cell")
		return r
	}
	r.s = c.BeginParse()
	return r
}

// NewSliceReader continues reading from an already positioned slice.
func NewSliceReader(s *cell.Slice, category error) *Reader {
	r := &Reader{s: s, category: category}
	if s == nil {
		r.err = eris.Wrap(category, "missing slice")
	}
	return r
}

func (r *Reader) fail(field string, err error) {
	r.err = eris.Wrapf(r.category, "%s: %v", field, err)
}

// Require checks that at least bits data bits and refs references are left before anything is
// read, so short headers are rejected up front.
func (r *Reader) Require(bits, refs int, what string) *Reader {
	if r.err != nil {
		return r
	}
	if int(r.s.BitsLeft()) < bits || int(r.s.RefsNum()) < refs {
		r.err = eris.Wrapf(r.category, "%s: need %d bits and %d refs, have %d bits and %d refs",
			what, bits, refs, int(r.s.BitsLeft()), int(r.s.RefsNum()))
	}
	return r
}

func (r *Reader) Uint(bits uint, field string) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.s.LoadUInt(bits)
	if err != nil {
		r.fail(field, err)
		return 0
	}
	return v
}

func (r *Reader) BigUint(bits uint, field string) *big.Int {
	if r.err != nil {
		return nil
	}
	v, err := r.s.LoadBigUInt(bits)
	if err != nil {
		r.fail(field, err)
		return nil
	}
	return v
}

func (r *Reader) Bool(field string) bool {
	if r.err != nil {
		return false
	}
	v, err := r.s.LoadBoolBit()
	if err != nil {
		r.fail(field, err)
		return false
	}
	return v
}

func (r *Reader) Bytes(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	v, err := r.s.LoadSlice(uint(n) * 8)
	if err != nil {
		r.fail(field, err)
		return nil
	}
	return v
}

// Addr loads an address and requires it to be a standard internal one.
func (r *Reader) Addr(field string) *address.Address {
	if r.err != nil {
		return nil
	}
	a, err := r.s.LoadAddr()
	if err != nil {
		r.fail(field, err)
		return nil
	}
	if err := CheckStdAddr(a, field); err != nil {
		r.fail(field, err)
		return nil
	}
	return a
}

func (r *Reader) Ref(field string) *cell.Cell {
	if r.err != nil {
		return nil
	}
	c, err := r.s.LoadRefCell()
	if err != nil {
		r.fail(field, err)
		return nil
	}
	return c
}

// Snake loads a ref holding snake-encoded bytes. Every link must hold whole bytes and at most one
// ref to the next link, so the result re-encodes to the same chain.
func (r *Reader) Snake(field string) []byte {
	c := r.Ref(field)
	if r.err != nil {
		return nil
	}
	data := []byte{}
	for link := 0; c != nil; link++ {
		s := c.BeginParse()
		bits := s.BitsLeft()
		if bits%8 != 0 {
			r.err = eris.Wrapf(r.category, "%s: snake link %d holds %d bits, not whole bytes", field, link, bits)
			return nil
		}
		chunk, err := s.LoadSlice(bits)
		if err != nil {
			r.fail(field, err)
			return nil
		}
		data = append(data, chunk...)

		switch refs := int(s.RefsNum()); refs {
		case 0:
			c = nil
		case 1:
			if c, err = s.LoadRefCell(); err != nil {
				r.fail(field, err)
				return nil
			}
		default:
			r.err = eris.Wrapf(r.category, "%s: snake link %d has %d refs", field, link, refs)
			return nil
		}
	}
	return data
}

// Fail records err unless an earlier error is already pending.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) Err() error {
	return r.err
}

// Slice returns the remaining slice for layouts that continue in another codec.
func (r *Reader) Slice() *cell.Slice {
	return r.s
}

// Finish fails unless every bit and ref of the cell has been consumed.
func (r *Reader) Finish(what string) error {
	if r.err != nil {
		return r.err
	}
	if bits, refs := int(r.s.BitsLeft()), int(r.s.RefsNum()); bits != 0 || refs != 0 {
		return eris.Wrapf(r.category, "%s: %d trailing bits and %d trailing refs", what, bits, refs)
	}
	return nil
}
