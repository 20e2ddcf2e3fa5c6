// Package tvm holds the cell primitives shared by the CCIP codecs: width-checked integer stores,
// category-aware loads and the "fully consumed" checks every decoder ends with.
package tvm

import (
	"math/big"

	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
)

// Writer wraps a cell builder and keeps the first error, so a layout can be written top to bottom
// and checked once in End.
type Writer struct {
	b   *cell.Builder
	err error
}

func NewWriter() *Writer {
	return &Writer{b: cell.BeginCell()}
}

// Uint stores v in exactly bits bits. Values that do not fit are rejected instead of truncated.
func (w *Writer) Uint(v uint64, bits uint, field string) *Writer {
	if w.err != nil {
		return w
	}
	if bits < 64 && v>>bits != 0 {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: value %d does not fit in %d bits", field, v, bits)
		return w
	}
	if err := w.b.StoreUInt(v, bits); err != nil {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: %v", field, err)
	}
	return w
}

// BigUint stores a non-negative v in exactly bits bits.
func (w *Writer) BigUint(v *big.Int, bits uint, field string) *Writer {
	if w.err != nil {
		return w
	}
	if err := CheckWidth(v, bits, field); err != nil {
		w.err = err
		return w
	}
	if err := w.b.StoreBigUInt(v, bits); err != nil {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: %v", field, err)
	}
	return w
}

func (w *Writer) Bool(v bool, field string) *Writer {
	if w.err != nil {
		return w
	}
	if err := w.b.StoreBoolBit(v); err != nil {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: %v", field, err)
	}
	return w
}

// Bytes stores raw bytes inline.
func (w *Writer) Bytes(v []byte, field string) *Writer {
	if w.err != nil {
		return w
	}
	if err := w.b.StoreSlice(v, uint(len(v))*8); err != nil {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: %v", field, err)
	}
	return w
}

// Addr stores a standard internal address. Nil and non-standard addresses are rejected.
func (w *Writer) Addr(a *address.Address, field string) *Writer {
	if w.err != nil {
		return w
	}
	if err := CheckStdAddr(a, field); err != nil {
		w.err = err
		return w
	}
	if err := w.b.StoreAddr(a); err != nil {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: %v", field, err)
	}
	return w
}

func (w *Writer) Ref(c *cell.Cell, field string) *Writer {
	if w.err != nil {
		return w
	}
	if c == nil {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: missing ref", field)
		return w
	}
	if err := w.b.StoreRef(c); err != nil {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: %v", field, err)
	}
	return w
}

// Builder appends the contents of another builder, used to inline a shared layout.
func (w *Writer) Builder(b *cell.Builder, field string) *Writer {
	if w.err != nil {
		return w
	}
	if err := w.b.StoreBuilder(b); err != nil {
		w.err = eris.Wrapf(ccip.ErrFormat, "%s: %v", field, err)
	}
	return w
}

// Fail records err unless an earlier error is already pending.
func (w *Writer) Fail(err error) *Writer {
	if w.err == nil {
		w.err = err
	}
	return w
}

func (w *Writer) Err() error {
	return w.err
}

// Raw exposes the underlying builder for layouts that are inlined into a parent cell.
func (w *Writer) Raw() (*cell.Builder, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.b, nil
}

func (w *Writer) End() (*cell.Cell, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.b.EndCell(), nil
}

// SnakeCell stores data as a chain of byte cells, the layout used for message payloads.
func SnakeCell(data []byte, field string) (*cell.Cell, error) {
	b := cell.BeginCell()
	if err := b.StoreBinarySnake(data); err != nil {
		return nil, eris.Wrapf(ccip.ErrFormat, "%s: %v", field, err)
	}
	return b.EndCell(), nil
}

// CheckWidth fails with ErrFormat when v is nil, negative or wider than bits.
func CheckWidth(v *big.Int, bits uint, field string) error {
	if v == nil {
		return eris.Wrapf(ccip.ErrFormat, "%s: missing value", field)
	}
	if v.Sign() < 0 {
		return eris.Wrapf(ccip.ErrFormat, "%s: negative value %s", field, v)
	}
	if uint(v.BitLen()) > bits {
		return eris.Wrapf(ccip.ErrFormat, "%s: value %s does not fit in %d bits", field, v, bits)
	}
	return nil
}

// CheckStdAddr fails with ErrFormat unless a is a standard internal address.
func CheckStdAddr(a *address.Address, field string) error {
	if a == nil {
		return eris.Wrapf(ccip.ErrFormat, "%s: missing address", field)
	}
	if a.Type() != address.StdAddress {
		return eris.Wrapf(ccip.ErrFormat, "%s: expected standard address, got type %d", field, a.Type())
	}
	if len(a.Data()) != 32 {
		return eris.Wrapf(ccip.ErrFormat, "%s: address hash must be 32 bytes, got %d", field, len(a.Data()))
	}
	return nil
}

// AddrEqual compares two standard addresses by workchain and hash, ignoring user-friendly flags.
func AddrEqual(a, b *address.Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() || a.Workchain() != b.Workchain() {
		return false
	}
	return string(a.Data()) == string(b.Data())
}
