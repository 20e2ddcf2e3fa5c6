// Package address converts between native chain addresses and the fixed-width forms CCIP puts on
// the wire: the 36-byte cross-chain address used for TON receivers and the 32-byte left-padded
// field used for EVM addresses.
package address

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	tonaddress "github.com/xssnick/tonutils-go/address"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
)

const (
	// HashLength is the width of an account hash.
	HashLength = 32
	// CrossChainAddressLength is the wire width of a CrossChainAddress.
	CrossChainAddressLength = 4 + HashLength
	// PaddedEVMLength is the width of an EVM address inside a 32-byte field.
	PaddedEVMLength = 32

	evmPadding = PaddedEVMLength - common.AddressLength
)

// TONNativeFeeToken is the placeholder fee token that tells the TON router to charge in TON.
var TONNativeFeeToken = tonaddress.NewAddress(0, 0, append(make([]byte, HashLength-1), 1)) //nolint:gochecknoglobals // constant value

// CrossChainAddress identifies an account by chain segment (workchain) and 32-byte account hash.
type CrossChainAddress struct {
	Workchain int32
	Hash      [HashLength]byte
}

func NewCrossChainAddress(workchain int32, hash []byte) (CrossChainAddress, error) {
	if len(hash) != HashLength {
		return CrossChainAddress{}, eris.Wrapf(ccip.ErrFormat, "account hash must be %d bytes, got %d",
			HashLength, len(hash))
	}
	a := CrossChainAddress{Workchain: workchain}
	copy(a.Hash[:], hash)
	return a, nil
}

// Bytes returns the wire form: big-endian workchain followed by the hash.
func (a CrossChainAddress) Bytes() []byte {
	out := make([]byte, CrossChainAddressLength)
	binary.BigEndian.PutUint32(out[:4], uint32(a.Workchain)) //nolint:gosec // two's complement is the wire form
	copy(out[4:], a.Hash[:])
	return out
}

func DecodeCrossChainAddress(bz []byte) (CrossChainAddress, error) {
	if len(bz) != CrossChainAddressLength {
		return CrossChainAddress{}, eris.Wrapf(ccip.ErrFormat, "cross-chain address must be %d bytes, got %d",
			CrossChainAddressLength, len(bz))
	}
	a := CrossChainAddress{Workchain: int32(binary.BigEndian.Uint32(bz[:4]))} //nolint:gosec // see Bytes
	copy(a.Hash[:], bz[4:])
	return a, nil
}

// FromTON converts a standard TON address. User-friendly flags are not part of the wire form.
func FromTON(a *tonaddress.Address) (CrossChainAddress, error) {
	if a == nil || a.Type() != tonaddress.StdAddress {
		return CrossChainAddress{}, eris.Wrap(ccip.ErrFormat, "expected a standard TON address")
	}
	return NewCrossChainAddress(a.Workchain(), a.Data())
}

// TON returns the bounceable TON address. Workchains outside the 8-bit range have no std form.
func (a CrossChainAddress) TON() (*tonaddress.Address, error) {
	if a.Workchain < -128 || a.Workchain > 127 {
		return nil, eris.Wrapf(ccip.ErrFormat, "workchain %d does not fit a standard address", a.Workchain)
	}
	return tonaddress.NewAddress(0, byte(int8(a.Workchain)), bytes.Clone(a.Hash[:])), nil
}

func (a CrossChainAddress) String() string {
	return a.TONString()
}

// TONString renders the raw "workchain:hex" form.
func (a CrossChainAddress) TONString() string {
	return formatRaw(a.Workchain, a.Hash[:])
}

// ParseTON accepts the raw "wc:hex" form as well as the base64 user-friendly form.
func ParseTON(s string) (*tonaddress.Address, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		a, err := tonaddress.ParseRawAddr(s)
		if err != nil {
			return nil, eris.Wrapf(ccip.ErrFormat, "invalid raw TON address %q: %v", s, err)
		}
		return a, nil
	}
	a, err := tonaddress.ParseAddr(s)
	if err != nil {
		return nil, eris.Wrapf(ccip.ErrFormat, "invalid TON address %q: %v", s, err)
	}
	return a, nil
}

// ParseEVM accepts a 0x-prefixed hex address.
func ParseEVM(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, eris.Wrapf(ccip.ErrFormat, "invalid EVM address %q", s)
	}
	return common.HexToAddress(s), nil
}

// EncodePaddedEVM places a into a 32-byte field behind 12 zero bytes.
func EncodePaddedEVM(a common.Address) []byte {
	out := make([]byte, PaddedEVMLength)
	copy(out[evmPadding:], a.Bytes())
	return out
}

// DecodePaddedEVM is strict: the field must be 32 bytes and the 12 padding bytes must be zero. A
// non-zero prefix means the field is not an EVM address and is rejected rather than truncated.
func DecodePaddedEVM(bz []byte) (common.Address, error) {
	if len(bz) != PaddedEVMLength {
		return common.Address{}, eris.Wrapf(ccip.ErrFormat, "padded EVM address must be %d bytes, got %d",
			PaddedEVMLength, len(bz))
	}
	for i, b := range bz[:evmPadding] {
		if b != 0 {
			return common.Address{}, eris.Wrapf(ccip.ErrFormat, "non-zero padding byte 0x%02x at offset %d", b, i)
		}
	}
	return common.BytesToAddress(bz[evmPadding:]), nil
}
