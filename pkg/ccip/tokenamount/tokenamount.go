// Package tokenamount encodes the ordered (token, amount) list of a CCIP message. Messaging-only
// sends carry an empty list, which always encodes to an explicit empty container.
package tokenamount

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/internal/tvm"
)

// MaxCellEntries is the largest list the 8-bit count of the cell container can describe.
const MaxCellEntries = 255

// EVMTokenAmount is Client.EVMTokenAmount. Field order matches the ABI tuple.
type EVMTokenAmount struct {
	Token  common.Address
	Amount *big.Int `evm:"uint256"`
}

// TVMTokenAmount is the TON side entry: a jetton address and an amount.
type TVMTokenAmount struct {
	Token  *address.Address
	Amount *big.Int
}

// ABIComponents describes (address token, uint256 amount) for embedding in larger tuples.
var ABIComponents = []abi.ArgumentMarshaling{ //nolint:gochecknoglobals // immutable ABI description
	{Name: "token", Type: "address"},
	{Name: "amount", Type: "uint256"},
}

var listArgs = mustListArguments() //nolint:gochecknoglobals // immutable ABI description

func mustListArguments() abi.Arguments {
	t, err := abi.NewType("tuple[]", "", ABIComponents)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Name: "tokenAmounts", Type: t}}
}

// EncodeABI encodes the list as a standalone (address,uint256)[] argument.
func EncodeABI(list []EVMTokenAmount) ([]byte, error) {
	if err := ValidateEVM(list); err != nil {
		return nil, err
	}
	bz, err := listArgs.Pack(NonNil(list))
	if err != nil {
		return nil, eris.Wrapf(ccip.ErrFormat, "failed to pack token amounts: %v", err)
	}
	return bz, nil
}

// DecodeABI decodes a standalone (address,uint256)[] argument. Only the canonical encoding is
// accepted: anything that does not re-encode to the same bytes is malformed.
func DecodeABI(bz []byte) ([]EVMTokenAmount, error) {
	values, err := listArgs.Unpack(bz)
	if err != nil {
		return nil, eris.Wrapf(ccip.ErrMalformedMessage, "failed to unpack token amounts: %v", err)
	}
	list := FromABI(values[0])
	again, err := EncodeABI(list)
	if err != nil || !bytes.Equal(again, bz) {
		return nil, eris.Wrap(ccip.ErrMalformedMessage, "token amounts are not canonically encoded")
	}
	return list, nil
}

// FromABI converts the anonymous struct slice produced by go-ethereum's unpacker.
func FromABI(v any) []EVMTokenAmount {
	return NonNil(*abi.ConvertType(v, new([]EVMTokenAmount)).(*[]EVMTokenAmount)) //nolint:errcheck // ConvertType panics on mismatch
}

// ValidateEVM checks that every amount is a non-negative 256-bit value.
func ValidateEVM(list []EVMTokenAmount) error {
	for i, ta := range list {
		if err := tvm.CheckWidth(ta.Amount, ccip.Uint256Bits, "token amount"); err != nil {
			return eris.Wrapf(err, "entry %d", i)
		}
	}
	return nil
}

// NonNil returns an empty list for nil so callers never see an absent list.
func NonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// -------------------------------------------------------------------------------------------------
// Cell container
// -------------------------------------------------------------------------------------------------

// EncodeCell builds the token container: the empty cell for an empty list, otherwise count:8 and a
// ref to a chain of entries (token address, amount:256, optional ref to the next entry).
func EncodeCell(list []TVMTokenAmount) (*cell.Cell, error) {
	if len(list) == 0 {
		return cell.BeginCell().EndCell(), nil
	}
	if len(list) > MaxCellEntries {
		return nil, eris.Wrapf(ccip.ErrFormat, "%d token amounts exceed the limit of %d", len(list), MaxCellEntries)
	}

	// Build the chain back to front so each entry can reference its successor.
	var next *cell.Cell
	for i := len(list) - 1; i >= 0; i-- {
		w := tvm.NewWriter().
			Addr(list[i].Token, "token").
			BigUint(list[i].Amount, ccip.Uint256Bits, "amount")
		if next != nil {
			w.Ref(next, "next token amount")
		}
		entry, err := w.End()
		if err != nil {
			return nil, eris.Wrapf(err, "token amount %d", i)
		}
		next = entry
	}
	return tvm.NewWriter().
		Uint(uint64(len(list)), 8, "token amount count").
		Ref(next, "first token amount").
		End()
}

func DecodeCell(c *cell.Cell) ([]TVMTokenAmount, error) {
	r := tvm.NewReader(c, ccip.ErrMalformedMessage)
	if err := r.Err(); err != nil {
		return nil, err
	}
	if int(r.Slice().BitsLeft()) == 0 && int(r.Slice().RefsNum()) == 0 {
		return []TVMTokenAmount{}, nil
	}

	count := int(r.Uint(8, "token amount count"))
	entry := r.Ref("first token amount")
	if err := r.Finish("token amount container"); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, eris.Wrap(ccip.ErrMalformedMessage, "non-empty token container declares zero entries")
	}

	list := make([]TVMTokenAmount, 0, count)
	for entry != nil {
		if len(list) == count {
			return nil, eris.Wrapf(ccip.ErrMalformedMessage, "token chain is longer than the declared %d entries", count)
		}
		er := tvm.NewReader(entry, ccip.ErrMalformedMessage)
		ta := TVMTokenAmount{
			Token:  er.Addr("token"),
			Amount: er.BigUint(ccip.Uint256Bits, "amount"),
		}
		entry = nil
		if er.Err() == nil && int(er.Slice().RefsNum()) > 0 {
			entry = er.Ref("next token amount")
		}
		if err := er.Finish("token amount"); err != nil {
			return nil, eris.Wrapf(err, "entry %d", len(list))
		}
		list = append(list, ta)
	}
	if len(list) != count {
		return nil, eris.Wrapf(ccip.ErrMalformedMessage, "declared %d token amounts, found %d", count, len(list))
	}
	return list, nil
}
