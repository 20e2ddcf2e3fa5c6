// Package extraargs encodes GenericExtraArgsV2, the execution hints attached to every CCIP message.
//
// Both wire forms start with the same 32-bit tag. The ABI form is tag || abi.encode(uint256, bool);
// the cell form is tag:32, a presence bit, gasLimit:256 and the out-of-order bit. The gas limit is
// carried as is: it is EVM gas for TON->EVM sends and nanoTON for EVM->TON sends.
package extraargs

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/holiman/uint256"
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/internal/tvm"
)

const (
	tagLength = 4
	// ABILength is the length of the ABI form: tag plus two 32-byte words.
	ABILength = tagLength + 2*32
	// CellBits is the bit length of the cell form when the gas limit is present.
	CellBits = ccip.OpcodeBits + 1 + ccip.Uint256Bits + 1
)

type GenericExtraArgsV2 struct {
	// GasLimit is nil when the cell form clears the presence bit. The ABI form always carries it.
	GasLimit                 *uint256.Int
	AllowOutOfOrderExecution bool
}

func New(gasLimit uint64, allowOutOfOrderExecution bool) GenericExtraArgsV2 {
	return GenericExtraArgsV2{
		GasLimit:                 uint256.NewInt(gasLimit),
		AllowOutOfOrderExecution: allowOutOfOrderExecution,
	}
}

func (GenericExtraArgsV2) Tag() uint32 {
	return ccip.GenericExtraArgsV2Tag
}

// Equal compares the logical values. Two absent gas limits are equal.
func (a GenericExtraArgsV2) Equal(b GenericExtraArgsV2) bool {
	if a.AllowOutOfOrderExecution != b.AllowOutOfOrderExecution {
		return false
	}
	if a.GasLimit == nil || b.GasLimit == nil {
		return a.GasLimit == nil && b.GasLimit == nil
	}
	return a.GasLimit.Eq(b.GasLimit)
}

var abiArgs = mustArguments() //nolint:gochecknoglobals // immutable ABI description

func mustArguments() abi.Arguments {
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	boolType, err := abi.NewType("bool", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{
		{Name: "gasLimit", Type: uint256Type},
		{Name: "allowOutOfOrderExecution", Type: boolType},
	}
}

// EncodeABI returns tag || abi.encode(gasLimit, allowOutOfOrderExecution).
func EncodeABI(args GenericExtraArgsV2) ([]byte, error) {
	if args.GasLimit == nil {
		return nil, eris.Wrap(ccip.ErrFormat, "gas limit is required in the ABI form")
	}
	packed, err := abiArgs.Pack(args.GasLimit.ToBig(), args.AllowOutOfOrderExecution)
	if err != nil {
		return nil, eris.Wrapf(ccip.ErrFormat, "failed to pack extra args: %v", err)
	}
	out := make([]byte, tagLength, ABILength)
	binary.BigEndian.PutUint32(out, ccip.GenericExtraArgsV2Tag)
	return append(out, packed...), nil
}

// DecodeABI dispatches on the leading tag and requires exactly one canonical encoding behind it.
func DecodeABI(bz []byte) (GenericExtraArgsV2, error) {
	if len(bz) < tagLength {
		return GenericExtraArgsV2{}, eris.Wrapf(ccip.ErrMalformedMessage, "extra args too short: %d bytes", len(bz))
	}
	if tag := binary.BigEndian.Uint32(bz); tag != ccip.GenericExtraArgsV2Tag {
		return GenericExtraArgsV2{}, eris.Wrapf(ccip.ErrUnsupportedExtraArgsTag, "tag 0x%08x", tag)
	}
	if len(bz) != ABILength {
		return GenericExtraArgsV2{}, eris.Wrapf(ccip.ErrMalformedMessage,
			"extra args must be %d bytes, got %d", ABILength, len(bz))
	}
	values, err := abiArgs.Unpack(bz[tagLength:])
	if err != nil {
		return GenericExtraArgsV2{}, eris.Wrapf(ccip.ErrMalformedMessage, "failed to unpack extra args: %v", err)
	}
	gas, ok := values[0].(*big.Int)
	if !ok {
		return GenericExtraArgsV2{}, eris.Wrapf(ccip.ErrMalformedMessage, "unexpected gas limit type %T", values[0])
	}
	allowOOO, ok := values[1].(bool)
	if !ok {
		return GenericExtraArgsV2{}, eris.Wrapf(ccip.ErrMalformedMessage, "unexpected flag type %T", values[1])
	}
	return GenericExtraArgsV2{
		GasLimit:                 uint256.MustFromBig(gas),
		AllowOutOfOrderExecution: allowOOO,
	}, nil
}

// EncodeCell returns the cell form. The presence bit mirrors whether GasLimit is set.
func EncodeCell(args GenericExtraArgsV2) (*cell.Cell, error) {
	w := tvm.NewWriter().
		Uint(uint64(ccip.GenericExtraArgsV2Tag), ccip.OpcodeBits, "extra args tag").
		Bool(args.GasLimit != nil, "gas limit presence")
	if args.GasLimit != nil {
		w.BigUint(args.GasLimit.ToBig(), ccip.Uint256Bits, "gas limit")
	}
	return w.Bool(args.AllowOutOfOrderExecution, "allow out of order execution").End()
}

func DecodeCell(c *cell.Cell) (GenericExtraArgsV2, error) {
	r := tvm.NewReader(c, ccip.ErrMalformedMessage).Require(ccip.OpcodeBits, 0, "extra args tag")
	if tag := uint32(r.Uint(ccip.OpcodeBits, "extra args tag")); r.Err() == nil && tag != ccip.GenericExtraArgsV2Tag {
		return GenericExtraArgsV2{}, eris.Wrapf(ccip.ErrUnsupportedExtraArgsTag, "tag 0x%08x", tag)
	}

	var args GenericExtraArgsV2
	if r.Bool("gas limit presence") {
		if gas := r.BigUint(ccip.Uint256Bits, "gas limit"); gas != nil {
			args.GasLimit = uint256.MustFromBig(gas)
		}
	}
	args.AllowOutOfOrderExecution = r.Bool("allow out of order execution")
	if err := r.Finish("extra args"); err != nil {
		return GenericExtraArgsV2{}, err
	}
	return args, nil
}
