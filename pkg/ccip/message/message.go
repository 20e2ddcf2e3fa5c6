// Package message builds and parses the CCIP message envelope in both wire forms: the EVM2AnyMessage
// ABI tuple handed to the EVM router, and the CCIPSend cell handed to the TON router.
package message

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/tokenamount"
)

// Direction names which chain a message is authored on.
type Direction uint8

const (
	DirectionUnknown Direction = iota
	DirectionEVMToTON
	DirectionTONToEVM
)

func (d Direction) String() string {
	switch d {
	case DirectionEVMToTON:
		return "evm2ton"
	case DirectionTONToEVM:
		return "ton2evm"
	case DirectionUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) Direction {
	switch s {
	case "evm2ton":
		return DirectionEVMToTON
	case "ton2evm":
		return DirectionTONToEVM
	default:
		return DirectionUnknown
	}
}

// Directions lists every known direction.
func Directions() []Direction {
	return []Direction{DirectionEVMToTON, DirectionTONToEVM}
}

func (d Direction) MarshalText() ([]byte, error) {
	if ParseDirection(d.String()) != d {
		return nil, eris.Wrapf(ccip.ErrFormat, "unknown direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed := ParseDirection(string(text))
	if parsed == DirectionUnknown {
		return eris.Wrapf(ccip.ErrFormat, "unknown direction %q", text)
	}
	*d = parsed
	return nil
}

// EVM2AnyMessage is Client.EVM2AnyMessage, the struct passed to the EVM router. Field order is the
// tuple order and must not change.
type EVM2AnyMessage struct {
	Receiver     []byte
	Data         []byte
	TokenAmounts []tokenamount.EVMTokenAmount
	// FeeToken is the zero address when the fee is paid in the native asset.
	FeeToken  common.Address
	ExtraArgs []byte
}

// TONReceiver decodes Receiver as a 36-byte cross-chain address.
func (m EVM2AnyMessage) TONReceiver() (ccipaddress.CrossChainAddress, error) {
	return ccipaddress.DecodeCrossChainAddress(m.Receiver)
}

// DecodeExtraArgs decodes the tagged ExtraArgs bytes.
func (m EVM2AnyMessage) DecodeExtraArgs() (extraargs.GenericExtraArgsV2, error) {
	return extraargs.DecodeABI(m.ExtraArgs)
}

// PaysNative reports whether the fee is paid in the chain's native asset.
func (m EVM2AnyMessage) PaysNative() bool {
	return m.FeeToken == (common.Address{})
}

// TVMMessage carries the same five logical fields in cell form.
type TVMMessage struct {
	Receiver     []byte
	Data         []byte
	TokenAmounts []tokenamount.TVMTokenAmount
	FeeToken     *address.Address
	ExtraArgs    extraargs.GenericExtraArgsV2
}

// EVMReceiver decodes Receiver as a padded EVM address.
func (m TVMMessage) EVMReceiver() (common.Address, error) {
	return ccipaddress.DecodePaddedEVM(m.Receiver)
}

// Send is the CCIPSend message a TON wallet sends to the TON router.
type Send struct {
	// QueryID correlates the router's reply. It is zero when unused and need not be unique.
	QueryID           uint64
	DestChainSelector uint64
	Message           TVMMessage
}

// Body is the message layout inlined into the receiver's receive envelope.
type Body struct {
	ChainSelector uint64
	Message       TVMMessage
}
