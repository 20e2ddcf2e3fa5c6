package message

import (
	"bytes"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	ccipabi "github.com/argus-labs/ccip-bridge/pkg/ccip/abi"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/tokenamount"
)

var messageArgs = ccipabi.MustGenerateArguments("message", EVM2AnyMessage{}) //nolint:gochecknoglobals // immutable ABI description

// BuildEVMToTON assembles the EVM2AnyMessage for a TON receiver and returns it together with its
// abi.encode form. The receiver is the 36-byte cross-chain address, the extra args the tagged ABI form.
func BuildEVMToTON(
	receiver ccipaddress.CrossChainAddress,
	data []byte,
	tokens []tokenamount.EVMTokenAmount,
	feeToken common.Address,
	args extraargs.GenericExtraArgsV2,
) (EVM2AnyMessage, []byte, error) {
	extra, err := extraargs.EncodeABI(args)
	if err != nil {
		return EVM2AnyMessage{}, nil, eris.Wrap(err, "failed to encode extra args")
	}
	msg := EVM2AnyMessage{
		Receiver:     receiver.Bytes(),
		Data:         nonNilBytes(data),
		TokenAmounts: tokenamount.NonNil(tokens),
		FeeToken:     feeToken,
		ExtraArgs:    extra,
	}
	bz, err := EncodeEVM2AnyMessage(msg)
	if err != nil {
		return EVM2AnyMessage{}, nil, err
	}
	return msg, bz, nil
}

// EncodeEVM2AnyMessage returns abi.encode(message).
func EncodeEVM2AnyMessage(msg EVM2AnyMessage) ([]byte, error) {
	if err := validateEVM(msg); err != nil {
		return nil, err
	}
	bz, err := messageArgs.Pack(normalizeEVM(msg))
	if err != nil {
		return nil, eris.Wrapf(ccip.ErrFormat, "failed to pack message: %v", err)
	}
	return bz, nil
}

// DecodeEVM2AnyMessage parses abi.encode(message). Only the canonical encoding is accepted.
func DecodeEVM2AnyMessage(bz []byte) (EVM2AnyMessage, error) {
	values, err := messageArgs.Unpack(bz)
	if err != nil {
		return EVM2AnyMessage{}, eris.Wrapf(ccip.ErrMalformedMessage, "failed to unpack message: %v", err)
	}
	msg, err := fromABI(values[0])
	if err != nil {
		return EVM2AnyMessage{}, err
	}
	again, err := EncodeEVM2AnyMessage(msg)
	if err != nil || !bytes.Equal(again, bz) {
		return EVM2AnyMessage{}, eris.Wrap(ccip.ErrMalformedMessage, "message is not canonically encoded")
	}
	return msg, nil
}

func fromABI(v any) (msg EVM2AnyMessage, err error) {
	// ConvertType panics when the unpacked shape does not match; that is a malformed input here.
	defer func() {
		if r := recover(); r != nil {
			err = eris.Wrapf(ccip.ErrMalformedMessage, "unexpected message shape: %v", r)
		}
	}()
	converted, ok := abi.ConvertType(v, new(EVM2AnyMessage)).(*EVM2AnyMessage)
	if !ok {
		return EVM2AnyMessage{}, eris.Wrap(ccip.ErrMalformedMessage, "unexpected message shape")
	}
	return normalizeEVM(*converted), nil
}

func validateEVM(msg EVM2AnyMessage) error {
	return tokenamount.ValidateEVM(msg.TokenAmounts)
}

func normalizeEVM(msg EVM2AnyMessage) EVM2AnyMessage {
	msg.Receiver = nonNilBytes(msg.Receiver)
	msg.Data = nonNilBytes(msg.Data)
	msg.TokenAmounts = tokenamount.NonNil(msg.TokenAmounts)
	msg.ExtraArgs = nonNilBytes(msg.ExtraArgs)
	return msg
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
