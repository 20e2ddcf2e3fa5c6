package message

import (
	"bytes"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/rotisserie/eris"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
)

// RouterABI is the subset of the EVM router interface used to send messages and quote fees.
const RouterABI = `[
  {
    "type": "function",
    "name": "ccipSend",
    "stateMutability": "payable",
    "inputs": [
      {"name": "destinationChainSelector", "type": "uint64"},
      {"name": "message", "type": "tuple", "components": [
        {"name": "receiver", "type": "bytes"},
        {"name": "data", "type": "bytes"},
        {"name": "tokenAmounts", "type": "tuple[]", "components": [
          {"name": "token", "type": "address"},
          {"name": "amount", "type": "uint256"}
        ]},
        {"name": "feeToken", "type": "address"},
        {"name": "extraArgs", "type": "bytes"}
      ]}
    ],
    "outputs": [{"name": "", "type": "bytes32"}]
  },
  {
    "type": "function",
    "name": "getFee",
    "stateMutability": "view",
    "inputs": [
      {"name": "destinationChainSelector", "type": "uint64"},
      {"name": "message", "type": "tuple", "components": [
        {"name": "receiver", "type": "bytes"},
        {"name": "data", "type": "bytes"},
        {"name": "tokenAmounts", "type": "tuple[]", "components": [
          {"name": "token", "type": "address"},
          {"name": "amount", "type": "uint256"}
        ]},
        {"name": "feeToken", "type": "address"},
        {"name": "extraArgs", "type": "bytes"}
      ]}
    ],
    "outputs": [{"name": "fee", "type": "uint256"}]
  }
]`

const (
	MethodCCIPSend = "ccipSend"
	MethodGetFee   = "getFee"
)

var routerABI = mustParseRouterABI() //nolint:gochecknoglobals // immutable ABI description

func mustParseRouterABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(RouterABI))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Router returns the parsed router ABI.
func Router() abi.ABI {
	return routerABI
}

// PackCCIPSend returns the calldata of ccipSend(destChainSelector, msg).
func PackCCIPSend(destChainSelector uint64, msg EVM2AnyMessage) ([]byte, error) {
	return packRouterCall(MethodCCIPSend, destChainSelector, msg)
}

// PackGetFee returns the calldata of getFee(destChainSelector, msg).
func PackGetFee(destChainSelector uint64, msg EVM2AnyMessage) ([]byte, error) {
	return packRouterCall(MethodGetFee, destChainSelector, msg)
}

// UnpackCCIPSend parses ccipSend calldata. The selector is checked before anything else.
func UnpackCCIPSend(calldata []byte) (uint64, EVM2AnyMessage, error) {
	return unpackRouterCall(MethodCCIPSend, calldata)
}

// UnpackGetFee parses getFee calldata.
func UnpackGetFee(calldata []byte) (uint64, EVM2AnyMessage, error) {
	return unpackRouterCall(MethodGetFee, calldata)
}

// UnpackFee parses the return data of getFee.
func UnpackFee(ret []byte) (*big.Int, error) {
	values, err := routerABI.Unpack(MethodGetFee, ret)
	if err != nil {
		return nil, eris.Wrapf(ccip.ErrMalformedMessage, "failed to unpack fee: %v", err)
	}
	fee, ok := values[0].(*big.Int)
	if !ok {
		return nil, eris.Wrapf(ccip.ErrMalformedMessage, "unexpected fee type %T", values[0])
	}
	return fee, nil
}

func packRouterCall(method string, destChainSelector uint64, msg EVM2AnyMessage) ([]byte, error) {
	if err := validateEVM(msg); err != nil {
		return nil, err
	}
	calldata, err := routerABI.Pack(method, destChainSelector, normalizeEVM(msg))
	if err != nil {
		return nil, eris.Wrapf(ccip.ErrFormat, "failed to pack %s: %v", method, err)
	}
	return calldata, nil
}

func unpackRouterCall(method string, calldata []byte) (uint64, EVM2AnyMessage, error) {
	if len(calldata) < 4 {
		return 0, EVM2AnyMessage{}, eris.Wrapf(ccip.ErrMalformedMessage, "calldata too short: %d bytes", len(calldata))
	}
	want := routerABI.Methods[method]
	if !bytes.Equal(calldata[:4], want.ID) {
		return 0, EVM2AnyMessage{}, eris.Wrapf(ccip.ErrMalformedMessage,
			"selector 0x%x is not %s (0x%x)", calldata[:4], method, want.ID)
	}

	values, err := want.Inputs.Unpack(calldata[4:])
	if err != nil {
		return 0, EVM2AnyMessage{}, eris.Wrapf(ccip.ErrMalformedMessage, "failed to unpack %s: %v", method, err)
	}
	selector, ok := values[0].(uint64)
	if !ok {
		return 0, EVM2AnyMessage{}, eris.Wrapf(ccip.ErrMalformedMessage, "unexpected selector type %T", values[0])
	}
	msg, err := fromABI(values[1])
	if err != nil {
		return 0, EVM2AnyMessage{}, err
	}

	again, err := packRouterCall(method, selector, msg)
	if err != nil || !bytes.Equal(again, calldata) {
		return 0, EVM2AnyMessage{}, eris.Wrapf(ccip.ErrMalformedMessage, "%s calldata is not canonically encoded", method)
	}
	return selector, msg, nil
}
