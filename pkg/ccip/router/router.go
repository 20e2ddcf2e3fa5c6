// Package router talks to the CCIP routers on both chains: fee quotes and ccipSend transactions on
// EVM, and the internal message that carries a CCIPSend cell to the TON router.
package router

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
)

// FeeBufferPercent is added on top of a quoted fee to absorb price movement before inclusion.
const FeeBufferPercent = 10

// FeeQuoter quotes the fee of delivering a message to a destination chain.
type FeeQuoter interface {
	GetFee(ctx context.Context, destChainSelector uint64, msg message.EVM2AnyMessage) (*big.Int, error)
}

// Sender builds the transaction that submits a message to the router.
type Sender interface {
	PrepareSend(ctx context.Context, from common.Address, destChainSelector uint64,
		msg message.EVM2AnyMessage) (ethereum.CallMsg, error)
}

var (
	_ FeeQuoter = (*EVMRouter)(nil)
	_ Sender    = (*EVMRouter)(nil)
)

// EVMRouter is a read-only client of an EVM CCIP router contract.
type EVMRouter struct {
	address common.Address
	caller  ethereum.ContractCaller
	logger  zerolog.Logger
}

type Option func(*EVMRouter)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *EVMRouter) {
		r.logger = logger
	}
}

func NewEVMRouter(address common.Address, caller ethereum.ContractCaller, opts ...Option) (*EVMRouter, error) {
	if caller == nil {
		return nil, eris.New("contract caller is required")
	}
	if address == (common.Address{}) {
		return nil, eris.Wrap(ccip.ErrFormat, "router address is required")
	}
	r := &EVMRouter{address: address, caller: caller, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *EVMRouter) Address() common.Address {
	return r.address
}

// GetFee calls getFee on the router at the latest block.
func (r *EVMRouter) GetFee(
	ctx context.Context, destChainSelector uint64, msg message.EVM2AnyMessage,
) (*big.Int, error) {
	calldata, err := message.PackGetFee(destChainSelector, msg)
	if err != nil {
		return nil, eris.Wrap(err, "failed to pack getFee")
	}
	ret, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.address, Data: calldata}, nil)
	if err != nil {
		return nil, eris.Wrap(err, "getFee call failed")
	}
	fee, err := message.UnpackFee(ret)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().
		Uint64("dest_chain_selector", destChainSelector).
		Str("fee", fee.String()).
		Msg("Quoted CCIP fee")
	return fee, nil
}

// PrepareSend quotes the fee and returns the ccipSend transaction from the given sender. The
// buffered fee is attached as value when the message pays in the native asset; otherwise the fee
// token must already be approved and no value is sent.
func (r *EVMRouter) PrepareSend(
	ctx context.Context, from common.Address, destChainSelector uint64, msg message.EVM2AnyMessage,
) (ethereum.CallMsg, error) {
	fee, err := r.GetFee(ctx, destChainSelector, msg)
	if err != nil {
		return ethereum.CallMsg{}, err
	}
	return r.SendCall(from, destChainSelector, msg, FeeWithBuffer(fee))
}

// SendCall returns the ccipSend transaction for a known fee.
func (r *EVMRouter) SendCall(
	from common.Address, destChainSelector uint64, msg message.EVM2AnyMessage, fee *big.Int,
) (ethereum.CallMsg, error) {
	if fee == nil || fee.Sign() < 0 {
		return ethereum.CallMsg{}, eris.Wrap(ccip.ErrFormat, "fee must be a non-negative amount")
	}
	calldata, err := message.PackCCIPSend(destChainSelector, msg)
	if err != nil {
		return ethereum.CallMsg{}, eris.Wrap(err, "failed to pack ccipSend")
	}
	value := new(big.Int)
	if msg.PaysNative() {
		value.Set(fee)
	}
	return ethereum.CallMsg{From: from, To: &r.address, Value: value, Data: calldata}, nil
}

// FeeWithBuffer returns fee increased by FeeBufferPercent, rounded down.
func FeeWithBuffer(fee *big.Int) *big.Int {
	out := new(big.Int).Mul(fee, big.NewInt(100+FeeBufferPercent))
	return out.Quo(out, big.NewInt(100))
}
