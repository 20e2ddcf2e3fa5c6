package router

import (
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
)

// DefaultTONSendValue is attached to a CCIPSend when no amount is given. The router refunds what
// the fee and forwarding do not consume.
var DefaultTONSendValue = tlb.MustFromTON("0.5") //nolint:gochecknoglobals // constant value

// TONRouterMessage wraps a CCIPSend cell in a bounceable internal message to the TON router. A
// zero amount attaches DefaultTONSendValue.
func TONRouterMessage(router *address.Address, amount tlb.Coins, send *cell.Cell) (*wallet.Message, error) {
	if router == nil || router.Type() != address.StdAddress {
		return nil, eris.Wrap(ccip.ErrFormat, "TON router must be a standard address")
	}
	if _, err := message.ParseSend(send); err != nil {
		return nil, eris.Wrap(err, "refusing to send an invalid CCIPSend")
	}
	if amount.Nano().Sign() == 0 {
		amount = DefaultTONSendValue
	}
	return wallet.SimpleMessage(router, amount, send), nil
}
