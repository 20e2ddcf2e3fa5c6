package router_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/router"
	"github.com/argus-labs/ccip-bridge/pkg/testutils"
)

func helloEVMSend(t *testing.T) *cell.Cell {
	t.Helper()
	prng := testutils.NewRand(t)

	c, err := message.BuildTONToEVM(0, 16015286601757825753, testutils.RandEVMAddress(prng),
		[]byte("Hello EVM from TON"), nil, ccipaddress.TONNativeFeeToken, extraargs.New(1_000_000, true))
	require.NoError(t, err)
	return c
}

func TestTONRouterMessage(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	to := testutils.RandTONAddress(prng)
	send := helloEVMSend(t)

	msg, err := router.TONRouterMessage(to, tlb.MustFromTON("1.25"), send)
	require.NoError(t, err)
	require.NotNil(t, msg.InternalMessage)
	assert.True(t, msg.InternalMessage.Bounce)
	assert.Equal(t, to.String(), msg.InternalMessage.DstAddr.String())
	assert.Equal(t, tlb.MustFromTON("1.25").Nano(), msg.InternalMessage.Amount.Nano())
	assert.Equal(t, send.Hash(), msg.InternalMessage.Body.Hash())
}

func TestTONRouterMessage_DefaultValue(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	msg, err := router.TONRouterMessage(testutils.RandTONAddress(prng), tlb.MustFromTON("0"), helloEVMSend(t))
	require.NoError(t, err)
	assert.Equal(t, router.DefaultTONSendValue.Nano(), msg.InternalMessage.Amount.Nano())
	assert.Equal(t, "500000000", msg.InternalMessage.Amount.Nano().String())
}

func TestTONRouterMessage_Invalid(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	_, err := router.TONRouterMessage(nil, router.DefaultTONSendValue, helloEVMSend(t))
	require.ErrorIs(t, err, ccip.ErrFormat)

	_, err = router.TONRouterMessage(address.NewAddressNone(), router.DefaultTONSendValue, helloEVMSend(t))
	require.ErrorIs(t, err, ccip.ErrFormat)

	garbage := cell.BeginCell().MustStoreUInt(0xdeadbeef, 32).EndCell()
	_, err = router.TONRouterMessage(testutils.RandTONAddress(prng), router.DefaultTONSendValue, garbage)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)
}
