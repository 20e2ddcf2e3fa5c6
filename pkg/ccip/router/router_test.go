package router_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/router"
	"github.com/argus-labs/ccip-bridge/pkg/testutils"
)

const tonSelector = uint64(1399300952838017768)

type fakeCaller struct {
	mu    sync.Mutex
	calls []ethereum.CallMsg
	fee   *big.Int
	err   error
}

func (f *fakeCaller) CallContract(_ context.Context, call ethereum.CallMsg, block *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	if block != nil {
		return nil, errors.New("expected a call at the latest block")
	}
	return message.Router().Methods[message.MethodGetFee].Outputs.Pack(f.fee)
}

func helloTON(t *testing.T, feeToken common.Address) message.EVM2AnyMessage {
	t.Helper()
	prng := testutils.NewRand(t)

	receiver, err := ccipaddress.FromTON(testutils.RandTONAddress(prng))
	require.NoError(t, err)
	msg, _, err := message.BuildEVMToTON(receiver, []byte("Hello TON from EVM"), nil, feeToken,
		extraargs.New(1_000_000, true))
	require.NoError(t, err)
	return msg
}

func newRouter(t *testing.T, caller ethereum.ContractCaller) *router.EVMRouter {
	t.Helper()
	r, err := router.NewEVMRouter(common.HexToAddress("0x0BF3dE8c5D3e8A2B34D2BEeB17ABfCeBaf363A59"), caller)
	require.NoError(t, err)
	return r
}

func TestNewEVMRouter_Invalid(t *testing.T) {
	t.Parallel()

	_, err := router.NewEVMRouter(common.HexToAddress("0x01"), nil)
	require.Error(t, err)

	_, err = router.NewEVMRouter(common.Address{}, &fakeCaller{})
	require.ErrorIs(t, err, ccip.ErrFormat)
}

func TestGetFee(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{fee: big.NewInt(123_456_789)}
	r := newRouter(t, caller)
	msg := helloTON(t, common.Address{})

	fee, err := r.GetFee(context.Background(), tonSelector, msg)
	require.NoError(t, err)
	assert.Equal(t, int64(123_456_789), fee.Int64())

	require.Len(t, caller.calls, 1)
	call := caller.calls[0]
	require.NotNil(t, call.To)
	assert.Equal(t, r.Address(), *call.To)

	selector, got, err := message.UnpackGetFee(call.Data)
	require.NoError(t, err)
	assert.Equal(t, tonSelector, selector)
	assert.Equal(t, msg.Receiver, got.Receiver)
	assert.Equal(t, msg.ExtraArgs, got.ExtraArgs)
}

func TestGetFee_CallError(t *testing.T) {
	t.Parallel()

	boom := errors.New("rpc unavailable")
	r := newRouter(t, &fakeCaller{err: boom})

	_, err := r.GetFee(context.Background(), tonSelector, helloTON(t, common.Address{}))
	require.ErrorIs(t, err, boom)
}

func TestGetFee_InvalidMessage(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{fee: big.NewInt(1)}
	r := newRouter(t, caller)

	_, err := r.GetFee(context.Background(), tonSelector, message.EVM2AnyMessage{})
	require.ErrorIs(t, err, ccip.ErrFormat)
	assert.Empty(t, caller.calls)
}

func TestPrepareSend_NativeFee(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	r := newRouter(t, &fakeCaller{fee: big.NewInt(1_000)})
	from := testutils.RandEVMAddress(prng)
	msg := helloTON(t, common.Address{})

	call, err := r.PrepareSend(context.Background(), from, tonSelector, msg)
	require.NoError(t, err)
	assert.Equal(t, from, call.From)
	assert.Equal(t, int64(1_100), call.Value.Int64())

	selector, got, err := message.UnpackCCIPSend(call.Data)
	require.NoError(t, err)
	assert.Equal(t, tonSelector, selector)
	assert.Equal(t, msg.Data, got.Data)
}

func TestPrepareSend_TokenFee(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	r := newRouter(t, &fakeCaller{fee: big.NewInt(1_000)})
	msg := helloTON(t, testutils.RandEVMAddress(prng))

	call, err := r.PrepareSend(context.Background(), testutils.RandEVMAddress(prng), tonSelector, msg)
	require.NoError(t, err)
	assert.Equal(t, 0, call.Value.Sign())
}

func TestSendCall_RejectsNegativeFee(t *testing.T) {
	t.Parallel()

	r := newRouter(t, &fakeCaller{})
	_, err := r.SendCall(common.Address{}, tonSelector, helloTON(t, common.Address{}), big.NewInt(-1))
	require.ErrorIs(t, err, ccip.ErrFormat)
	_, err = r.SendCall(common.Address{}, tonSelector, helloTON(t, common.Address{}), nil)
	require.ErrorIs(t, err, ccip.ErrFormat)
}

func TestFeeWithBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fee, want int64
	}{
		{fee: 0, want: 0},
		{fee: 9, want: 9},
		{fee: 10, want: 11},
		{fee: 1_000, want: 1_100},
		{fee: 123_456_789, want: 135_802_467},
	}
	for _, tc := range tests {
		fee := big.NewInt(tc.fee)
		assert.Equal(t, tc.want, router.FeeWithBuffer(fee).Int64(), "fee %d", tc.fee)
		assert.Equal(t, tc.fee, fee.Int64(), "input must not be modified")
	}
}
