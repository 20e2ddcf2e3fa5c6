package receiver_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/receiver"
	"github.com/argus-labs/ccip-bridge/pkg/testutils"
)

const sepoliaSelector = uint64(16015286601757825753)

func helloBody(t *testing.T) message.Body {
	t.Helper()

	hash := make([]byte, 32)
	hash[31] = 1
	to, err := ccipaddress.NewCrossChainAddress(0, hash)
	require.NoError(t, err)
	return message.Body{
		ChainSelector: sepoliaSelector,
		Message: message.TVMMessage{
			Receiver:  to.Bytes(),
			Data:      []byte("Hello TON from EVM"),
			FeeToken:  ccipaddress.TONNativeFeeToken,
			ExtraArgs: extraargs.New(100_000_000, true),
		},
	}
}

func TestReceive_RoundTrip(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	for range 30 {
		root := testutils.RandBigUint(prng, ccip.RootIDBits)
		c, err := receiver.EncodeReceive(receiver.Receive{RootID: root, Body: helloBody(t)})
		require.NoError(t, err)

		op, err := receiver.PeekOpcode(c)
		require.NoError(t, err)
		assert.Equal(t, ccip.OpcodeReceive, op)

		got, err := receiver.DecodeReceive(c)
		require.NoError(t, err)
		assert.Equal(t, 0, root.Cmp(got.RootID))
		assert.Equal(t, sepoliaSelector, got.Body.ChainSelector)
		assert.Equal(t, []byte("Hello TON from EVM"), got.Body.Message.Data)
		assert.Empty(t, got.Body.Message.TokenAmounts)
	}
}

func TestReceive_Layout(t *testing.T) {
	t.Parallel()

	root := big.NewInt(0x1234)
	c, err := receiver.EncodeReceive(receiver.Receive{RootID: root, Body: helloBody(t)})
	require.NoError(t, err)

	s := c.BeginParse()
	assert.Equal(t, uint64(0xb3126df1), s.MustLoadUInt(32))
	gotRoot, err := s.LoadBigUInt(224)
	require.NoError(t, err)
	assert.Equal(t, 0, root.Cmp(gotRoot))
	assert.Equal(t, sepoliaSelector, s.MustLoadUInt(64))
}

func TestReceive_RootIDWidth(t *testing.T) {
	t.Parallel()

	tooWide := new(big.Int).Lsh(big.NewInt(1), ccip.RootIDBits)
	_, err := receiver.EncodeReceive(receiver.Receive{RootID: tooWide, Body: helloBody(t)})
	require.ErrorIs(t, err, ccip.ErrFormat)

	_, err = receiver.EncodeReceive(receiver.Receive{RootID: big.NewInt(-1), Body: helloBody(t)})
	require.ErrorIs(t, err, ccip.ErrFormat)

	_, err = receiver.EncodeReceiveConfirm(receiver.ReceiveConfirm{RootID: tooWide, Body: helloBody(t)})
	require.ErrorIs(t, err, ccip.ErrFormat)
}

func TestReceive_Malformed(t *testing.T) {
	t.Parallel()

	confirm, err := receiver.EncodeReceiveConfirm(receiver.ReceiveConfirm{RootID: big.NewInt(1), Body: helloBody(t)})
	require.NoError(t, err)
	_, err = receiver.DecodeReceive(confirm)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage, "wrong opcode")

	headerOnly := cell.BeginCell().
		MustStoreUInt(uint64(ccip.OpcodeReceive), 32).
		MustStoreBigUInt(big.NewInt(1), 224).
		EndCell()
	_, err = receiver.DecodeReceive(headerOnly)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage, "missing body")

	_, err = receiver.DecodeReceive(cell.BeginCell().MustStoreUInt(uint64(ccip.OpcodeReceive), 32).EndCell())
	require.ErrorIs(t, err, ccip.ErrMalformedMessage, "missing root id")
}

func TestReceiveConfirm_RoundTrip(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	for range 30 {
		root := testutils.RandBigUint(prng, ccip.RootIDBits)
		in := receiver.ReceiveConfirm{RootID: root, Body: helloBody(t)}
		c, err := receiver.EncodeReceiveConfirm(in)
		require.NoError(t, err)

		op, err := receiver.PeekOpcode(c)
		require.NoError(t, err)
		assert.Equal(t, ccip.OpcodeReceiveConfirm, op)

		got, err := receiver.DecodeReceiveConfirm(c)
		testutils.NilError(t, err)
		testutils.DeepEqual(t, in, got)
	}
}

func TestReceiveConfirm_SharesReceiveLayout(t *testing.T) {
	t.Parallel()

	root := big.NewInt(0x1234)
	rcv, err := receiver.EncodeReceive(receiver.Receive{RootID: root, Body: helloBody(t)})
	require.NoError(t, err)
	confirm, err := receiver.EncodeReceiveConfirm(receiver.ReceiveConfirm{RootID: root, Body: helloBody(t)})
	require.NoError(t, err)

	s := confirm.BeginParse()
	assert.Equal(t, uint64(0x28f4166f), s.MustLoadUInt(32))
	gotRoot, err := s.LoadBigUInt(224)
	require.NoError(t, err)
	assert.Equal(t, 0, root.Cmp(gotRoot))
	assert.Equal(t, sepoliaSelector, s.MustLoadUInt(64))

	// Everything after the opcode is identical.
	assert.Equal(t, rcv.BitsSize(), confirm.BitsSize())
	assert.Equal(t, rcv.RefsNum(), confirm.RefsNum())
	rs := rcv.BeginParse()
	rs.MustLoadUInt(32)
	cs := confirm.BeginParse()
	cs.MustLoadUInt(32)
	assert.Equal(t, rs.MustLoadSlice(rs.BitsLeft()), cs.MustLoadSlice(cs.BitsLeft()))
}

func TestReceiveConfirm_Malformed(t *testing.T) {
	t.Parallel()

	rcv, err := receiver.EncodeReceive(receiver.Receive{RootID: big.NewInt(1), Body: helloBody(t)})
	require.NoError(t, err)
	_, err = receiver.DecodeReceiveConfirm(rcv)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage, "wrong opcode")

	rootOnly := cell.BeginCell().
		MustStoreUInt(uint64(ccip.OpcodeReceiveConfirm), 32).
		MustStoreBigUInt(big.NewInt(1), 224).
		EndCell()
	_, err = receiver.DecodeReceiveConfirm(rootOnly)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage, "missing body")

	short := cell.BeginCell().
		MustStoreUInt(uint64(ccip.OpcodeReceiveConfirm), 32).
		MustStoreUInt(1, 64).
		EndCell()
	_, err = receiver.DecodeReceiveConfirm(short)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage, "short root id")

	_, err = receiver.PeekOpcode(cell.BeginCell().MustStoreUInt(1, 8).EndCell())
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)
}
