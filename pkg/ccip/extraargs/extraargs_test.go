package extraargs_test

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/testutils"
)

func TestBothForms_DecodeToSameValue(t *testing.T) {
	t.Parallel()

	g := testutils.NewGen()
	for !g.Done() {
		gas := uint256.MustFromBig(g.EdgeUint(256))
		args := extraargs.GenericExtraArgsV2{GasLimit: gas, AllowOutOfOrderExecution: g.Bool()}

		abiForm, err := extraargs.EncodeABI(args)
		require.NoError(t, err)
		cellForm, err := extraargs.EncodeCell(args)
		require.NoError(t, err)

		fromABI, err := extraargs.DecodeABI(abiForm)
		require.NoError(t, err)
		fromCell, err := extraargs.DecodeCell(cellForm)
		require.NoError(t, err)

		assert.True(t, args.Equal(fromABI), "abi: %v", fromABI)
		assert.True(t, fromABI.Equal(fromCell), "cell: %v", fromCell)
	}
}

func TestBothForms_RandomGasLimits(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	for range 100 {
		args := extraargs.GenericExtraArgsV2{
			GasLimit:                 uint256.MustFromBig(testutils.RandBigUint(prng, 256)),
			AllowOutOfOrderExecution: prng.IntN(2) == 1,
		}
		abiForm, err := extraargs.EncodeABI(args)
		require.NoError(t, err)
		cellForm, err := extraargs.EncodeCell(args)
		require.NoError(t, err)

		fromABI, err := extraargs.DecodeABI(abiForm)
		require.NoError(t, err)
		fromCell, err := extraargs.DecodeCell(cellForm)
		require.NoError(t, err)
		assert.True(t, fromABI.Equal(fromCell))
		assert.True(t, args.Equal(fromCell))
	}
}

func TestEncodeABI_Layout(t *testing.T) {
	t.Parallel()

	bz, err := extraargs.EncodeABI(extraargs.New(100_000_000, true))
	require.NoError(t, err)
	require.Len(t, bz, extraargs.ABILength)

	assert.Equal(t, []byte{0x18, 0x1d, 0xcf, 0x10}, bz[:4])
	assert.Equal(t, 0, big.NewInt(100_000_000).Cmp(new(big.Int).SetBytes(bz[4:36])))
	want := make([]byte, 32)
	want[31] = 1
	assert.Equal(t, want, bz[36:68])
}

func TestEncodeCell_Layout(t *testing.T) {
	t.Parallel()

	c, err := extraargs.EncodeCell(extraargs.New(1, false))
	require.NoError(t, err)
	assert.Equal(t, uint(extraargs.CellBits), c.BitsSize())

	s := c.BeginParse()
	assert.Equal(t, uint64(ccip.GenericExtraArgsV2Tag), s.MustLoadUInt(32))
	present, err := s.LoadBoolBit()
	require.NoError(t, err)
	assert.True(t, present)
	gas, err := s.LoadBigUInt(256)
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(1).Cmp(gas))
	allowOOO, err := s.LoadBoolBit()
	require.NoError(t, err)
	assert.False(t, allowOOO)
}

func TestEncodeABI_RequiresGasLimit(t *testing.T) {
	t.Parallel()

	_, err := extraargs.EncodeABI(extraargs.GenericExtraArgsV2{})
	require.ErrorIs(t, err, ccip.ErrFormat)
}

func TestCell_AbsentGasLimit(t *testing.T) {
	t.Parallel()

	args := extraargs.GenericExtraArgsV2{AllowOutOfOrderExecution: true}
	c, err := extraargs.EncodeCell(args)
	require.NoError(t, err)
	assert.Equal(t, uint(34), c.BitsSize())

	got, err := extraargs.DecodeCell(c)
	require.NoError(t, err)
	assert.Nil(t, got.GasLimit)
	assert.True(t, got.Equal(args))
}

func TestDecode_UnsupportedTag(t *testing.T) {
	t.Parallel()

	bz, err := extraargs.EncodeABI(extraargs.New(5, false))
	require.NoError(t, err)
	binary.BigEndian.PutUint32(bz, 0x97a657c9) // EVMExtraArgsV1
	_, err = extraargs.DecodeABI(bz)
	require.ErrorIs(t, err, ccip.ErrUnsupportedExtraArgsTag)

	c := cell.BeginCell().
		MustStoreUInt(0x97a657c9, 32).
		MustStoreBoolBit(true).
		MustStoreBigUInt(big.NewInt(5), 256).
		MustStoreBoolBit(false).
		EndCell()
	_, err = extraargs.DecodeCell(c)
	require.ErrorIs(t, err, ccip.ErrUnsupportedExtraArgsTag)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	bz, err := extraargs.EncodeABI(extraargs.New(5, false))
	require.NoError(t, err)

	_, err = extraargs.DecodeABI(bz[:3])
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)
	_, err = extraargs.DecodeABI(bz[:40])
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)
	_, err = extraargs.DecodeABI(append(bz, 0))
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)

	nonCanonicalBool := append([]byte(nil), bz...)
	nonCanonicalBool[67] = 2
	_, err = extraargs.DecodeABI(nonCanonicalBool)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)

	truncated := cell.BeginCell().
		MustStoreUInt(uint64(ccip.GenericExtraArgsV2Tag), 32).
		MustStoreBoolBit(true).
		MustStoreUInt(5, 64).
		EndCell()
	_, err = extraargs.DecodeCell(truncated)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)

	trailing := cell.BeginCell().
		MustStoreUInt(uint64(ccip.GenericExtraArgsV2Tag), 32).
		MustStoreBoolBit(true).
		MustStoreBigUInt(big.NewInt(5), 256).
		MustStoreBoolBit(true).
		MustStoreUInt(0, 1).
		EndCell()
	_, err = extraargs.DecodeCell(trailing)
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)

	_, err = extraargs.DecodeCell(cell.BeginCell().EndCell())
	require.ErrorIs(t, err, ccip.ErrMalformedMessage)
}
