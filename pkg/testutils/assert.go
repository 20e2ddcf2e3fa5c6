package testutils

import (
	"bytes"
	"math/big"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/holiman/uint256"
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"
	gotest "gotest.tools/v3/assert"
)

type helperT interface {
	Helper()
}

// CodecOptions compares decoded codec values by meaning. Big integers compare numerically,
// TON addresses by type, workchain and hash, and nil slices equal empty ones.
func CodecOptions() gocmp.Options {
	return gocmp.Options{
		gocmp.Comparer(equalBig),
		gocmp.Comparer(equalUint256),
		gocmp.Comparer(equalTONAddress),
		cmpopts.EquateEmpty(),
	}
}

// NilError fails the test with the full eris stack trace of err.
func NilError(t gotest.TestingT, err error, msgAndArgs ...interface{}) {
	if ht, ok := t.(helperT); ok {
		ht.Helper()
	}
	msgAndArgs = append([]interface{}{eris.ToString(err, true)}, msgAndArgs...)
	gotest.NilError(t, err, msgAndArgs...)
}

// ErrorIs walks the whole chain, so wrapped sentinels and typed exit errors both match.
func ErrorIs(t gotest.TestingT, err error, expected error, msgAndArgs ...interface{}) {
	if ht, ok := t.(helperT); ok {
		ht.Helper()
	}
	msgAndArgs = append([]interface{}{eris.ToString(err, true)}, msgAndArgs...)
	gotest.ErrorIs(t, err, expected, msgAndArgs...)
}

// DeepEqual compares with CodecOptions plus any extra options.
func DeepEqual(t gotest.TestingT, x, y interface{}, opts ...gocmp.Option) {
	if ht, ok := t.(helperT); ok {
		ht.Helper()
	}
	gotest.DeepEqual(t, x, y, append(gocmp.Options{CodecOptions()}, opts...))
}

func equalBig(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

func equalUint256(a, b *uint256.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Eq(b)
}

func equalTONAddress(a, b *address.Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() || a.Workchain() != b.Workchain() {
		return false
	}
	return bytes.Equal(a.Data(), b.Data())
}
