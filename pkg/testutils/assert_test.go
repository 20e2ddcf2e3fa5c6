package testutils_test

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/xssnick/tonutils-go/address"

	"github.com/argus-labs/ccip-bridge/pkg/testutils"
)

// recorder captures failures instead of failing the enclosing test.
type recorder struct {
	failed bool
	logs   []string
}

func (r *recorder) Fail()    { r.failed = true }
func (r *recorder) FailNow() { r.failed = true }
func (r *recorder) Log(args ...interface{}) {
	r.logs = append(r.logs, fmt.Sprint(args...))
}

type sample struct {
	Amount *big.Int
	Gas    *uint256.Int
	Addr   *address.Address
	Data   []byte
}

func TestDeepEqual_ComparesByValue(t *testing.T) {
	t.Parallel()
	hash := make([]byte, 32)
	hash[0] = 0xaa

	a := sample{
		Amount: big.NewInt(1_000),
		Gas:    uint256.NewInt(7),
		Addr:   address.NewAddress(0, 0, hash),
		Data:   nil,
	}
	b := sample{
		Amount: new(big.Int).SetUint64(1_000),
		Gas:    uint256.NewInt(7),
		Addr:   address.NewAddress(0, 0, append([]byte(nil), hash...)),
		Data:   []byte{},
	}

	r := &recorder{}
	testutils.DeepEqual(r, a, b)
	assert.False(t, r.failed, r.logs)
}

func TestDeepEqual_DetectsDifferences(t *testing.T) {
	t.Parallel()
	hash := make([]byte, 32)

	base := sample{Amount: big.NewInt(1), Gas: uint256.NewInt(1), Addr: address.NewAddress(0, 0, hash)}
	cases := map[string]sample{
		"amount":    {Amount: big.NewInt(2), Gas: base.Gas, Addr: base.Addr},
		"gas":       {Amount: base.Amount, Gas: uint256.NewInt(2), Addr: base.Addr},
		"nil gas":   {Amount: base.Amount, Addr: base.Addr},
		"workchain": {Amount: base.Amount, Gas: base.Gas, Addr: address.NewAddress(0, 0xff, hash)},
		"data":      {Amount: base.Amount, Gas: base.Gas, Addr: base.Addr, Data: []byte{1}},
	}
	for name, other := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := &recorder{}
			testutils.DeepEqual(r, base, other)
			assert.True(t, r.failed)
		})
	}
}

func TestErrorIs_MatchesWrappedSentinel(t *testing.T) {
	t.Parallel()
	sentinel := eris.New("sentinel")

	r := &recorder{}
	testutils.ErrorIs(r, eris.Wrap(sentinel, "outer"), sentinel)
	assert.False(t, r.failed, r.logs)

	r = &recorder{}
	testutils.ErrorIs(r, eris.New("other"), sentinel)
	assert.True(t, r.failed)
}

func TestNilError_LogsTrace(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	testutils.NilError(r, nil)
	assert.False(t, r.failed)

	r = &recorder{}
	testutils.NilError(r, eris.Wrap(eris.New("root cause"), "while decoding"))
	assert.True(t, r.failed)
	assert.Contains(t, fmt.Sprint(r.logs), "root cause")
}
