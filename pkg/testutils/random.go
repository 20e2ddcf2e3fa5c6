package testutils

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xssnick/tonutils-go/address"
)

var Seed uint64 //nolint:gochecknoglobals // intentionally global for test reproducibility

func init() { //nolint:gochecknoinits // intentionally using init to set seed
	Seed = uint64(time.Now().UnixNano()) //nolint:gosec // it's ok
	if envSeed := os.Getenv("TEST_SEED"); envSeed != "" {
		parsed, err := strconv.ParseUint(envSeed, 0, 64)
		if err == nil { // Only set using the env if it's valid
			Seed = parsed
		}
	}
	fmt.Printf("to reproduce: TEST_SEED=0x%x\n", Seed) //nolint:forbidigo // just for testing
}

func NewRand(t *testing.T) *rand.Rand {
	t.Helper()
	return rand.New(rand.NewPCG(Seed, Seed)) //nolint:gosec // weak RNG is fine for tests
}

// WeightedOp is a constraint for operation types that use their value as the weight.
type WeightedOp interface {
	~uint8 | ~uint16 | ~uint32 | ~int
}

// RandWeightedOp returns a random operation from a slice, using each op's value as its weight.
func RandWeightedOp[T WeightedOp](r *rand.Rand, ops []T) T {
	var total int
	for _, op := range ops {
		total += int(op)
	}

	pick := r.IntN(total)
	for _, op := range ops {
		weight := int(op)
		if pick < weight {
			return op
		}
		pick -= weight
	}
	panic("unreachable")
}

// RandString generates a random alphanumeric string of the given length.
func RandString(r *rand.Rand, length int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = chars[r.IntN(len(chars))]
	}
	return string(b)
}

// RandBytes returns length random bytes. The result is never nil.
func RandBytes(r *rand.Rand, length int) []byte {
	b := make([]byte, length)
	for i := range b {
		b[i] = byte(r.IntN(256))
	}
	return b
}

// RandBigUint returns a random unsigned integer of at most bits bits. Roughly one value in eight
// is pinned to an edge (zero or all ones) since that is where width bugs live.
func RandBigUint(r *rand.Rand, bits uint) *big.Int {
	switch r.IntN(8) {
	case 0:
		return new(big.Int)
	case 1:
		return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	default:
		b := RandBytes(r, int((bits+7)/8))
		v := new(big.Int).SetBytes(b)
		v.Rsh(v, uint(len(b))*8-bits)
		return v
	}
}

// RandEVMAddress returns a random 20-byte address.
func RandEVMAddress(r *rand.Rand) common.Address {
	return common.BytesToAddress(RandBytes(r, common.AddressLength))
}

// RandTONAddress returns a random standard address on the basechain or the masterchain.
func RandTONAddress(r *rand.Rand) *address.Address {
	workchain := byte(0)
	if r.IntN(4) == 0 {
		workchain = 0xff
	}
	return address.NewAddress(0, workchain, RandBytes(r, 32))
}
