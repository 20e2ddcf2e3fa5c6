// Package receiver models the TON CCIP test receiver: its persisted storage, the receive and
// receive-confirm messages it understands, and the contract state machine that applies them.
package receiver

import (
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/internal/tvm"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/ownable"
)

// Behavior selects how the receiver reacts to an authorized receive.
type Behavior uint8

const (
	// BehaviorAccept records the delivery and replies with a receive-confirm.
	BehaviorAccept Behavior = iota
	// BehaviorRejectAll aborts with the facility's reject exit code so the message bounces.
	BehaviorRejectAll
	// BehaviorConsumeAllGas burns the attached gas and aborts with the out-of-gas exit code.
	BehaviorConsumeAllGas
)

const behaviorBits = 8

func (b Behavior) Valid() bool {
	switch b {
	case BehaviorAccept, BehaviorRejectAll, BehaviorConsumeAllGas:
		return true
	default:
		return false
	}
}

func (b Behavior) String() string {
	switch b {
	case BehaviorAccept:
		return "accept"
	case BehaviorRejectAll:
		return "reject_all"
	case BehaviorConsumeAllGas:
		return "consume_all_gas"
	default:
		return "unknown"
	}
}

// ParseBehavior is the inverse of Behavior.String.
func ParseBehavior(s string) (Behavior, error) {
	for _, b := range []Behavior{BehaviorAccept, BehaviorRejectAll, BehaviorConsumeAllGas} {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, eris.Wrapf(ccip.ErrFormat, "unknown behavior %q", s)
}

// Storage is the receiver's persisted state.
type Storage struct {
	ID      uint32
	Ownable ownable.Ownable2Step
	// AuthorizedCaller is the offramp, the only party allowed to deliver a receive.
	AuthorizedCaller *address.Address
	Behavior         Behavior
}

// NewInitialStorage is the storage a fresh deployment starts with: id 0, the deployer as owner,
// no pending owner and the Accept behavior.
func NewInitialStorage(owner, authorizedCaller *address.Address) Storage {
	return Storage{
		ID:               0,
		Ownable:          ownable.New(owner),
		AuthorizedCaller: authorizedCaller,
		Behavior:         BehaviorAccept,
	}
}

// EncodeStorage writes id:32, the ownable state, the authorized caller and behavior:8.
func EncodeStorage(s Storage) (*cell.Cell, error) {
	if !s.Behavior.Valid() {
		return nil, eris.Wrapf(ccip.ErrFormat, "unknown behavior %d", s.Behavior)
	}
	w := tvm.NewWriter().Uint(uint64(s.ID), 32, "id")
	s.Ownable.Store(w).
		Addr(s.AuthorizedCaller, "authorized caller").
		Uint(uint64(s.Behavior), behaviorBits, "behavior")
	c, err := w.End()
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode receiver storage")
	}
	return c, nil
}

// DecodeStorage fails with ErrCorruptStorage on truncated data, a bad address, an unknown
// behavior or anything left over after the last field.
func DecodeStorage(c *cell.Cell) (Storage, error) {
	r := tvm.NewReader(c, ccip.ErrCorruptStorage)
	s := Storage{ID: uint32(r.Uint(32, "id"))}
	s.Ownable = ownable.Load(r)
	s.AuthorizedCaller = r.Addr("authorized caller")
	s.Behavior = Behavior(r.Uint(behaviorBits, "behavior"))
	if err := r.Finish("receiver storage"); err != nil {
		return Storage{}, err
	}
	if !s.Behavior.Valid() {
		return Storage{}, eris.Wrapf(ccip.ErrCorruptStorage, "unknown behavior %d", s.Behavior)
	}
	return s, nil
}
