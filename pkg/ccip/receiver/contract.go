package receiver

import (
	"math/big"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/assert"
	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/internal/tvm"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
)

type State uint8

const (
	StateUninitialized State = iota
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Delivery is a receive the contract accepted.
type Delivery struct {
	Caller *address.Address
	RootID *big.Int
	Body   message.Body
	// Confirmed is set once the authorized caller sends a receive-confirm for RootID.
	Confirmed bool
}

// Outcome is the result of a message the contract processed without aborting.
type Outcome struct {
	// Reply is the receive-confirm sent back to the caller, nil when nothing is sent.
	Reply *cell.Cell
}

// Contract is an in-process model of the receiver. It holds the persisted storage cell and applies
// one message at a time: storage is decoded from the cell, the message applied, and the cell only
// replaced if the whole message succeeds.
type Contract struct {
	mu         sync.Mutex
	state      State
	data       *cell.Cell
	deliveries []Delivery
	logger     zerolog.Logger
}

type Option func(*Contract)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Contract) {
		c.logger = logger
	}
}

func NewContract(opts ...Option) *Contract {
	c := &Contract{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deploy persists the initial storage. It moves the contract from Uninitialized to Active and
// can only happen once.
func (c *Contract) Deploy(s Storage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUninitialized {
		return eris.Wrap(ErrAlreadyDeployed, "")
	}
	data, err := EncodeStorage(s)
	if err != nil {
		return eris.Wrap(err, "failed to encode initial storage")
	}
	c.data = data
	c.state = StateActive
	c.logger.Info().
		Uint32("id", s.ID).
		Str("authorized_caller", ccipaddress.RawString(s.AuthorizedCaller)).
		Str("behavior", s.Behavior.String()).
		Msg("Receiver deployed")
	return nil
}

// Handle processes an internal message from caller. An empty body is a plain value transfer. Any
// error means the transaction aborted: the message bounces and storage is unchanged.
func (c *Contract) Handle(caller *address.Address, body *cell.Cell) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return Outcome{}, eris.Wrap(ErrNotDeployed, "")
	}
	if body == nil || (body.BitsSize() == 0 && int(body.RefsNum()) == 0) {
		return Outcome{}, nil
	}

	op, err := PeekOpcode(body)
	if err != nil {
		return Outcome{}, exit(ExitCodeCellUnderflow, err)
	}
	switch op {
	case ccip.OpcodeReceive:
		return c.handleReceive(caller, body)
	case ccip.OpcodeReceiveConfirm:
		return c.handleConfirm(caller, body)
	default:
		return Outcome{}, exit(ExitCodeWrongOpcode,
			eris.Wrapf(ccip.ErrMalformedMessage, "unsupported opcode 0x%08x", op))
	}
}

func (c *Contract) handleReceive(caller *address.Address, body *cell.Cell) (Outcome, error) {
	s, err := c.authorize(caller, "receive")
	if err != nil {
		return Outcome{}, err
	}

	rcv, err := DecodeReceive(body)
	if err != nil {
		return Outcome{}, exit(ExitCodeCellUnderflow, err)
	}

	switch s.Behavior {
	case BehaviorAccept:
	case BehaviorRejectAll:
		return Outcome{}, exit(ExitCodeRejectAll, eris.Wrap(ErrRejected, ""))
	case BehaviorConsumeAllGas:
		return Outcome{}, exit(ExitCodeOutOfGas, eris.Wrap(ErrOutOfGas, ""))
	default:
		assert.That(false, "storage decoded with unknown behavior %d", s.Behavior)
	}

	reply, err := EncodeReceiveConfirm(ReceiveConfirm{RootID: rcv.RootID, Body: rcv.Body})
	if err != nil {
		return Outcome{}, err
	}
	data, err := EncodeStorage(s)
	if err != nil {
		return Outcome{}, err
	}

	c.data = data
	c.deliveries = append(c.deliveries, Delivery{Caller: caller, RootID: rcv.RootID, Body: rcv.Body})
	c.logger.Debug().
		Str("root_id", rcv.RootID.String()).
		Uint64("source_chain_selector", rcv.Body.ChainSelector).
		Int("data_len", len(rcv.Body.Message.Data)).
		Msg("Accepted receive")
	return Outcome{Reply: reply}, nil
}

// handleConfirm marks every delivery with the confirmed root id. Storage is never touched and no
// reply is sent. A confirm for a root that was never delivered is accepted as a no-op.
func (c *Contract) handleConfirm(caller *address.Address, body *cell.Cell) (Outcome, error) {
	if _, err := c.authorize(caller, "receive confirm"); err != nil {
		return Outcome{}, err
	}
	rc, err := DecodeReceiveConfirm(body)
	if err != nil {
		return Outcome{}, exit(ExitCodeCellUnderflow, err)
	}

	matched := 0
	for i := range c.deliveries {
		if c.deliveries[i].RootID.Cmp(rc.RootID) == 0 {
			c.deliveries[i].Confirmed = true
			matched++
		}
	}
	c.logger.Debug().
		Str("root_id", rc.RootID.String()).
		Int("matched", matched).
		Msg("Received confirm")
	return Outcome{}, nil
}

// authorize decodes storage and fails with ExitCodeUnauthorized unless caller is the authorized
// caller.
func (c *Contract) authorize(caller *address.Address, what string) (Storage, error) {
	s, err := DecodeStorage(c.data)
	if err != nil {
		return Storage{}, err
	}
	if !tvm.AddrEqual(caller, s.AuthorizedCaller) {
		c.logger.Warn().
			Str("caller", ccipaddress.RawString(caller)).
			Str("authorized_caller", ccipaddress.RawString(s.AuthorizedCaller)).
			Msgf("Rejected %s from unauthorized caller", what)
		return Storage{}, exit(ExitCodeUnauthorized,
			eris.Wrapf(ccip.ErrUnauthorized, "%s may not deliver a %s", ccipaddress.RawString(caller), what))
	}
	return s, nil
}

// TransferOwnership nominates newOwner. Only the owner may call it.
func (c *Contract) TransferOwnership(caller, newOwner *address.Address) error {
	return c.update(func(s *Storage) error {
		return s.Ownable.ProposeOwner(caller, newOwner)
	})
}

// AcceptOwnership completes a transfer. Only the pending owner may call it.
func (c *Contract) AcceptOwnership(caller *address.Address) error {
	return c.update(func(s *Storage) error {
		return s.Ownable.AcceptOwnership(caller)
	})
}

func (c *Contract) update(fn func(*Storage) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return eris.Wrap(ErrNotDeployed, "")
	}
	s, err := DecodeStorage(c.data)
	if err != nil {
		return err
	}
	if err := fn(&s); err != nil {
		if eris.Is(err, ccip.ErrUnauthorized) {
			return exit(ExitCodeUnauthorized, err)
		}
		return err
	}
	data, err := EncodeStorage(s)
	if err != nil {
		return err
	}
	c.data = data
	return nil
}

// -------------------------------------------------------------------------------------------------
// Getters
// -------------------------------------------------------------------------------------------------

func (c *Contract) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Data returns the persisted storage cell.
func (c *Contract) Data() *cell.Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Storage decodes the persisted storage.
func (c *Contract) Storage() (Storage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return Storage{}, eris.Wrap(ErrNotDeployed, "")
	}
	return DecodeStorage(c.data)
}

func (c *Contract) ID() (uint32, error) {
	s, err := c.Storage()
	return s.ID, err
}

func (c *Contract) AuthorizedCaller() (*address.Address, error) {
	s, err := c.Storage()
	return s.AuthorizedCaller, err
}

// Deliveries returns the accepted receives in order.
func (c *Contract) Deliveries() []Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.deliveries)
}

func (c *Contract) FacilityID() uint32 {
	return ccip.FacilityID
}

// ErrorCode maps a local error code into the facility's range.
func (c *Contract) ErrorCode(local uint32) uint32 {
	return ccip.ExitCode(local)
}

// StateInit returns the state init of a receiver with the given code and initial storage, and the
// address it deploys to.
func StateInit(code *cell.Cell, s Storage, workchain int8) (*tlb.StateInit, *address.Address, error) {
	if code == nil {
		return nil, nil, eris.Wrap(ccip.ErrFormat, "contract code is required")
	}
	data, err := EncodeStorage(s)
	if err != nil {
		return nil, nil, err
	}
	init := &tlb.StateInit{Code: code, Data: data}
	stateCell, err := tlb.ToCell(init)
	if err != nil {
		return nil, nil, eris.Wrap(err, "failed to serialize state init")
	}
	return init, address.NewAddress(0, byte(workchain), stateCell.Hash()), nil
}
