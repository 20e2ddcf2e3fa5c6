package receiver

import (
	"math/big"

	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/internal/tvm"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
)

// Receive is the message the offramp delivers: a 224-bit root id followed by the inlined body.
type Receive struct {
	RootID *big.Int
	Body   message.Body
}

// ReceiveConfirm shares the receive layout under its own opcode. The receiver replies with it after
// an accepted receive, echoing the delivered body.
type ReceiveConfirm struct {
	RootID *big.Int
	Body   message.Body
}

func EncodeReceive(rcv Receive) (*cell.Cell, error) {
	return encodeEnvelope(ccip.OpcodeReceive, rcv.RootID, rcv.Body, "receive")
}

// DecodeReceive validates the opcode before reading the root id and the body.
func DecodeReceive(c *cell.Cell) (Receive, error) {
	root, body, err := decodeEnvelope(c, ccip.OpcodeReceive, "receive")
	if err != nil {
		return Receive{}, err
	}
	return Receive{RootID: root, Body: body}, nil
}

func EncodeReceiveConfirm(rc ReceiveConfirm) (*cell.Cell, error) {
	return encodeEnvelope(ccip.OpcodeReceiveConfirm, rc.RootID, rc.Body, "receive confirm")
}

func DecodeReceiveConfirm(c *cell.Cell) (ReceiveConfirm, error) {
	root, body, err := decodeEnvelope(c, ccip.OpcodeReceiveConfirm, "receive confirm")
	if err != nil {
		return ReceiveConfirm{}, err
	}
	return ReceiveConfirm{RootID: root, Body: body}, nil
}

func encodeEnvelope(opcode uint32, root *big.Int, b message.Body, what string) (*cell.Cell, error) {
	body, err := message.BodyBuilder(b)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to encode %s body", what)
	}
	return tvm.NewWriter().
		Uint(uint64(opcode), ccip.OpcodeBits, "opcode").
		BigUint(root, ccip.RootIDBits, "root id").
		Builder(body, "body").
		End()
}

func decodeEnvelope(c *cell.Cell, opcode uint32, what string) (*big.Int, message.Body, error) {
	r := tvm.NewReader(c, ccip.ErrMalformedMessage)
	if err := expectOpcode(r, opcode, what); err != nil {
		return nil, message.Body{}, err
	}
	root := r.BigUint(ccip.RootIDBits, "root id")
	if err := r.Err(); err != nil {
		return nil, message.Body{}, err
	}
	body, err := message.LoadBody(r.Slice())
	if err != nil {
		return nil, message.Body{}, eris.Wrapf(err, "%s body", what)
	}
	return root, body, nil
}

// PeekOpcode returns the opcode of a non-empty message body.
func PeekOpcode(c *cell.Cell) (uint32, error) {
	r := tvm.NewReader(c, ccip.ErrMalformedMessage).Require(ccip.OpcodeBits, 0, "opcode")
	op := uint32(r.Uint(ccip.OpcodeBits, "opcode"))
	return op, r.Err()
}

func expectOpcode(r *tvm.Reader, want uint32, what string) error {
	r.Require(ccip.OpcodeBits, 0, what+" opcode")
	if got := uint32(r.Uint(ccip.OpcodeBits, "opcode")); r.Err() == nil && got != want {
		return eris.Wrapf(ccip.ErrMalformedMessage, "opcode 0x%08x is not %s (0x%08x)", got, what, want)
	}
	return r.Err()
}
