package message

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/internal/tvm"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/tokenamount"
)

const (
	receiverLenBits = 8
	// stdAddrBits is addr_std without anycast: tag:2, anycast:1, workchain:8, hash:256.
	stdAddrBits = 2 + 1 + 8 + 256
	fieldRefs   = 3

	// MinSendBits is the shortest possible CCIPSend: every fixed field and an empty receiver.
	MinSendBits = ccip.OpcodeBits + ccip.QueryIDBits + ccip.ChainSelectorBits + receiverLenBits + stdAddrBits
	// MinBodyBits is the shortest possible inlined message body.
	MinBodyBits = ccip.ChainSelectorBits + receiverLenBits + stdAddrBits
)

// BuildTONToEVM assembles the CCIPSend cell for an EVM receiver. The receiver is written as a
// 32-byte padded EVM address and a zero queryID marks the correlation id as unused.
func BuildTONToEVM(
	queryID uint64,
	destChainSelector uint64,
	receiver common.Address,
	data []byte,
	tokens []tokenamount.TVMTokenAmount,
	feeToken *address.Address,
	args extraargs.GenericExtraArgsV2,
) (*cell.Cell, error) {
	return EncodeSend(Send{
		QueryID:           queryID,
		DestChainSelector: destChainSelector,
		Message: TVMMessage{
			Receiver:     ccipaddress.EncodePaddedEVM(receiver),
			Data:         data,
			TokenAmounts: tokens,
			FeeToken:     feeToken,
			ExtraArgs:    args,
		},
	})
}

// EncodeSend writes opcode, queryID:64, destChainSelector:64 and the message fields.
func EncodeSend(s Send) (*cell.Cell, error) {
	w := tvm.NewWriter().
		Uint(uint64(ccip.OpcodeCCIPSend), ccip.OpcodeBits, "opcode").
		Uint(s.QueryID, ccip.QueryIDBits, "query id").
		Uint(s.DestChainSelector, ccip.ChainSelectorBits, "destination chain selector")
	storeFields(w, s.Message)
	c, err := w.End()
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode CCIPSend")
	}
	return c, nil
}

// ParseSend validates the opcode, then the header length, then reads every field. Any failure
// returns no partial result.
func ParseSend(c *cell.Cell) (Send, error) {
	r := tvm.NewReader(c, ccip.ErrMalformedMessage).Require(ccip.OpcodeBits, 0, "opcode")
	if op := uint32(r.Uint(ccip.OpcodeBits, "opcode")); r.Err() == nil && op != ccip.OpcodeCCIPSend {
		return Send{}, eris.Wrapf(ccip.ErrMalformedMessage, "opcode 0x%08x is not CCIPSend", op)
	}
	r.Require(MinSendBits-ccip.OpcodeBits, fieldRefs, "CCIPSend header")

	s := Send{
		QueryID:           r.Uint(ccip.QueryIDBits, "query id"),
		DestChainSelector: r.Uint(ccip.ChainSelectorBits, "destination chain selector"),
	}
	msg, err := loadFields(r)
	if err != nil {
		return Send{}, err
	}
	if err := r.Finish("CCIPSend"); err != nil {
		return Send{}, err
	}
	s.Message = msg
	return s, nil
}

// ParseSendBOC parses a serialized CCIPSend bag of cells.
func ParseSendBOC(boc []byte) (Send, error) {
	c, err := cell.FromBOC(boc)
	if err != nil {
		return Send{}, eris.Wrapf(ccip.ErrMalformedMessage, "invalid BOC: %v", err)
	}
	return ParseSend(c)
}

// BodyBuilder writes chainSelector:64 and the message fields, for inlining into a parent cell.
func BodyBuilder(b Body) (*cell.Builder, error) {
	w := tvm.NewWriter().Uint(b.ChainSelector, ccip.ChainSelectorBits, "chain selector")
	storeFields(w, b.Message)
	return w.Raw()
}

// LoadBody reads an inlined body from s and requires s to be fully consumed.
func LoadBody(s *cell.Slice) (Body, error) {
	r := tvm.NewSliceReader(s, ccip.ErrMalformedMessage).Require(MinBodyBits, fieldRefs, "message body")
	selector := r.Uint(ccip.ChainSelectorBits, "chain selector")
	msg, err := loadFields(r)
	if err != nil {
		return Body{}, err
	}
	if err := r.Finish("message body"); err != nil {
		return Body{}, err
	}
	return Body{ChainSelector: selector, Message: msg}, nil
}

func storeFields(w *tvm.Writer, m TVMMessage) {
	if len(m.Receiver) > 1<<receiverLenBits-1 {
		w.Fail(eris.Wrapf(ccip.ErrFormat, "receiver of %d bytes does not fit the length prefix", len(m.Receiver)))
		return
	}
	data, err := tvm.SnakeCell(m.Data, "data")
	if err != nil {
		w.Fail(err)
		return
	}
	tokens, err := tokenamount.EncodeCell(m.TokenAmounts)
	if err != nil {
		w.Fail(err)
		return
	}
	extra, err := extraargs.EncodeCell(m.ExtraArgs)
	if err != nil {
		w.Fail(err)
		return
	}
	w.Uint(uint64(len(m.Receiver)), receiverLenBits, "receiver length").
		Bytes(m.Receiver, "receiver").
		Ref(data, "data").
		Ref(tokens, "token amounts").
		Addr(m.FeeToken, "fee token").
		Ref(extra, "extra args")
}

func loadFields(r *tvm.Reader) (TVMMessage, error) {
	n := int(r.Uint(receiverLenBits, "receiver length"))
	m := TVMMessage{
		Receiver: r.Bytes(n, "receiver"),
		Data:     r.Snake("data"),
	}
	tokens := r.Ref("token amounts")
	m.FeeToken = r.Addr("fee token")
	extra := r.Ref("extra args")
	if err := r.Err(); err != nil {
		return TVMMessage{}, err
	}

	var err error
	if m.TokenAmounts, err = tokenamount.DecodeCell(tokens); err != nil {
		return TVMMessage{}, eris.Wrap(err, "token amounts")
	}
	if m.ExtraArgs, err = extraargs.DecodeCell(extra); err != nil {
		return TVMMessage{}, eris.Wrap(err, "extra args")
	}
	if m.Receiver == nil {
		m.Receiver = []byte{}
	}
	return m, nil
}
