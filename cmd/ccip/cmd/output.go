package cmd

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/xssnick/tonutils-go/tvm/cell"

	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
)

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to marshal output")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return eris.Wrap(err, "failed to write output")
}

// decodeHex accepts hex with or without the 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	bz, err := hexutil.Decode(s)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid hex %q", s)
	}
	return bz, nil
}

// decodeBOC accepts a bag of cells as 0x-prefixed hex or standard base64.
func decodeBOC(s string) (*cell.Cell, error) {
	s = strings.TrimSpace(s)
	var bz []byte
	var err error
	if strings.HasPrefix(s, "0x") {
		bz, err = decodeHex(s)
	} else {
		bz, err = base64.StdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, eris.Wrap(err, "invalid BOC encoding")
	}
	c, err := cell.FromBOC(bz)
	if err != nil {
		return nil, eris.Wrap(err, "invalid BOC")
	}
	return c, nil
}

type bocOutput struct {
	Base64 string `json:"boc_base64"`
	Hex    string `json:"boc_hex"`
	Hash   string `json:"hash"`
}

func newBOCOutput(c *cell.Cell) bocOutput {
	boc := c.ToBOC()
	return bocOutput{
		Base64: base64.StdEncoding.EncodeToString(boc),
		Hex:    hexutil.Encode(boc),
		Hash:   hexutil.Encode(c.Hash()),
	}
}

type extraArgsOutput struct {
	Tag                      string `json:"tag"`
	GasLimit                 string `json:"gas_limit,omitempty"`
	AllowOutOfOrderExecution bool   `json:"allow_out_of_order_execution"`
}

func newExtraArgsOutput(args extraargs.GenericExtraArgsV2) extraArgsOutput {
	out := extraArgsOutput{
		Tag:                      fmt.Sprintf("0x%08x", args.Tag()),
		AllowOutOfOrderExecution: args.AllowOutOfOrderExecution,
	}
	if args.GasLimit != nil {
		out.GasLimit = args.GasLimit.Dec()
	}
	return out
}

type tokenAmountOutput struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type evmMessageOutput struct {
	Direction         message.Direction   `json:"direction"`
	DestChainSelector uint64              `json:"dest_chain_selector,omitempty"`
	Receiver          hexutil.Bytes       `json:"receiver"`
	TONReceiver       string              `json:"ton_receiver,omitempty"`
	Data              hexutil.Bytes       `json:"data"`
	TokenAmounts      []tokenAmountOutput `json:"token_amounts"`
	FeeToken          string              `json:"fee_token"`
	ExtraArgs         hexutil.Bytes       `json:"extra_args"`
	DecodedExtraArgs  *extraArgsOutput    `json:"decoded_extra_args,omitempty"`
}

// newEVMMessageOutput renders msg. Receiver and extra args are decoded when they are in the TON
// forms and shown raw otherwise.
func newEVMMessageOutput(destChainSelector uint64, msg message.EVM2AnyMessage) evmMessageOutput {
	out := evmMessageOutput{
		Direction:         message.DirectionEVMToTON,
		DestChainSelector: destChainSelector,
		Receiver:          msg.Receiver,
		Data:              msg.Data,
		TokenAmounts:      make([]tokenAmountOutput, 0, len(msg.TokenAmounts)),
		FeeToken:          msg.FeeToken.Hex(),
		ExtraArgs:         msg.ExtraArgs,
	}
	if receiver, err := msg.TONReceiver(); err == nil {
		out.TONReceiver = receiver.String()
	}
	for _, ta := range msg.TokenAmounts {
		out.TokenAmounts = append(out.TokenAmounts, tokenAmountOutput{Token: ta.Token.Hex(), Amount: ta.Amount.String()})
	}
	if args, err := msg.DecodeExtraArgs(); err == nil {
		decoded := newExtraArgsOutput(args)
		out.DecodedExtraArgs = &decoded
	}
	return out
}

type tonSendOutput struct {
	Direction         message.Direction   `json:"direction"`
	QueryID           uint64              `json:"query_id"`
	DestChainSelector uint64              `json:"dest_chain_selector"`
	Receiver          hexutil.Bytes       `json:"receiver"`
	EVMReceiver       string              `json:"evm_receiver,omitempty"`
	Data              hexutil.Bytes       `json:"data"`
	TokenAmounts      []tokenAmountOutput `json:"token_amounts"`
	FeeToken          string              `json:"fee_token"`
	ExtraArgs         extraArgsOutput     `json:"extra_args"`
}

func newTONSendOutput(s message.Send) tonSendOutput {
	out := tonSendOutput{
		Direction:         message.DirectionTONToEVM,
		QueryID:           s.QueryID,
		DestChainSelector: s.DestChainSelector,
		Receiver:          s.Message.Receiver,
		Data:              s.Message.Data,
		TokenAmounts:      make([]tokenAmountOutput, 0, len(s.Message.TokenAmounts)),
		FeeToken:          ccipaddress.RawString(s.Message.FeeToken),
		ExtraArgs:         newExtraArgsOutput(s.Message.ExtraArgs),
	}
	if receiver, err := s.Message.EVMReceiver(); err == nil {
		out.EVMReceiver = receiver.Hex()
	}
	for _, ta := range s.Message.TokenAmounts {
		out.TokenAmounts = append(out.TokenAmounts, tokenAmountOutput{
			Token:  ccipaddress.RawString(ta.Token),
			Amount: ta.Amount.String(),
		})
	}
	return out
}
