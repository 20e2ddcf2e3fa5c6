package cmd

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/argus-labs/ccip-bridge/pkg/assert"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/extraargs"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
)

const defaultGasLimit = 1_000_000

// payloadFlags are the flags every message builder shares.
type payloadFlags struct {
	receiver          string
	data              string
	dataHex           string
	feeToken          string
	destChainSelector uint64
	gasLimit          uint64
	allowOutOfOrder   bool
}

func (f *payloadFlags) register(cmd *cobra.Command, receiverUsage, feeTokenUsage string) {
	cmd.Flags().StringVar(&f.receiver, "receiver", "", receiverUsage)
	cmd.Flags().StringVar(&f.data, "data", "", "message payload as text")
	cmd.Flags().StringVar(&f.dataHex, "data-hex", "", "message payload as hex")
	cmd.Flags().StringVar(&f.feeToken, "fee-token", "", feeTokenUsage)
	cmd.Flags().Uint64Var(&f.destChainSelector, "dest-selector", 0, "destination chain selector (defaults from config)")
	cmd.Flags().Uint64Var(&f.gasLimit, "gas-limit", defaultGasLimit, "gas limit on the destination chain")
	cmd.Flags().BoolVar(&f.allowOutOfOrder, "allow-ooo", true, "allow out-of-order execution")
	_ = cmd.MarkFlagRequired("receiver")
	cmd.MarkFlagsMutuallyExclusive("data", "data-hex")
}

func (f *payloadFlags) payload() ([]byte, error) {
	if f.dataHex != "" {
		return decodeHex(f.dataHex)
	}
	return []byte(f.data), nil
}

func (f *payloadFlags) selector(fallback uint64) (uint64, error) {
	if f.destChainSelector != 0 {
		return f.destChainSelector, nil
	}
	if fallback == 0 {
		return 0, eris.New("destination chain selector is not configured, pass --dest-selector")
	}
	return fallback, nil
}

func (f *payloadFlags) extraArgs() extraargs.GenericExtraArgsV2 {
	return extraargs.New(f.gasLimit, f.allowOutOfOrder)
}

// evmToTON assembles the EVM2AnyMessage for a TON receiver.
func (c *cli) evmToTON(f *payloadFlags) (uint64, message.EVM2AnyMessage, []byte, error) {
	selector, err := f.selector(c.cfg.TON.ChainSelector)
	if err != nil {
		return 0, message.EVM2AnyMessage{}, nil, err
	}
	tonReceiver, err := ccipaddress.ParseTON(f.receiver)
	if err != nil {
		return 0, message.EVM2AnyMessage{}, nil, err
	}
	receiver, err := ccipaddress.FromTON(tonReceiver)
	if err != nil {
		return 0, message.EVM2AnyMessage{}, nil, err
	}
	data, err := f.payload()
	if err != nil {
		return 0, message.EVM2AnyMessage{}, nil, err
	}
	var feeToken common.Address
	if f.feeToken != "" {
		if feeToken, err = ccipaddress.ParseEVM(f.feeToken); err != nil {
			return 0, message.EVM2AnyMessage{}, nil, err
		}
	}
	msg, bz, err := message.BuildEVMToTON(receiver, data, nil, feeToken, f.extraArgs())
	if err != nil {
		return 0, message.EVM2AnyMessage{}, nil, err
	}
	return selector, msg, bz, nil
}

// tonToEVM assembles the CCIPSend cell for an EVM receiver.
func (c *cli) tonToEVM(f *payloadFlags, queryID uint64) (*cell.Cell, error) {
	selector, err := f.selector(c.cfg.Sepolia.ChainSelector)
	if err != nil {
		return nil, err
	}
	receiver, err := ccipaddress.ParseEVM(f.receiver)
	if err != nil {
		return nil, err
	}
	data, err := f.payload()
	if err != nil {
		return nil, err
	}
	feeToken := ccipaddress.TONNativeFeeToken
	if f.feeToken != "" {
		var parsed *address.Address
		if parsed, err = ccipaddress.ParseTON(f.feeToken); err != nil {
			return nil, err
		}
		feeToken = parsed
	}
	return message.BuildTONToEVM(queryID, selector, receiver, data, nil, feeToken, f.extraArgs())
}

func (c *cli) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build outgoing CCIP messages",
	}
	for _, d := range message.Directions() {
		cmd.AddCommand(c.newBuildDirectionCmd(d))
	}
	return cmd
}

// newBuildDirectionCmd returns the builder for messages authored on d's source chain.
func (c *cli) newBuildDirectionCmd(d message.Direction) *cobra.Command {
	var cmd *cobra.Command
	switch d {
	case message.DirectionEVMToTON:
		cmd = c.newBuildEVMToTONCmd()
	case message.DirectionTONToEVM:
		cmd = c.newBuildTONToEVMCmd()
	case message.DirectionUnknown:
	}
	assert.That(cmd != nil, "no builder for direction %s", d)
	cmd.Use = d.String()
	return cmd
}

type evmToTONOutput struct {
	Message          hexutil.Bytes    `json:"message"`
	CCIPSendCalldata hexutil.Bytes    `json:"ccip_send_calldata"`
	GetFeeCalldata   hexutil.Bytes    `json:"get_fee_calldata"`
	Decoded          evmMessageOutput `json:"decoded"`
}

func (c *cli) newBuildEVMToTONCmd() *cobra.Command {
	var flags payloadFlags
	cmd := &cobra.Command{
		Short:   "Build the EVM2AnyMessage and router calldata for a TON receiver",
		Example: "ccip build evm2ton --receiver 0:<hash> --data 'Hello TON from EVM'",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selector, msg, bz, err := c.evmToTON(&flags)
			if err != nil {
				return err
			}
			send, err := message.PackCCIPSend(selector, msg)
			if err != nil {
				return err
			}
			getFee, err := message.PackGetFee(selector, msg)
			if err != nil {
				return err
			}
			c.logger.Debug().Uint64("dest_chain_selector", selector).Int("len", len(bz)).Msg("Built EVM2AnyMessage")
			return printJSON(cmd, evmToTONOutput{
				Message:          bz,
				CCIPSendCalldata: send,
				GetFeeCalldata:   getFee,
				Decoded:          newEVMMessageOutput(selector, msg),
			})
		},
	}
	flags.register(cmd, "TON receiver address (raw or user-friendly)", "ERC-20 fee token, native when empty")
	return cmd
}

type tonToEVMOutput struct {
	bocOutput
	Decoded tonSendOutput `json:"decoded"`
}

func (c *cli) newBuildTONToEVMCmd() *cobra.Command {
	var flags payloadFlags
	var queryID uint64
	cmd := &cobra.Command{
		Short:   "Build the CCIPSend cell for an EVM receiver",
		Example: "ccip build ton2evm --receiver 0x<address> --data 'Hello EVM from TON'",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			send, err := c.tonToEVM(&flags, queryID)
			if err != nil {
				return err
			}
			decoded, err := message.ParseSend(send)
			if err != nil {
				return err
			}
			return printJSON(cmd, tonToEVMOutput{bocOutput: newBOCOutput(send), Decoded: newTONSendOutput(decoded)})
		},
	}
	flags.register(cmd, "EVM receiver address", "TON fee token, native TON when empty")
	cmd.Flags().Uint64Var(&queryID, "query-id", 0, "query id echoed by the router, 0 when unused")
	return cmd
}
