package cmd

import (
	"bytes"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/argus-labs/ccip-bridge/pkg/ccip/message"
)

func (c *cli) newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <evm2ton|ton2evm> <input>",
		Short: "Decode CCIP messages into JSON",
		Long: "Decode a CCIP message into JSON.\n\n" +
			"ton2evm takes a CCIPSend cell as base64 or 0x-prefixed hex BOC.\n" +
			"evm2ton takes an abi-encoded EVM2AnyMessage or ccipSend/getFee calldata as hex.",
		Example:   "ccip parse ton2evm te6cc...",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{message.DirectionEVMToTON.String(), message.DirectionTONToEVM.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := message.ParseDirection(args[0])
			c.logger.Debug().Stringer("direction", direction).Msg("Parsing message")
			switch direction {
			case message.DirectionTONToEVM:
				return parseTONToEVM(cmd, args[1])
			case message.DirectionEVMToTON:
				return parseEVMToTON(cmd, args[1])
			case message.DirectionUnknown:
			}
			return eris.Errorf("unknown direction %q, want evm2ton or ton2evm", args[0])
		},
	}
}

func parseTONToEVM(cmd *cobra.Command, input string) error {
	root, err := decodeBOC(input)
	if err != nil {
		return err
	}
	send, err := message.ParseSend(root)
	if err != nil {
		return err
	}
	return printJSON(cmd, newTONSendOutput(send))
}

func parseEVMToTON(cmd *cobra.Command, input string) error {
	bz, err := decodeHex(input)
	if err != nil {
		return err
	}
	selector, msg, err := unpackEVM(bz)
	if err != nil {
		return err
	}
	return printJSON(cmd, newEVMMessageOutput(selector, msg))
}

// unpackEVM picks the decoder by the leading function selector. Anything that does not start with
// a router selector is treated as the bare tuple.
func unpackEVM(bz []byte) (uint64, message.EVM2AnyMessage, error) {
	methods := message.Router().Methods
	if len(bz) >= 4 {
		switch {
		case bytes.Equal(bz[:4], methods[message.MethodCCIPSend].ID):
			return message.UnpackCCIPSend(bz)
		case bytes.Equal(bz[:4], methods[message.MethodGetFee].ID):
			return message.UnpackGetFee(bz)
		}
	}
	msg, err := message.DecodeEVM2AnyMessage(bz)
	return 0, msg, err
}
