package cmd

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
)

type addressOutput struct {
	Kind       string        `json:"kind"`
	EVM        string        `json:"evm,omitempty"`
	PaddedEVM  hexutil.Bytes `json:"padded_evm,omitempty"`
	TON        string        `json:"ton,omitempty"`
	RawTON     string        `json:"raw_ton,omitempty"`
	CrossChain hexutil.Bytes `json:"cross_chain,omitempty"`
	Workchain  *int32        `json:"workchain,omitempty"`
}

func (c *cli) newAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <addr>",
		Short: "Convert an address into its CCIP wire forms",
		Long: "Accepts an EVM address, a TON address (raw or user-friendly), a 36-byte cross-chain " +
			"address or a 32-byte padded EVM address in hex, and prints every form it maps to.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := convertAddress(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
}

func convertAddress(s string) (addressOutput, error) {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) {
		return evmAddressOutput(common.HexToAddress(s)), nil
	}

	if strings.HasPrefix(s, "0x") {
		bz, err := decodeHex(s)
		if err != nil {
			return addressOutput{}, err
		}
		if len(bz) == ccipaddress.PaddedEVMLength {
			a, err := ccipaddress.DecodePaddedEVM(bz)
			if err != nil {
				return addressOutput{}, err
			}
			return evmAddressOutput(a), nil
		}
		cc, err := ccipaddress.DecodeCrossChainAddress(bz)
		if err != nil {
			return addressOutput{}, err
		}
		return crossChainOutput(cc), nil
	}

	a, err := ccipaddress.ParseTON(s)
	if err != nil {
		return addressOutput{}, err
	}
	cc, err := ccipaddress.FromTON(a)
	if err != nil {
		return addressOutput{}, err
	}
	return crossChainOutput(cc), nil
}

func evmAddressOutput(a common.Address) addressOutput {
	return addressOutput{
		Kind:      "evm",
		EVM:       a.Hex(),
		PaddedEVM: ccipaddress.EncodePaddedEVM(a),
	}
}

func crossChainOutput(cc ccipaddress.CrossChainAddress) addressOutput {
	out := addressOutput{
		Kind:       "ton",
		RawTON:     cc.String(),
		CrossChain: cc.Bytes(),
		Workchain:  &cc.Workchain,
	}
	if friendly, err := cc.TON(); err == nil {
		out.TON = friendly.String()
	}
	return out
}
