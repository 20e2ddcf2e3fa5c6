package cmd

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"

	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/receiver"
)

type storageFlags struct {
	owner            string
	authorizedCaller string
	behavior         string
	id               uint32
}

func (f *storageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.owner, "owner", "", "owner (deployer) address")
	cmd.Flags().StringVar(&f.authorizedCaller, "authorized-caller", "",
		"address allowed to deliver messages (defaults to TON_OFFRAMP)")
	cmd.Flags().StringVar(&f.behavior, "behavior", receiver.BehaviorAccept.String(),
		"accept, reject_all or consume_all_gas")
	cmd.Flags().Uint32Var(&f.id, "id", 0, "instance id, changes the deployment address")
	_ = cmd.MarkFlagRequired("owner")
}

func (c *cli) storage(f *storageFlags) (receiver.Storage, error) {
	owner, err := ccipaddress.ParseTON(f.owner)
	if err != nil {
		return receiver.Storage{}, eris.Wrap(err, "owner")
	}
	var caller *address.Address
	if f.authorizedCaller != "" {
		caller, err = ccipaddress.ParseTON(f.authorizedCaller)
	} else {
		caller, err = c.cfg.TON.OffRampAddress()
	}
	if err != nil {
		return receiver.Storage{}, eris.Wrap(err, "authorized caller")
	}
	behavior, err := receiver.ParseBehavior(f.behavior)
	if err != nil {
		return receiver.Storage{}, err
	}
	s := receiver.NewInitialStorage(owner, caller)
	s.ID = f.id
	s.Behavior = behavior
	return s, nil
}

func (c *cli) newReceiverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receiver",
		Short: "Build receiver deployment data",
	}
	cmd.AddCommand(c.newReceiverStorageCmd(), c.newReceiverStateInitCmd())
	return cmd
}

func (c *cli) newReceiverStorageCmd() *cobra.Command {
	var flags storageFlags
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Print the initial receiver storage cell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.storage(&flags)
			if err != nil {
				return err
			}
			data, err := receiver.EncodeStorage(s)
			if err != nil {
				return err
			}
			return printJSON(cmd, newBOCOutput(data))
		},
	}
	flags.register(cmd)
	return cmd
}

type stateInitOutput struct {
	Address      string    `json:"address"`
	RawAddress   string    `json:"raw_address"`
	StateInit    bocOutput `json:"state_init"`
	InitialState bocOutput `json:"storage"`
}

func (c *cli) newReceiverStateInitCmd() *cobra.Command {
	var flags storageFlags
	var code, codeFile string
	var workchain int8
	cmd := &cobra.Command{
		Use:   "state-init",
		Short: "Derive the receiver state init and deployment address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if codeFile != "" {
				bz, err := os.ReadFile(codeFile)
				if err != nil {
					return eris.Wrap(err, "failed to read code")
				}
				code = string(bz)
			}
			codeCell, err := decodeBOC(code)
			if err != nil {
				return eris.Wrap(err, "code")
			}
			s, err := c.storage(&flags)
			if err != nil {
				return err
			}
			init, addr, err := receiver.StateInit(codeCell, s, workchain)
			if err != nil {
				return err
			}
			stateCell, err := tlb.ToCell(init)
			if err != nil {
				return eris.Wrap(err, "failed to serialize state init")
			}
			c.logger.Info().Str("address", ccipaddress.RawString(addr)).Msg("Derived receiver address")
			return printJSON(cmd, stateInitOutput{
				Address:      addr.String(),
				RawAddress:   ccipaddress.RawString(addr),
				StateInit:    newBOCOutput(stateCell),
				InitialState: newBOCOutput(init.Data),
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&code, "code", "", "compiled contract code BOC (base64 or 0x hex)")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "file holding the code BOC in text form")
	cmd.Flags().Int8Var(&workchain, "workchain", 0, "deployment workchain")
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")
	cmd.MarkFlagsOneRequired("code", "code-file")
	return cmd
}

