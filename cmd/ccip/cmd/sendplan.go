package cmd

import (
	"bytes"
	"context"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/xssnick/tonutils-go/tlb"

	"github.com/argus-labs/ccip-bridge/pkg/ccip/router"
	"github.com/argus-labs/ccip-bridge/pkg/sign"
)

var errOffline = eris.New("network calls are disabled in the ccip tool")

// offlineCaller stands in for an RPC client. Send plans need the fee passed in explicitly.
type offlineCaller struct{}

func (offlineCaller) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, eris.Wrap(errOffline, "")
}

func (c *cli) newSendPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send-plan",
		Short: "Print the transaction or wallet message that submits a message to the router",
	}
	cmd.AddCommand(c.newSendPlanEVMToTONCmd(), c.newSendPlanTONToEVMCmd(), c.newSendPlanVerifyCmd())
	return cmd
}

// evmTxOutput is a ccipSend transaction signed off by the sender. Digest commits to every field
// but the quoted fee.
type evmTxOutput struct {
	From      string        `json:"from"`
	To        string        `json:"to"`
	Value     *hexutil.Big  `json:"value"`
	Data      hexutil.Bytes `json:"data"`
	Fee       *hexutil.Big  `json:"quoted_fee"`
	Digest    hexutil.Bytes `json:"digest"`
	Signature hexutil.Bytes `json:"signature"`
}

// planDigest is keccak256(from || to || value as uint256 || data).
func planDigest(from, to common.Address, value *big.Int, data []byte) []byte {
	return crypto.Keccak256(from.Bytes(), to.Bytes(), common.LeftPadBytes(value.Bytes(), 32), data)
}

// signer loads the sender key from SEPOLIA_PRIVATE_KEY.
func (c *cli) signer() (sign.Signer, error) {
	key := c.cfg.Wallet.SepoliaPrivateKey.Reveal()
	if key == "" {
		return sign.Signer{}, eris.New("SEPOLIA_PRIVATE_KEY is not set")
	}
	signer, err := sign.NewSigner(key)
	if err != nil {
		return sign.Signer{}, eris.Wrap(err, "SEPOLIA_PRIVATE_KEY")
	}
	return signer, nil
}

func (c *cli) newSendPlanEVMToTONCmd() *cobra.Command {
	var flags payloadFlags
	var fee string
	cmd := &cobra.Command{
		Use:   "evm2ton",
		Short: "Print the ccipSend transaction for a quoted fee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quoted, ok := new(big.Int).SetString(fee, 10)
			if !ok {
				return eris.Errorf("invalid fee %q", fee)
			}
			signer, err := c.signer()
			if err != nil {
				return err
			}
			from := signer.Address()
			routerAddr, err := c.cfg.Sepolia.RouterAddress()
			if err != nil {
				return err
			}
			r, err := router.NewEVMRouter(routerAddr, offlineCaller{}, router.WithLogger(c.logger))
			if err != nil {
				return err
			}
			selector, msg, _, err := c.evmToTON(&flags)
			if err != nil {
				return err
			}
			call, err := r.SendCall(from, selector, msg, router.FeeWithBuffer(quoted))
			if err != nil {
				return err
			}
			digest := planDigest(call.From, *call.To, call.Value, call.Data)
			sig, err := signer.SignDigest(digest)
			if err != nil {
				return err
			}
			c.logger.Info().
				Str("from", from.Hex()).
				Str("router", routerAddr.Hex()).
				Str("value", call.Value.String()).
				Msg("Prepared ccipSend")
			return printJSON(cmd, evmTxOutput{
				From:      call.From.Hex(),
				To:        call.To.Hex(),
				Value:     (*hexutil.Big)(call.Value),
				Data:      call.Data,
				Fee:       (*hexutil.Big)(quoted),
				Digest:    digest,
				Signature: sig,
			})
		},
	}
	flags.register(cmd, "TON receiver address (raw or user-friendly)", "ERC-20 fee token, native when empty")
	cmd.Flags().StringVar(&fee, "fee", "", "fee quoted by the router's getFee, in wei")
	_ = cmd.MarkFlagRequired("fee")
	return cmd
}

var errBadPlanSignature = eris.New("send plan signature does not match")

type verifyOutput struct {
	From   string `json:"from"`
	Valid  bool   `json:"valid"`
	Digest string `json:"digest"`
}

// newSendPlanVerifyCmd checks a plan printed by `send-plan evm2ton` before it is broadcast.
func (c *cli) newSendPlanVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <plan.json>",
		Short: "Check that an evm2ton send plan is unmodified and signed by its sender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return eris.Wrap(err, "failed to read plan")
			}
			var plan evmTxOutput
			if err := json.Unmarshal(raw, &plan); err != nil {
				return eris.Wrap(err, "failed to decode plan")
			}
			if !common.IsHexAddress(plan.From) || !common.IsHexAddress(plan.To) || plan.Value == nil {
				return eris.New("plan is missing from, to or value")
			}
			from := common.HexToAddress(plan.From)
			digest := planDigest(from, common.HexToAddress(plan.To), plan.Value.ToInt(), plan.Data)
			if !bytes.Equal(digest, plan.Digest) || !sign.VerifyDigestSignature(from, digest, plan.Signature) {
				c.logger.Warn().Str("from", from.Hex()).Msg("Send plan failed verification")
				return eris.Wrap(errBadPlanSignature, "")
			}
			return printJSON(cmd, verifyOutput{From: from.Hex(), Valid: true, Digest: hexutil.Encode(digest)})
		},
	}
}

type tonMessageOutput struct {
	To     string    `json:"to"`
	Amount string    `json:"amount_nano"`
	Bounce bool      `json:"bounce"`
	Mode   uint8     `json:"mode"`
	Body   bocOutput `json:"body"`
}

func (c *cli) newSendPlanTONToEVMCmd() *cobra.Command {
	var flags payloadFlags
	var queryID uint64
	var amount string
	cmd := &cobra.Command{
		Use:   "ton2evm",
		Short: "Print the wallet message that carries a CCIPSend to the TON router",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := tlb.FromTON(amount)
			if err != nil {
				return eris.Wrapf(err, "invalid amount %q", amount)
			}
			routerAddr, err := c.cfg.TON.RouterAddress()
			if err != nil {
				return err
			}
			send, err := c.tonToEVM(&flags, queryID)
			if err != nil {
				return err
			}
			msg, err := router.TONRouterMessage(routerAddr, value, send)
			if err != nil {
				return err
			}
			return printJSON(cmd, tonMessageOutput{
				To:     msg.InternalMessage.DstAddr.String(),
				Amount: msg.InternalMessage.Amount.Nano().String(),
				Bounce: msg.InternalMessage.Bounce,
				Mode:   msg.Mode,
				Body:   newBOCOutput(msg.InternalMessage.Body),
			})
		},
	}
	flags.register(cmd, "EVM receiver address", "TON fee token, native TON when empty")
	cmd.Flags().Uint64Var(&queryID, "query-id", 0, "query id echoed by the router, 0 when unused")
	cmd.Flags().StringVar(&amount, "amount", router.DefaultTONSendValue.String(), "TON attached to the message")
	return cmd
}
