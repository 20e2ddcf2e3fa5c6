// Package cmd implements the ccip command line tool. Every command works offline: it builds,
// decodes or converts values and prints them to stdout.
package cmd

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/argus-labs/ccip-bridge/pkg/config"
	"github.com/argus-labs/ccip-bridge/pkg/telemetry"
)

const serviceName = "ccip"

type cli struct {
	// environment replaces the process environment when non-nil.
	environment map[string]string

	cfg    config.Config
	logger zerolog.Logger
}

// NewRootCmd creates the root command. It is called once in the main function.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(environment map[string]string) *cobra.Command {
	c := &cli{environment: environment, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Build, decode and inspect CCIP messages between EVM chains and TON",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}

	rootCmd.AddCommand(
		c.newBuildCmd(),
		c.newParseCmd(),
		c.newReceiverCmd(),
		c.newAddressCmd(),
		c.newSendPlanCmd(),
	)
	return rootCmd
}

func (c *cli) load(cmd *cobra.Command) error {
	var err error
	if c.environment == nil {
		c.cfg, err = config.Load()
	} else {
		c.cfg, err = config.LoadFromMap(c.environment)
	}
	if err != nil {
		return eris.Wrap(err, "failed to load config")
	}

	tel, err := telemetry.New(telemetry.Options{
		ServiceName: serviceName,
		Writer:      cmd.ErrOrStderr(),
		Environment: c.environment,
	})
	if err != nil {
		return eris.Wrap(err, "failed to set up logging")
	}
	c.logger = tel.GetLogger(cmd.Name())
	return nil
}
