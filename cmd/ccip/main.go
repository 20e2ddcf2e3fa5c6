package main

import (
	"os"

	"github.com/argus-labs/ccip-bridge/cmd/ccip/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
