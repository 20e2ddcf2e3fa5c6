// Package config loads network, contract and wallet settings from the environment.
package config

import (
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"

	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
)

const redacted = "<redacted>"

// Secret is a credential passed through untouched. It never prints its value.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reveal returns the raw value.
func (s Secret) Reveal() string {
	return string(s)
}

// EVMNetwork describes an EVM chain and its CCIP router.
type EVMNetwork struct {
	RPCURL        string `env:"RPC_URL"`
	Router        string `env:"ROUTER"`
	ChainSelector uint64 `env:"CHAIN_SELECTOR"`
	OnRamp        string `env:"ONRAMP"`
	Explorer      string `env:"EXPLORER"`
}

// RouterAddress parses Router.
func (n EVMNetwork) RouterAddress() (common.Address, error) {
	if n.Router == "" {
		return common.Address{}, eris.New("router address is not configured")
	}
	return ccipaddress.ParseEVM(n.Router)
}

// withDefaults fills unset fields from d. EVMNetwork is shared by every envPrefix and each prefix has
// its own defaults, which envDefault tags cannot express.
func (n EVMNetwork) withDefaults(d EVMNetwork) EVMNetwork {
	if n.RPCURL == "" {
		n.RPCURL = d.RPCURL
	}
	if n.Router == "" {
		n.Router = d.Router
	}
	if n.ChainSelector == 0 {
		n.ChainSelector = d.ChainSelector
	}
	if n.OnRamp == "" {
		n.OnRamp = d.OnRamp
	}
	if n.Explorer == "" {
		n.Explorer = d.Explorer
	}
	return n
}

func (n EVMNetwork) validate(name string) error {
	for field, value := range map[string]string{"router": n.Router, "onramp": n.OnRamp} {
		if value == "" {
			continue
		}
		if _, err := ccipaddress.ParseEVM(value); err != nil {
			return eris.Wrapf(err, "%s %s", name, field)
		}
	}
	return nil
}

// TONNetwork describes the TON chain and its CCIP router and offramp.
type TONNetwork struct {
	RPCURL        string `env:"RPC_URL"        envDefault:"https://testnet.toncenter.com/api/v2/jsonRPC"`
	APIKey        Secret `env:"API_KEY"`
	Router        string `env:"ROUTER"`
	OffRamp       string `env:"OFFRAMP"`
	ChainSelector uint64 `env:"CHAIN_SELECTOR"`
	Explorer      string `env:"EXPLORER"       envDefault:"https://testnet.tonviewer.com"`
}

// Endpoint returns RPCURL with the API key attached as the api_key query parameter, unless the URL
// already carries one.
func (n TONNetwork) Endpoint() (string, error) {
	u, err := url.Parse(n.RPCURL)
	if err != nil {
		return "", eris.Wrap(err, "invalid TON RPC URL")
	}
	if n.APIKey == "" {
		return n.RPCURL, nil
	}
	q := u.Query()
	if q.Has("api_key") {
		return n.RPCURL, nil
	}
	q.Set("api_key", n.APIKey.Reveal())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RouterAddress parses Router.
func (n TONNetwork) RouterAddress() (*address.Address, error) {
	return parseTON("TON router", n.Router)
}

// OffRampAddress parses OffRamp.
func (n TONNetwork) OffRampAddress() (*address.Address, error) {
	return parseTON("TON offramp", n.OffRamp)
}

func (n TONNetwork) validate() error {
	if _, err := url.Parse(n.RPCURL); err != nil || n.RPCURL == "" {
		return eris.Errorf("invalid TON RPC URL: %q", n.RPCURL)
	}
	for field, value := range map[string]string{"router": n.Router, "offramp": n.OffRamp} {
		if value == "" {
			continue
		}
		if _, err := ccipaddress.ParseTON(value); err != nil {
			return eris.Wrapf(err, "TON %s", field)
		}
	}
	return nil
}

// Contracts are the deployed receivers.
type Contracts struct {
	TONReceiver string `env:"TON_RECEIVER_ADDRESS"`
	EVMReceiver string `env:"EVM_RECEIVER_ADDRESS"`
}

// Wallet holds signing material. Nothing in this module parses the mnemonic.
type Wallet struct {
	SepoliaPrivateKey Secret `env:"SEPOLIA_PRIVATE_KEY"`
	TONMnemonic       Secret `env:"TON_MNEMONIC"`
}

type Config struct {
	Sepolia         EVMNetwork `envPrefix:"SEPOLIA_"`
	ArbitrumSepolia EVMNetwork `envPrefix:"ARBITRUM_SEPOLIA_"`
	TON             TONNetwork `envPrefix:"TON_"`
	Contracts       Contracts
	Wallet          Wallet
}

// Defaults applied to networks whose variables are unset.
var (
	SepoliaDefaults = EVMNetwork{ //nolint:gochecknoglobals // constant value
		Router:        "0x0BF3dE8c5D3e8A2B34D2BEeB17ABfCeBaf363A59",
		ChainSelector: 16015286601757825753,
		Explorer:      "https://sepolia.etherscan.io",
	}
	ArbitrumSepoliaDefaults = EVMNetwork{ //nolint:gochecknoglobals // constant value
		RPCURL:        "https://sepolia-rollup.arbitrum.io/rpc",
		ChainSelector: 3478487238524512106,
		OnRamp:        "0x483139c08d6bdbaa15c6d78051bcf40971482f5f",
		Explorer:      "https://sepolia.arbiscan.io",
	}
)

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFromMap reads the configuration from environment, ignoring the process environment.
func LoadFromMap(environment map[string]string) (Config, error) {
	return load(env.Options{Environment: environment})
}

func load(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, eris.Wrap(err, "failed to parse config")
	}
	cfg.Sepolia = cfg.Sepolia.withDefaults(SepoliaDefaults)
	cfg.ArbitrumSepolia = cfg.ArbitrumSepolia.withDefaults(ArbitrumSepoliaDefaults)

	if err := cfg.validate(); err != nil {
		return Config{}, eris.Wrap(err, "failed to validate config")
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if err := cfg.Sepolia.validate("sepolia"); err != nil {
		return err
	}
	if err := cfg.ArbitrumSepolia.validate("arbitrum sepolia"); err != nil {
		return err
	}
	if err := cfg.TON.validate(); err != nil {
		return err
	}
	if cfg.Contracts.TONReceiver != "" {
		if _, err := ccipaddress.ParseTON(cfg.Contracts.TONReceiver); err != nil {
			return eris.Wrap(err, "TON receiver")
		}
	}
	if cfg.Contracts.EVMReceiver != "" {
		if _, err := ccipaddress.ParseEVM(cfg.Contracts.EVMReceiver); err != nil {
			return eris.Wrap(err, "EVM receiver")
		}
	}
	return nil
}

// TONReceiver parses the deployed TON receiver address.
func (cfg *Config) TONReceiver() (*address.Address, error) {
	return parseTON("TON receiver", cfg.Contracts.TONReceiver)
}

// EVMReceiver parses the deployed EVM receiver address.
func (cfg *Config) EVMReceiver() (common.Address, error) {
	if cfg.Contracts.EVMReceiver == "" {
		return common.Address{}, eris.New("EVM receiver address is not configured")
	}
	return ccipaddress.ParseEVM(cfg.Contracts.EVMReceiver)
}

func parseTON(what, s string) (*address.Address, error) {
	if s == "" {
		return nil, eris.Errorf("%s address is not configured", what)
	}
	a, err := ccipaddress.ParseTON(s)
	if err != nil {
		return nil, eris.Wrap(err, what)
	}
	return a, nil
}
