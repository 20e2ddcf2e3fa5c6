package config_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	"github.com/argus-labs/ccip-bridge/pkg/config"
)

const (
	tonRouter   = "0:1111111111111111111111111111111111111111111111111111111111111111"
	tonOffRamp  = "-1:2222222222222222222222222222222222222222222222222222222222222222"
	evmReceiver = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, config.SepoliaDefaults.ChainSelector, cfg.Sepolia.ChainSelector)
	assert.Equal(t, "https://sepolia.etherscan.io", cfg.Sepolia.Explorer)
	assert.Equal(t, uint64(3478487238524512106), cfg.ArbitrumSepolia.ChainSelector)
	assert.Equal(t, "https://sepolia-rollup.arbitrum.io/rpc", cfg.ArbitrumSepolia.RPCURL)
	assert.Equal(t, "https://testnet.toncenter.com/api/v2/jsonRPC", cfg.TON.RPCURL)
	assert.Equal(t, "https://testnet.tonviewer.com", cfg.TON.Explorer)

	_, err = cfg.TONReceiver()
	require.Error(t, err)
	_, err = cfg.EVMReceiver()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromMap(map[string]string{
		"SEPOLIA_RPC_URL":        "https://rpc.example",
		"SEPOLIA_CHAIN_SELECTOR": "42",
		"TON_ROUTER":             tonRouter,
		"TON_OFFRAMP":            tonOffRamp,
		"TON_CHAIN_SELECTOR":     "1399300952838017768",
		"TON_RECEIVER_ADDRESS":   tonRouter,
		"EVM_RECEIVER_ADDRESS":   evmReceiver,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example", cfg.Sepolia.RPCURL)
	assert.Equal(t, uint64(42), cfg.Sepolia.ChainSelector)
	assert.Equal(t, uint64(1399300952838017768), cfg.TON.ChainSelector)

	router, err := cfg.TON.RouterAddress()
	require.NoError(t, err)
	assert.Equal(t, int32(0), router.Workchain())

	offramp, err := cfg.TON.OffRampAddress()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), offramp.Workchain())

	receiver, err := cfg.EVMReceiver()
	require.NoError(t, err)
	assert.Equal(t, evmReceiver, receiver.Hex())

	evmRouter, err := cfg.Sepolia.RouterAddress()
	require.NoError(t, err)
	assert.Equal(t, config.SepoliaDefaults.Router, evmRouter.Hex())
}

func TestLoad_InvalidAddresses(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"TON_ROUTER":           "not-an-address",
		"TON_RECEIVER_ADDRESS": "0:zz",
		"EVM_RECEIVER_ADDRESS": "0x1234",
		"SEPOLIA_ROUTER":       "router",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromMap(map[string]string{key: value})
			require.ErrorIs(t, err, ccip.ErrFormat)
		})
	}
}

func TestLoad_BadSelector(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromMap(map[string]string{"TON_CHAIN_SELECTOR": "-1"})
	require.Error(t, err)
}

func TestTONNetwork_Endpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		net  config.TONNetwork
		want string
	}{
		{
			name: "no key",
			net:  config.TONNetwork{RPCURL: "https://toncenter.example/api"},
			want: "https://toncenter.example/api",
		},
		{
			name: "key appended",
			net:  config.TONNetwork{RPCURL: "https://toncenter.example/api", APIKey: "k1"},
			want: "https://toncenter.example/api?api_key=k1",
		},
		{
			name: "key joins existing query",
			net:  config.TONNetwork{RPCURL: "https://toncenter.example/api?a=b", APIKey: "k1"},
			want: "https://toncenter.example/api?a=b&api_key=k1",
		},
		{
			name: "existing key kept",
			net:  config.TONNetwork{RPCURL: "https://toncenter.example/api?api_key=old", APIKey: "k1"},
			want: "https://toncenter.example/api?api_key=old",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.net.Endpoint()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSecret_NeverPrinted(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromMap(map[string]string{
		"SEPOLIA_PRIVATE_KEY": "0xdeadbeef",
		"TON_MNEMONIC":        "word word word",
		"TON_API_KEY":         "secret-key",
	})
	require.NoError(t, err)

	assert.Equal(t, "0xdeadbeef", cfg.Wallet.SepoliaPrivateKey.Reveal())
	assert.Equal(t, "<redacted>", cfg.Wallet.TONMnemonic.String())
	assert.Equal(t, "", config.Secret("").String())

	bz, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(bz), "deadbeef")
	assert.NotContains(t, string(bz), "word word")
	assert.NotContains(t, string(bz), "secret-key")
}
