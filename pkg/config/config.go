// Package config defines the runtime configuration for the SDK, including
// the target network, chain RPC endpoint, wallet provider source, contract
// addresses, storage gateways, debug mode, and operation timeouts. It also
// provides validation and defaulting helpers.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// DefaultMintURI is the metadata URI attached to every NFT minted by the SDK.
	DefaultMintURI = "https://cdn-production-opera-website.operacdn.com/staticfiles/assets/images/sections/2023/hero-top/products/minipay/minipay__desktop@2x.a17626ddb042.webp"
	// DefaultSignMessage is the constant message signed by SignMessage.
	DefaultSignMessage = "Hello from Celo Composer MiniPay Template!"
	// DefaultTokenDecimals is the decimal precision of the cUSD stable token.
	DefaultTokenDecimals int32 = 18
)

// Config holds all SDK settings required to initialize the chain client,
// the wallet provider and the metadata storage.
// Use Validate to fill implicit defaults and to check for consistency.
type Config struct {
	// Network selects the target chain (chain ID and human-readable name).
	Network Network `json:"network" yaml:"network"`
	// RPCAddr is the chain RPC/WS endpoint URL used for reads and receipts.
	// Default: the public Forno endpoint of the selected network.
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// WalletAddr is the JSON-RPC endpoint of an external wallet provider
	// (eth_accounts / eth_sendTransaction / personal_sign).
	WalletAddr string `json:"wallet_addr" yaml:"wallet_addr"`
	// PrivateKey is a hex-encoded ECDSA key used as a local wallet provider.
	// Mutually exclusive with WalletAddr. Leave both empty for read-only use.
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// Contracts holds the addresses of the stable token and NFT contracts.
	Contracts Contracts `json:"contracts" yaml:"contracts"`
	// TokenDecimals is the stable token precision used for amount conversion.
	// Nil selects DefaultTokenDecimals; an explicit 0 is kept.
	TokenDecimals *int32 `json:"token_decimals" yaml:"token_decimals"`
	// MintURI is the metadata URI passed to safeMint.
	MintURI string `json:"mint_uri" yaml:"mint_uri"`
	// SignMessage is the message signed by the SignMessage operation.
	SignMessage string `json:"sign_message" yaml:"sign_message"`
	// LighthouseURL is the HTTP gateway used to fetch Filecoin-backed metadata,
	// and ipfs:// metadata when IpfsURL is empty.
	// Default: https://gateway.lighthouse.storage/ipfs/
	LighthouseURL string `json:"lighthouse_url" yaml:"lighthouse_url"`
	// IpfsURL is the Kubo RPC API endpoint (e.g. http://localhost:5001) used to
	// read ipfs:// metadata. Optional.
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Network describes a blockchain network (chain ID and name) together with
// its public RPC endpoint and well-known contract deployments.
type Network struct {
	ChainID   string    `json:"chain_id"`
	Name      string    `json:"network_name"`
	RPCAddr   string    `json:"rpc_addr"`
	Contracts Contracts `json:"contracts"`
}

// Contracts lists the contract addresses the SDK talks to.
type Contracts struct {
	StableToken string `json:"stable_token" yaml:"stable_token"`
	NFT         string `json:"nft" yaml:"nft"`
}

// Alfajores is the predefined Network for the Celo Alfajores testnet.
var Alfajores = Network{
	ChainID: "44787",
	Name:    "alfajores",
	RPCAddr: "https://alfajores-forno.celo-testnet.org",
	Contracts: Contracts{
		StableToken: "0x874069Fa1Eb16D44d622F2e0Ca25eeA172369bC1",
		NFT:         "0xE8F4699baba6C86DA9729b1B0a1DA1Bd4136eFeF",
	},
}

// Celo is the predefined Network for Celo mainnet. No NFT contract is deployed
// there, so Contracts.NFT must be configured explicitly.
var Celo = Network{
	ChainID: "42220",
	Name:    "celo",
	RPCAddr: "https://forno.celo.org",
	Contracts: Contracts{
		StableToken: "0x765DE816845861e75A25fCA122bb6898B8B1282a",
	},
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by defaults in WithDefaults, except ReceiptWait
// where zero means "wait until the transaction is included".
type Timeouts struct {
	Dial        time.Duration // chain / wallet RPC connect
	ChainRead   time.Duration // eth_call
	ReceiptWait time.Duration // wait tx, 0 = unbounded
	ReceiptPoll time.Duration // interval between receipt lookups
	StorageRead time.Duration // token metadata fetch
}

// Validate normalizes the configuration by applying implicit defaults for the
// network, RPC endpoint, contract addresses, amounts precision, mint URI, sign
// message and Lighthouse gateway, then checks the result for consistency.
func (c *Config) Validate() error {

	if c.Network.ChainID == "" {
		c.Network = Alfajores
	}

	if c.RPCAddr == "" {
		c.RPCAddr = c.Network.RPCAddr
	}

	if c.Contracts.StableToken == "" {
		c.Contracts.StableToken = c.Network.Contracts.StableToken
	}

	if c.Contracts.NFT == "" {
		c.Contracts.NFT = c.Network.Contracts.NFT
	}

	if c.TokenDecimals == nil {
		c.TokenDecimals = Int32(DefaultTokenDecimals)
	}

	if c.MintURI == "" {
		c.MintURI = DefaultMintURI
	}

	if c.SignMessage == "" {
		c.SignMessage = DefaultSignMessage
	}

	if c.LighthouseURL == "" {
		c.LighthouseURL = "https://gateway.lighthouse.storage/ipfs/"
	}

	if c.RPCAddr == "" {
		return errors.New("RPC address is required")
	}

	if c.WalletAddr != "" && c.PrivateKey != "" {
		return errors.New("wallet address and private key are mutually exclusive")
	}

	if *c.TokenDecimals < 0 {
		return fmt.Errorf("token decimals must not be negative: %d", *c.TokenDecimals)
	}

	if !common.IsHexAddress(c.Contracts.StableToken) {
		return fmt.Errorf("invalid stable token address %q", c.Contracts.StableToken)
	}

	if !common.IsHexAddress(c.Contracts.NFT) {
		return fmt.Errorf("invalid NFT contract address %q", c.Contracts.NFT)
	}

	return nil
}

// StableTokenAddress returns the configured stable token contract address.
func (c *Config) StableTokenAddress() common.Address {
	return common.HexToAddress(c.Contracts.StableToken)
}

// NFTAddress returns the configured NFT contract address.
func (c *Config) NFTAddress() common.Address {
	return common.HexToAddress(c.Contracts.NFT)
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ReceiptWait: 0 (unbounded)
//	ReceiptPoll: 4s
//	StorageRead: 60s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ReceiptPoll == 0 {
		tt.ReceiptPoll = 4 * time.Second
	}
	if tt.StorageRead == 0 {
		tt.StorageRead = 60 * time.Second
	}
	return tt
}

// Int32 returns a pointer to v, for setting optional fields such as
// TokenDecimals.
func Int32(v int32) *int32 {
	return &v
}
