// Package config provides configuration management for the MiniPay SDK.
//
// This package defines the Config structure that controls all SDK behavior including
// network settings, RPC endpoints, the wallet provider source, contract addresses,
// storage gateways and timeouts.
//
// # Basic Configuration
//
// The zero value is usable: Validate selects Celo Alfajores, its public Forno
// endpoint and the well-known cUSD and MiniPay NFT contracts.
//
//	cfg := &config.Config{}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// # Wallet Provider
//
// Exactly one wallet source may be configured:
//
//   - WalletAddr: JSON-RPC endpoint of an external wallet that answers
//     eth_accounts, eth_sendTransaction and personal_sign.
//   - PrivateKey: hex-encoded key used as a local single-account wallet.
//
// With neither set the SDK runs without a wallet: session refresh is a no-op
// and wallet-bound operations fail with wallet.ErrNoWallet.
//
// # Networks
//
//	config.Alfajores - Celo Alfajores testnet (ChainID: 44787)
//	config.Celo      - Celo mainnet (ChainID: 42220), NFT address must be set
//
// # Timeouts
//
//	cfg.Timeouts = config.Timeouts{
//		Dial:        5 * time.Second,
//		ChainRead:   12 * time.Second,
//		ReceiptWait: 0,               // wait until included
//		ReceiptPoll: 4 * time.Second,
//		StorageRead: 60 * time.Second,
//	}
//
// Zero values are replaced with defaults via WithDefaults(). ReceiptWait keeps
// zero, which lets write operations block until the receipt exists or the
// caller's context is cancelled.
//
// # Thread Safety
//
// Config instances should be created once and not modified after passing to sdk.NewSDK().
package config
