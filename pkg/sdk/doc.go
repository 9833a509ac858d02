// Package sdk provides the high-level entry point of the MiniPay SDK.
//
// The SDK tracks the wallet session of a MiniPay user (active address and NFT
// membership) and runs the contract operations of the MiniPay template on
// Celo: cUSD transfers, membership NFT mints, NFT listing and message
// signing.
//
// # Quick Start
//
//	import (
//		"github.com/celo-org/minipay-sdk-go/pkg/config"
//		"github.com/celo-org/minipay-sdk-go/pkg/sdk"
//	)
//
//	func main() {
//		ctx := context.Background()
//		cfg := &config.Config{
//			PrivateKey: "YOUR_PRIVATE_KEY",
//			Network:    config.Alfajores,
//		}
//
//		miniPay, err := sdk.NewSDK(ctx, cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer miniPay.Close()
//
//		<-miniPay.Start(ctx)
//		if addr, ok := miniPay.Address(); ok {
//			fmt.Println(addr.Hex(), miniPay.IsMember())
//		}
//
//		receipt, err := miniPay.Transfer(ctx, to, "1.5")
//	}
//
// # Wallets
//
// The wallet is selected by the configuration:
//
//   - WalletAddr: an external wallet reached over JSON-RPC
//     (eth_accounts, eth_sendTransaction, personal_sign)
//   - PrivateKey: a local key; transactions are signed in-process and sent
//     through the chain endpoint
//   - neither: read-only; operations return wallet.ErrNoWallet and the
//     session stays empty
//
// Callers that build the chain client or wallet themselves use New with any
// wallet.Detector.
//
// # Session
//
// Start loads the address and membership once, in the background. Failures
// there are only logged, so a missing wallet or an empty account list leaves
// the session unset. Refresh repeats the load; CheckMembership repeats the
// membership lookup and returns its error. SetMember and SetNFTOwnership
// override the two flags.
//
// # Operations
//
// Transfer and Mint block until the transaction is included and return the
// receipt as reported by the node; check receipt.Status for reverts.
// ListOwnedTokens returns token URIs in contract order and TokenMetadata
// resolves one of them through IPFS, Lighthouse or HTTP.
//
// # Logging
//
// The package installs a console zap logger at info level. Config.Debug
// switches it to debug. Replace it with zap.ReplaceGlobals for custom output.
package sdk
