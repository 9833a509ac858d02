// Package wallet defines the wallet session used by the SDK and two
// implementations of it.
//
// A Provider exposes the user's accounts, sends transactions and signs
// messages. RPCProvider forwards these to an external wallet over JSON-RPC
// (eth_accounts, eth_sendTransaction, personal_sign); KeyProvider holds a
// local private key and signs in-process.
//
// Presence of a wallet is checked through a Detector rather than assumed:
//
//	detect := wallet.Static(provider) // or wallet.None()
//	p, account, err := wallet.ActiveAccount(ctx, detect)
//	if errors.Is(err, wallet.ErrNoWallet) {
//		// nothing to do
//	}
//
// The active account is always the first entry of Accounts.
package wallet
