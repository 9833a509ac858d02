// Package operations implements the write and read calls made on behalf of
// the active wallet account: stable-token transfers, NFT mints, NFT
// enumeration, message signing and the stable-token balance.
//
// Writes are encoded by the blockchain package, handed to the wallet for
// signing and broadcasting, and then polled until the receipt exists:
//
//	ops := operations.New(evm, detect, operations.Options{})
//	receipt, err := ops.Transfer(ctx, to, "1.5")
//	if err != nil {
//		return err
//	}
//	if receipt.Status != types.ReceiptStatusSuccessful {
//		// reverted on chain
//	}
//
// Operations fail with wallet.ErrNoWallet when no wallet is detected and with
// wallet.ErrNoAccounts when it exposes no account.
package operations
