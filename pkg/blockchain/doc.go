// Package blockchain provides the chain client used by the MiniPay SDK.
//
// It wraps go-ethereum: the endpoint is dialed with ethclient, the stable
// token (cUSD) and MiniPay NFT contracts are bound from embedded ABI
// fragments, and typed helpers read balances, token IDs and token URIs.
//
// # Contracts
//
// Two contracts are used:
//
//   - Stable token (ERC-20): balanceOf, decimals, transfer
//   - MiniPay NFT (ERC-721): balanceOf, getNFTsByAddress, safeMint, tokenURI
//
// Their addresses come from config.Network presets or explicit config:
//
//	evm, err := blockchain.InitEvm(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer evm.Close()
//
//	balance, err := evm.NFTBalanceOf(ctx, owner)
//
// Tests and callers with their own transport construct the client directly
// from any Backend:
//
//	evm, err := blockchain.NewEVMClient(backend, stableAddr, nftAddr)
//
// # Writes
//
// The package does not submit transactions itself. TransferCalldata and
// SafeMintCalldata return the encoded call which a wallet provider signs and
// sends; WaitForTransaction then polls until the receipt exists:
//
//	data, _ := evm.TransferCalldata(to, value)
//	hash, err := provider.SendTransaction(ctx, from, evm.StableToken.Address, data)
//	receipt, err := evm.WaitForTransaction(ctx, hash)
//
// A reverted transaction still yields its receipt; callers inspect
// receipt.Status.
//
// # Amounts
//
// ToMinimalUnit and FromMinimalUnit convert between decimal token amounts and
// minimal units using shopspring/decimal:
//
//	value, err := blockchain.ToMinimalUnit("1.5", 18) // 1500000000000000000
//
// # Signing
//
// SignText and RecoverText implement personal_sign (EIP-191) for local keys.
//
// # Timeouts
//
// Reads are bounded by Config.Timeouts.ChainRead. Receipt waiting polls every
// Timeouts.ReceiptPoll and is unbounded unless Timeouts.ReceiptWait is set.
package blockchain
