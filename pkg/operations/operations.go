package operations

import (
	"context"
	"fmt"

	"github.com/celo-org/minipay-sdk-go/pkg/blockchain"
	"github.com/celo-org/minipay-sdk-go/pkg/config"
	"github.com/celo-org/minipay-sdk-go/pkg/model"
	"github.com/celo-org/minipay-sdk-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options customizes the fixed values used by the operations. Nil or empty
// values fall back to the config defaults.
type Options struct {
	TokenDecimals *int32
	MintURI       string
	SignMessage   string
}

// Operations runs the wallet-backed contract calls. Every call detects the
// wallet and reads the active account again; nothing is cached between calls.
type Operations struct {
	evm      *blockchain.EVMClient
	detect   wallet.Detector
	decimals int32
	mintURI  string
	message  string
}

// New returns operations over evm that find the wallet through detect.
func New(evm *blockchain.EVMClient, detect wallet.Detector, opts Options) *Operations {
	o := &Operations{
		evm:      evm,
		detect:   detect,
		decimals: config.DefaultTokenDecimals,
		mintURI:  opts.MintURI,
		message:  opts.SignMessage,
	}
	if opts.TokenDecimals != nil {
		o.decimals = *opts.TokenDecimals
	}
	if o.mintURI == "" {
		o.mintURI = config.DefaultMintURI
	}
	if o.message == "" {
		o.message = config.DefaultSignMessage
	}
	return o
}

// Transfer sends amount (a decimal string such as "1.5") of the stable token
// from the active account to to, and waits until the transaction is included.
func (o *Operations) Transfer(ctx context.Context, to common.Address, amount string) (*types.Receipt, error) {
	p, from, err := wallet.ActiveAccount(ctx, o.detect)
	if err != nil {
		return nil, err
	}

	value, err := blockchain.ToMinimalUnit(amount, o.decimals)
	if err != nil {
		return nil, err
	}
	req := model.TransferRequest{From: from, To: to, Amount: amount, Value: value}

	data, err := o.evm.TransferCalldata(req.To, req.Value)
	if err != nil {
		return nil, err
	}
	hash, err := p.SendTransaction(ctx, req.From, o.evm.StableToken.Address, data)
	if err != nil {
		return nil, fmt.Errorf("sending transfer: %w", err)
	}
	zap.L().Info("transfer submitted",
		zap.String("tx", hash.Hex()),
		zap.String("from", req.From.Hex()),
		zap.String("to", req.To.Hex()),
		zap.String("amount", req.Amount))

	return o.evm.WaitForTransaction(ctx, hash)
}

// Mint mints a MiniPay NFT with the configured URI to the active account and
// waits until the transaction is included.
func (o *Operations) Mint(ctx context.Context) (*types.Receipt, error) {
	p, from, err := wallet.ActiveAccount(ctx, o.detect)
	if err != nil {
		return nil, err
	}
	req := model.MintRequest{To: from, URI: o.mintURI}

	data, err := o.evm.SafeMintCalldata(req.To, req.URI)
	if err != nil {
		return nil, err
	}
	hash, err := p.SendTransaction(ctx, from, o.evm.NFT.Address, data)
	if err != nil {
		return nil, fmt.Errorf("sending mint: %w", err)
	}
	zap.L().Info("mint submitted", zap.String("tx", hash.Hex()), zap.String("to", req.To.Hex()))

	return o.evm.WaitForTransaction(ctx, hash)
}

// ListOwnedTokens returns the token URIs of every NFT held by the active
// account, in the order the contract reports the token IDs. The URIs are read
// one by one; the first failure aborts the listing.
func (o *Operations) ListOwnedTokens(ctx context.Context) ([]string, error) {
	_, owner, err := wallet.ActiveAccount(ctx, o.detect)
	if err != nil {
		return nil, err
	}

	ids, err := o.evm.NFTsByAddress(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing tokens of %s: %w", owner.Hex(), err)
	}

	uris := make([]string, 0, len(ids))
	for _, id := range ids {
		uri, err := o.evm.TokenURI(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reading URI of token %s: %w", id, err)
		}
		uris = append(uris, uri)
	}
	return uris, nil
}

// SignMessage has the active account personal-sign the configured message
// and returns the 0x-hex signature. The wallet is handed MessagePayload of the
// message, so signatures match those of the MiniPay web template for the
// same key.
func (o *Operations) SignMessage(ctx context.Context) (string, error) {
	p, account, err := wallet.ActiveAccount(ctx, o.detect)
	if err != nil {
		return "", err
	}
	sig, err := p.SignMessage(ctx, account, MessagePayload(o.message))
	if err != nil {
		return "", fmt.Errorf("signing message: %w", err)
	}
	return sig, nil
}

// StableBalance returns the stable token balance of the active account in
// whole tokens.
func (o *Operations) StableBalance(ctx context.Context) (decimal.Decimal, error) {
	_, owner, err := wallet.ActiveAccount(ctx, o.detect)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := o.evm.StableBalanceOf(ctx, owner)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading balance of %s: %w", owner.Hex(), err)
	}
	return blockchain.FromMinimalUnit(balance, o.decimals), nil
}

// MessagePayload returns the bytes put under personal_sign for message: the
// 0x-hex encoding of its UTF-8 bytes, as ASCII text.
func MessagePayload(message string) []byte {
	return []byte(hexutil.Encode([]byte(message)))
}
