package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/celo-org/minipay-sdk-go/pkg/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Backend is the subset of *ethclient.Client the SDK relies on: read-only
// contract calls, receipt lookups and chain identification. Tests substitute
// an in-memory implementation.
type Backend interface {
	ethereum.ContractCaller
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// EVMClient holds a chain backend and the contract handles for the stable
// token (cUSD) and the MiniPay NFT.
type EVMClient struct {
	Client      Backend
	StableToken *Contract
	NFT         *Contract
	Timeouts    config.Timeouts
}

// NewEVMClient binds the stable token and NFT contracts at the given addresses
// to backend. Timeouts start at their defaults.
func NewEVMClient(backend Backend, stableToken, nft common.Address) (*EVMClient, error) {
	stable, err := NewContract(stableToken, StableTokenABI, backend)
	if err != nil {
		return nil, fmt.Errorf("bind stable token: %w", err)
	}
	nftContract, err := NewContract(nft, MiniPayNFTABI, backend)
	if err != nil {
		return nil, fmt.Errorf("bind NFT contract: %w", err)
	}
	return &EVMClient{
		Client:      backend,
		StableToken: stable,
		NFT:         nftContract,
		Timeouts:    config.Timeouts{}.WithDefaults(),
	}, nil
}

// InitEvm dials the configured RPC endpoint, verifies it serves the configured
// network and binds the contracts listed in cfg.Contracts.
//
// cfg is expected to be validated (see config.Config.Validate).
func InitEvm(ctx context.Context, cfg *config.Config) (*EVMClient, error) {
	timeouts := cfg.Timeouts.WithDefaults()

	client, err := Dial(ctx, cfg.RPCAddr, cfg.Network.ChainID, timeouts.Dial)
	if err != nil {
		return nil, err
	}

	evm, err := NewEVMClient(client, cfg.StableTokenAddress(), cfg.NFTAddress())
	if err != nil {
		client.Close()
		return nil, err
	}
	evm.Timeouts = timeouts
	return evm, nil
}

// Dial connects to endpoint and checks that the remote chain ID equals
// chainID (decimal string). An empty chainID skips the check.
func Dial(ctx context.Context, endpoint, chainID string, timeout time.Duration) (*ethclient.Client, error) {
	dialCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	if chainID == "" {
		return client, nil
	}

	remote, err := client.ChainID(dialCtx)
	if err != nil {
		zap.L().Error("Failed to get chain ID", zap.String("endpoint", endpoint), zap.Error(err))
		client.Close()
		return nil, err
	}
	if remote.String() != chainID {
		client.Close()
		return nil, fmt.Errorf("endpoint %s serves chain %s, want %s", endpoint, remote, chainID)
	}
	return client, nil
}

// NFTBalanceOf returns the number of MiniPay NFTs held by owner.
func (evm *EVMClient) NFTBalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	ctx, cancel := withTimeout(ctx, evm.Timeouts.ChainRead)
	defer cancel()

	out, err := evm.NFT.Call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return firstBigInt(out, "balanceOf")
}

// NFTsByAddress returns the token IDs owned by owner in contract order.
func (evm *EVMClient) NFTsByAddress(ctx context.Context, owner common.Address) ([]*big.Int, error) {
	ctx, cancel := withTimeout(ctx, evm.Timeouts.ChainRead)
	defer cancel()

	out, err := evm.NFT.Call(ctx, "getNFTsByAddress", owner)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("getNFTsByAddress: expected 1 return value, got %d", len(out))
	}
	ids, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("getNFTsByAddress: unexpected type %T", out[0])
	}
	return ids, nil
}

// TokenURI returns the metadata URI of the NFT with the given id.
func (evm *EVMClient) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	ctx, cancel := withTimeout(ctx, evm.Timeouts.ChainRead)
	defer cancel()

	out, err := evm.NFT.Call(ctx, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", fmt.Errorf("tokenURI: expected 1 return value, got %d", len(out))
	}
	uri, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("tokenURI: unexpected type %T", out[0])
	}
	return uri, nil
}

// StableBalanceOf returns the stable token balance of owner in minimal units.
func (evm *EVMClient) StableBalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	ctx, cancel := withTimeout(ctx, evm.Timeouts.ChainRead)
	defer cancel()

	out, err := evm.StableToken.Call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return firstBigInt(out, "balanceOf")
}

// TransferCalldata encodes stableToken.transfer(to, value).
func (evm *EVMClient) TransferCalldata(to common.Address, value *big.Int) ([]byte, error) {
	return evm.StableToken.Pack("transfer", to, value)
}

// SafeMintCalldata encodes nft.safeMint(to, uri).
func (evm *EVMClient) SafeMintCalldata(to common.Address, uri string) ([]byte, error) {
	return evm.NFT.Pack("safeMint", to, uri)
}

// Close releases the underlying RPC connection.
func (evm *EVMClient) Close() {
	if evm == nil || evm.Client == nil {
		return
	}
	evm.Client.Close()
}

func firstBigInt(out []any, method string) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%s: expected 1 return value, got %d", method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected type %T", method, out[0])
	}
	return v, nil
}

// withTimeout returns ctx unchanged if d <= 0, otherwise returns a child context with timeout d.
// The returned cancel function is always non-nil and should be called to release resources.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
