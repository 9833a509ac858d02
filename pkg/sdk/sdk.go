package sdk

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/celo-org/minipay-sdk-go/pkg/blockchain"
	"github.com/celo-org/minipay-sdk-go/pkg/config"
	"github.com/celo-org/minipay-sdk-go/pkg/model"
	"github.com/celo-org/minipay-sdk-go/pkg/operations"
	"github.com/celo-org/minipay-sdk-go/pkg/session"
	"github.com/celo-org/minipay-sdk-go/pkg/storage"
	"github.com/celo-org/minipay-sdk-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MiniPaySDK is the public surface of the SDK: the wallet session state and
// the contract operations of the active account.
type MiniPaySDK interface {
	// Start refreshes the session once in the background. The returned channel
	// is closed when that refresh finishes. Failures are only logged.
	Start(ctx context.Context) <-chan struct{}
	// Refresh re-reads the active address and membership; failures are only logged.
	Refresh(ctx context.Context)
	// CheckMembership re-reads membership and reports failures.
	CheckMembership(ctx context.Context) error

	// Address returns the active address and whether one is known.
	Address() (common.Address, bool)
	IsMember() bool
	SetMember(bool)
	NFTOwnership() bool
	SetNFTOwnership(bool)

	// Transfer sends amount of the stable token to to and waits for inclusion.
	Transfer(ctx context.Context, to common.Address, amount string) (*types.Receipt, error)
	// Mint mints a MiniPay NFT to the active account and waits for inclusion.
	Mint(ctx context.Context) (*types.Receipt, error)
	// ListOwnedTokens returns the token URIs of the active account's NFTs.
	ListOwnedTokens(ctx context.Context) ([]string, error)
	// SignMessage signs the configured message with the active account.
	SignMessage(ctx context.Context) (string, error)
	// StableBalance returns the active account's stable token balance.
	StableBalance(ctx context.Context) (decimal.Decimal, error)
	// TokenMetadata resolves the metadata document behind a token URI.
	TokenMetadata(ctx context.Context, uri string) (*model.TokenMetadata, error)

	// Health checks that the chain endpoint and wallet are reachable.
	Health(ctx context.Context) (*Health, error)

	// Close releases the chain and wallet connections.
	Close()
}

// logLevel is the level of the global logger installed by init. NewSDK
// lowers it to debug when Config.Debug is set.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Core is the concrete SDK implementation.
type Core struct {
	*session.Session
	*operations.Operations

	cfg     *config.Config
	evm     *blockchain.EVMClient
	detect  wallet.Detector
	storage storage.Reader
	closers []func()
}

// NewSDK validates cfg, connects to the chain and to the configured wallet,
// and returns a ready SDK. The wallet is chosen from the config: WalletAddr
// selects an external JSON-RPC wallet, PrivateKey a local key, and neither
// leaves the SDK without a wallet (operations then fail with
// wallet.ErrNoWallet).
func NewSDK(ctx context.Context, cfg *config.Config) (MiniPaySDK, error) {
	if err := cfg.Validate(); err != nil {
		zap.L().Error("Invalid config", zap.Error(err))
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	if cfg.Debug {
		logLevel.SetLevel(zapcore.DebugLevel)
	}

	evm, err := blockchain.InitEvm(ctx, cfg)
	if err != nil {
		zap.L().Error("Init chain client failed", zap.String("rpc", cfg.RPCAddr), zap.Error(err))
		return nil, fmt.Errorf("init chain client: %w", err)
	}

	detect, closeWallet, err := newDetector(ctx, cfg, evm)
	if err != nil {
		evm.Close()
		return nil, err
	}

	store := storage.NewStorage(cfg.IpfsURL, cfg.LighthouseURL, cfg.Timeouts.StorageRead)

	c := New(cfg, evm, detect, store)
	if closeWallet != nil {
		c.closers = append(c.closers, closeWallet)
	}
	return c, nil
}

// New assembles an SDK from already constructed parts. cfg must be
// validated; evm, detect and store are used as given.
func New(cfg *config.Config, evm *blockchain.EVMClient, detect wallet.Detector, store storage.Reader) *Core {
	return &Core{
		Session: session.New(detect, evm),
		Operations: operations.New(evm, detect, operations.Options{
			TokenDecimals: cfg.TokenDecimals,
			MintURI:       cfg.MintURI,
			SignMessage:   cfg.SignMessage,
		}),
		cfg:     cfg,
		evm:     evm,
		detect:  detect,
		storage: store,
	}
}

// newDetector builds the wallet detector described by cfg and the function
// that releases it, if any.
func newDetector(ctx context.Context, cfg *config.Config, evm *blockchain.EVMClient) (wallet.Detector, func(), error) {
	switch {
	case cfg.WalletAddr != "":
		dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Dial)
		defer cancel()
		p, err := wallet.DialRPC(dialCtx, cfg.WalletAddr)
		if err != nil {
			return nil, nil, err
		}
		zap.L().Debug("using external wallet", zap.String("endpoint", cfg.WalletAddr))
		return wallet.Static(p), p.Close, nil

	case cfg.PrivateKey != "":
		backend, ok := evm.Client.(bind.ContractBackend)
		if !ok {
			return nil, nil, errors.New("chain client cannot send transactions")
		}
		chainID, ok := new(big.Int).SetString(cfg.Network.ChainID, 10)
		if !ok {
			return nil, nil, fmt.Errorf("invalid chain ID %q", cfg.Network.ChainID)
		}
		p, err := wallet.NewKeyProvider(cfg.PrivateKey, chainID, backend)
		if err != nil {
			return nil, nil, err
		}
		zap.L().Debug("using local key", zap.String("address", p.Address().Hex()))
		return wallet.Static(p), nil, nil

	default:
		zap.L().Info("no wallet configured, contract operations are disabled")
		return wallet.None(), nil, nil
	}
}

// TokenMetadata reads uri through the storage backends and decodes it. URIs
// that point to non-JSON content (such as an image) produce metadata whose
// Image is the URI itself.
func (c *Core) TokenMetadata(ctx context.Context, uri string) (*model.TokenMetadata, error) {
	if uri == "" {
		return nil, errors.New("token URI is empty")
	}
	if c.storage == nil {
		return nil, errors.New("storage not configured")
	}
	content, err := c.storage.ReadFile(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}
	return model.DecodeTokenMetadata(uri, content), nil
}

// Close shuts down the wallet and chain connections.
func (c *Core) Close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
	c.closers = nil
	c.evm.Close()
}
