package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/celo-org/minipay-sdk-go/pkg/blockchain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// KeyProvider is a wallet backed by a local private key. Transactions are
// signed in-process and broadcast through backend.
type KeyProvider struct {
	address common.Address
	key     *ecdsa.PrivateKey
	chainID *big.Int
	backend bind.ContractBackend
}

// NewKeyProvider parses hexKey (with or without 0x) and binds it to chainID.
// backend is used for fee estimation, nonces and broadcasting.
func NewKeyProvider(hexKey string, chainID *big.Int, backend bind.ContractBackend) (*KeyProvider, error) {
	if chainID == nil {
		return nil, errors.New("chain ID is required")
	}
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	address, key, err := blockchain.ParsePrivateKeyECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return &KeyProvider{address: address, key: key, chainID: chainID, backend: backend}, nil
}

// Address returns the account controlled by the key.
func (k *KeyProvider) Address() common.Address {
	return k.address
}

// Accounts returns the single account controlled by the key.
func (k *KeyProvider) Accounts(context.Context) ([]common.Address, error) {
	return []common.Address{k.address}, nil
}

// SendTransaction signs a call of data to the contract at to and broadcasts it.
// Gas limit, fees and nonce are estimated by the backend.
func (k *KeyProvider) SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	if from != k.address {
		return common.Hash{}, fmt.Errorf("unknown account %s", from.Hex())
	}
	opts, err := blockchain.GetTransactOpts(k.chainID, k.key)
	if err != nil {
		return common.Hash{}, err
	}
	opts.Context = ctx

	contract := bind.NewBoundContract(to, abi.ABI{}, k.backend, k.backend, k.backend)
	tx, err := contract.RawTransact(opts, data)
	if err != nil {
		zap.L().Error("Failed to send transaction", zap.String("to", to.Hex()), zap.Error(err))
		return common.Hash{}, err
	}
	zap.L().Debug("transaction sent", zap.String("tx", tx.Hash().Hex()), zap.Uint64("nonce", tx.Nonce()))
	return tx.Hash(), nil
}

// SignMessage signs message with personal_sign semantics.
func (k *KeyProvider) SignMessage(_ context.Context, account common.Address, message []byte) (string, error) {
	if account != k.address {
		return "", fmt.Errorf("unknown account %s", account.Hex())
	}
	return blockchain.SignText(message, k.key)
}
