package wallet

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// RPCProvider talks to an external wallet over JSON-RPC using the standard
// eth_accounts, eth_sendTransaction and personal_sign methods. Keys never
// leave the wallet.
type RPCProvider struct {
	client *rpc.Client
}

// callArgs is the transaction object accepted by eth_sendTransaction.
type callArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// DialRPC connects to the wallet endpoint (http, ws or ipc path).
func DialRPC(ctx context.Context, endpoint string) (*RPCProvider, error) {
	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		zap.L().Error("Failed to dial wallet", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("dial wallet %s: %w", endpoint, err)
	}
	return NewRPCProvider(client), nil
}

// NewRPCProvider wraps an existing RPC client.
func NewRPCProvider(client *rpc.Client) *RPCProvider {
	return &RPCProvider{client: client}
}

// Accounts calls eth_accounts.
func (p *RPCProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SendTransaction calls eth_sendTransaction. Gas, fees and nonce are left to
// the wallet.
func (p *RPCProvider) SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	var hash common.Hash
	args := callArgs{From: from, To: to, Data: data}
	if err := p.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// SignMessage calls personal_sign with the message bytes and the account.
func (p *RPCProvider) SignMessage(ctx context.Context, account common.Address, message []byte) (string, error) {
	var sig hexutil.Bytes
	if err := p.client.CallContext(ctx, &sig, "personal_sign", hexutil.Bytes(message), account); err != nil {
		return "", err
	}
	return sig.String(), nil
}

// Close closes the RPC connection. It is safe on a nil receiver.
func (p *RPCProvider) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Close()
}
