package sdk

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

// Health is the result of a health check.
type Health struct {
	// ChainID is the chain ID reported by the RPC endpoint.
	ChainID *big.Int `json:"chain_id"`
	// Wallet reports whether a wallet was detected.
	Wallet bool `json:"wallet"`
	// Accounts is the number of accounts the wallet exposes.
	Accounts int `json:"accounts"`
}

// Health asks the chain endpoint for its chain ID and, when a wallet is
// present, lists its accounts. It fails if the endpoint is unreachable,
// serves another chain than configured, or the wallet cannot list accounts.
func (c *Core) Health(ctx context.Context) (*Health, error) {
	if d := c.cfg.Timeouts.ChainRead; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	chainID, err := c.evm.Client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain health check failed: %w", err)
	}
	h := &Health{ChainID: chainID}
	if want := c.cfg.Network.ChainID; want != "" && chainID.String() != want {
		return h, fmt.Errorf("chain health check failed: endpoint serves chain %s, want %s", chainID, want)
	}

	p, ok := c.detect.Detect()
	if !ok {
		return h, nil
	}
	h.Wallet = true
	accounts, err := p.Accounts(ctx)
	if err != nil {
		return h, fmt.Errorf("wallet health check failed: %w", err)
	}
	h.Accounts = len(accounts)

	if c.cfg.Debug {
		zap.L().Debug("health", zap.Stringer("chain", chainID), zap.Int("accounts", h.Accounts))
	}
	return h, nil
}
