package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoWallet is returned when the detector reports that no wallet is
	// available.
	ErrNoWallet = errors.New("no wallet available")
	// ErrNoAccounts is returned when the wallet exposes an empty account list.
	ErrNoAccounts = errors.New("no address found")
)

// Provider is a connected wallet session: it lists the accounts the user has
// exposed, submits transactions on their behalf and signs messages.
type Provider interface {
	// Accounts returns the exposed accounts; the first one is the active account.
	Accounts(ctx context.Context) ([]common.Address, error)
	// SendTransaction signs and broadcasts a call of data to the contract at to,
	// sent from from, and returns the transaction hash.
	SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error)
	// SignMessage returns the 0x-hex personal_sign signature of message by account.
	SignMessage(ctx context.Context, account common.Address, message []byte) (string, error)
}

// Detector checks whether a wallet is present. It returns the provider and
// true when one is, or nil and false otherwise.
type Detector func() (Provider, bool)

// Static returns a Detector that always reports p. A nil p reports no wallet.
func Static(p Provider) Detector {
	return func() (Provider, bool) {
		return p, p != nil
	}
}

// None returns a Detector that never finds a wallet.
func None() Detector {
	return func() (Provider, bool) { return nil, false }
}

// Detect runs d, treating a nil detector as "no wallet".
func (d Detector) Detect() (Provider, bool) {
	if d == nil {
		return nil, false
	}
	p, ok := d()
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// ActiveAccount detects the wallet and returns it with the first exposed
// account. It fails with ErrNoWallet or ErrNoAccounts when either is missing.
func ActiveAccount(ctx context.Context, detect Detector) (Provider, common.Address, error) {
	p, ok := detect.Detect()
	if !ok {
		return nil, common.Address{}, ErrNoWallet
	}
	accounts, err := p.Accounts(ctx)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("listing accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, common.Address{}, ErrNoAccounts
	}
	return p, accounts[0], nil
}
