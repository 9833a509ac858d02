package session

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/celo-org/minipay-sdk-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// BalanceReader returns the number of membership NFTs held by owner.
// *blockchain.EVMClient satisfies it through NFTBalanceOf.
type BalanceReader interface {
	NFTBalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// Session tracks the active wallet address and whether it holds the
// membership NFT. The zero value is not usable; create it with New.
type Session struct {
	detect  wallet.Detector
	nft     BalanceReader
	mu      sync.RWMutex
	address common.Address
	hasAddr bool
	member  bool
	owner   bool

	startOnce sync.Once
	started   chan struct{}
}

// New returns a session that finds the wallet through detect and reads NFT
// balances through nft.
func New(detect wallet.Detector, nft BalanceReader) *Session {
	return &Session{detect: detect, nft: nft, started: make(chan struct{})}
}

// Start runs Refresh once in its own goroutine and returns a channel that is
// closed when it finishes. Cancelling ctx aborts the refresh. Later calls
// return the same channel without refreshing again.
func (s *Session) Start(ctx context.Context) <-chan struct{} {
	s.startOnce.Do(func() {
		go func() {
			defer close(s.started)
			s.Refresh(ctx)
		}()
	})
	return s.started
}

// Refresh reads the first wallet account and its NFT balance into the
// session. It never fails: a missing wallet is ignored and every other
// failure is logged and leaves the affected state as it was. The address is
// stored before the balance is read.
func (s *Session) Refresh(ctx context.Context) {
	p, ok := s.detect.Detect()
	if !ok {
		return
	}

	accounts, err := p.Accounts(ctx)
	if err != nil {
		zap.L().Error("Failed to list wallet accounts", zap.Error(err))
		return
	}
	if len(accounts) == 0 {
		zap.L().Warn("no address found")
		return
	}

	address := accounts[0]
	s.setAddress(address)

	balance, err := s.nft.NFTBalanceOf(ctx, address)
	if err != nil {
		zap.L().Error("Failed to read NFT balance", zap.String("address", address.Hex()), zap.Error(err))
		return
	}
	s.setFlags(balance.Sign() > 0)
}

// CheckMembership repeats the membership lookup for the current first
// account and updates the session. Unlike Refresh it returns failures; a
// missing wallet is still a no-op.
func (s *Session) CheckMembership(ctx context.Context) error {
	p, ok := s.detect.Detect()
	if !ok {
		return nil
	}

	accounts, err := p.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}
	if len(accounts) == 0 {
		return wallet.ErrNoAccounts
	}

	balance, err := s.nft.NFTBalanceOf(ctx, accounts[0])
	if err != nil {
		return fmt.Errorf("reading NFT balance: %w", err)
	}
	s.setFlags(balance.Sign() > 0)
	return nil
}

// Address returns the active address and whether one has been set.
func (s *Session) Address() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address, s.hasAddr
}

// IsMember reports whether the last balance lookup found at least one NFT,
// or the value last passed to SetMember.
func (s *Session) IsMember() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.member
}

// SetMember overrides the membership flag.
func (s *Session) SetMember(v bool) {
	s.mu.Lock()
	s.member = v
	s.mu.Unlock()
}

// NFTOwnership reports the NFT ownership flag. It follows every balance
// lookup like IsMember but has its own setter.
func (s *Session) NFTOwnership() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// SetNFTOwnership overrides the NFT ownership flag.
func (s *Session) SetNFTOwnership(v bool) {
	s.mu.Lock()
	s.owner = v
	s.mu.Unlock()
}

func (s *Session) setAddress(a common.Address) {
	s.mu.Lock()
	s.address = a
	s.hasAddr = true
	s.mu.Unlock()
}

func (s *Session) setFlags(member bool) {
	s.mu.Lock()
	s.member = member
	s.owner = member
	s.mu.Unlock()
}
