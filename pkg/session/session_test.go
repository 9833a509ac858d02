package session

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/celo-org/minipay-sdk-go/internal/testutil/fakechain"
	"github.com/celo-org/minipay-sdk-go/pkg/blockchain"
	"github.com/celo-org/minipay-sdk-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/common"
)

var (
	stableAddr = common.HexToAddress("0x874069Fa1Eb16D44d622F2e0Ca25eeA172369bC1")
	nftAddr    = common.HexToAddress("0xE8F4699baba6C86DA9729b1B0a1DA1Bd4136eFeF")
	abcAddr    = common.HexToAddress("0xABC")
)

// stubProvider serves a fixed account list and counts lookups.
type stubProvider struct {
	mu       sync.Mutex
	accounts []common.Address
	err      error
	calls    int
}

func (p *stubProvider) Accounts(context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.accounts, p.err
}

func (p *stubProvider) SendTransaction(context.Context, common.Address, common.Address, []byte) (common.Hash, error) {
	return common.Hash{}, errors.New("not implemented")
}

func (p *stubProvider) SignMessage(context.Context, common.Address, []byte) (string, error) {
	return "", errors.New("not implemented")
}

func (p *stubProvider) lookups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// balanceFunc adapts a function to BalanceReader.
type balanceFunc func(ctx context.Context, owner common.Address) (*big.Int, error)

func (f balanceFunc) NFTBalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return f(ctx, owner)
}

func fixedBalance(n int64) balanceFunc {
	return func(context.Context, common.Address) (*big.Int, error) { return big.NewInt(n), nil }
}

func newChain(t *testing.T, balances map[common.Address]int64) *blockchain.EVMClient {
	t.Helper()
	backend := fakechain.New(44787)
	if err := backend.Register(nftAddr, blockchain.MiniPayNFTABI); err != nil {
		t.Fatalf("register NFT: %v", err)
	}
	if err := backend.Register(stableAddr, blockchain.StableTokenABI); err != nil {
		t.Fatalf("register stable token: %v", err)
	}
	backend.Handle(nftAddr, "balanceOf", func(args []any) ([]any, error) {
		return []any{big.NewInt(balances[args[0].(common.Address)])}, nil
	})
	evm, err := blockchain.NewEVMClient(backend, stableAddr, nftAddr)
	if err != nil {
		t.Fatalf("NewEVMClient: %v", err)
	}
	return evm
}

func TestRefreshSetsAddressAndMembership(t *testing.T) {
	evm := newChain(t, map[common.Address]int64{abcAddr: 2})
	s := New(wallet.Static(&stubProvider{accounts: []common.Address{abcAddr}}), evm)

	s.Refresh(context.Background())

	addr, ok := s.Address()
	if !ok || addr != abcAddr {
		t.Fatalf("expected address %s, got %s (set=%v)", abcAddr.Hex(), addr.Hex(), ok)
	}
	if !s.IsMember() || !s.NFTOwnership() {
		t.Fatal("expected membership with balance 2")
	}
}

func TestRefreshZeroBalance(t *testing.T) {
	evm := newChain(t, nil)
	s := New(wallet.Static(&stubProvider{accounts: []common.Address{abcAddr}}), evm)
	s.SetMember(true)
	s.SetNFTOwnership(true)

	s.Refresh(context.Background())

	if s.IsMember() || s.NFTOwnership() {
		t.Fatal("expected flags cleared with balance 0")
	}
}

func TestRefreshEmptyAccountsLeavesStateUnset(t *testing.T) {
	s := New(wallet.Static(&stubProvider{}), fixedBalance(5))

	s.Refresh(context.Background())

	if _, ok := s.Address(); ok {
		t.Fatal("address must stay unset")
	}
	if s.IsMember() {
		t.Fatal("membership must stay false")
	}
}

func TestRefreshEmptyAccountsKeepsPreviousState(t *testing.T) {
	p := &stubProvider{accounts: []common.Address{abcAddr}}
	s := New(wallet.Static(p), fixedBalance(1))
	s.Refresh(context.Background())

	p.mu.Lock()
	p.accounts = nil
	p.mu.Unlock()
	s.Refresh(context.Background())

	if addr, ok := s.Address(); !ok || addr != abcAddr {
		t.Fatalf("expected previous address kept, got %s (set=%v)", addr.Hex(), ok)
	}
	if !s.IsMember() {
		t.Fatal("expected previous membership kept")
	}
}

func TestRefreshNoWalletIsNoop(t *testing.T) {
	called := false
	s := New(wallet.None(), balanceFunc(func(context.Context, common.Address) (*big.Int, error) {
		called = true
		return big.NewInt(1), nil
	}))

	s.Refresh(context.Background())

	if called {
		t.Fatal("balance must not be read without a wallet")
	}
	if _, ok := s.Address(); ok {
		t.Fatal("address must stay unset")
	}
}

func TestRefreshAccountsErrorLeavesState(t *testing.T) {
	s := New(wallet.Static(&stubProvider{err: errors.New("locked")}), fixedBalance(1))

	s.Refresh(context.Background())

	if _, ok := s.Address(); ok {
		t.Fatal("address must stay unset")
	}
}

func TestRefreshBalanceErrorKeepsFlags(t *testing.T) {
	s := New(
		wallet.Static(&stubProvider{accounts: []common.Address{abcAddr}}),
		balanceFunc(func(context.Context, common.Address) (*big.Int, error) {
			return nil, errors.New("rpc down")
		}),
	)
	s.SetMember(true)

	s.Refresh(context.Background())

	if addr, ok := s.Address(); !ok || addr != abcAddr {
		t.Fatal("address is stored before the balance read")
	}
	if !s.IsMember() {
		t.Fatal("membership must be unchanged on balance error")
	}
}

func TestStartRunsOnce(t *testing.T) {
	p := &stubProvider{accounts: []common.Address{abcAddr}}
	s := New(wallet.Static(p), fixedBalance(3))

	done := s.Start(context.Background())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("start did not finish")
	}
	if again := s.Start(context.Background()); again != done {
		t.Fatal("expected the same done channel")
	}
	<-s.Start(context.Background())

	if p.lookups() != 1 {
		t.Fatalf("expected a single refresh, got %d", p.lookups())
	}
	if !s.IsMember() {
		t.Fatal("expected membership after start")
	}
}

func TestStartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(
		wallet.Static(&stubProvider{accounts: []common.Address{abcAddr}}),
		balanceFunc(func(ctx context.Context, _ common.Address) (*big.Int, error) {
			return nil, ctx.Err()
		}),
	)

	select {
	case <-s.Start(ctx):
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled start did not finish")
	}
	if s.IsMember() {
		t.Fatal("membership must not be set by a cancelled start")
	}
}

func TestCheckMembership(t *testing.T) {
	balances := map[common.Address]int64{abcAddr: 0}
	evm := newChain(t, balances)
	s := New(wallet.Static(&stubProvider{accounts: []common.Address{abcAddr}}), evm)

	if err := s.CheckMembership(context.Background()); err != nil {
		t.Fatalf("CheckMembership: %v", err)
	}
	if s.IsMember() {
		t.Fatal("expected no membership")
	}

	balances[abcAddr] = 1
	if err := s.CheckMembership(context.Background()); err != nil {
		t.Fatalf("CheckMembership: %v", err)
	}
	if !s.IsMember() || !s.NFTOwnership() {
		t.Fatal("expected membership after minting")
	}
}

func TestCheckMembershipErrors(t *testing.T) {
	if err := New(wallet.None(), fixedBalance(1)).CheckMembership(context.Background()); err != nil {
		t.Fatalf("no wallet should be a no-op, got %v", err)
	}

	err := New(wallet.Static(&stubProvider{}), fixedBalance(1)).CheckMembership(context.Background())
	if !errors.Is(err, wallet.ErrNoAccounts) {
		t.Fatalf("expected ErrNoAccounts, got %v", err)
	}

	rpcErr := errors.New("rpc down")
	s := New(
		wallet.Static(&stubProvider{accounts: []common.Address{abcAddr}}),
		balanceFunc(func(context.Context, common.Address) (*big.Int, error) { return nil, rpcErr }),
	)
	if err := s.CheckMembership(context.Background()); !errors.Is(err, rpcErr) {
		t.Fatalf("expected %v, got %v", rpcErr, err)
	}
}

func TestSettersAreIndependent(t *testing.T) {
	s := New(wallet.None(), fixedBalance(0))
	s.SetMember(true)
	if !s.IsMember() || s.NFTOwnership() {
		t.Fatal("SetMember must only change membership")
	}
	s.SetNFTOwnership(true)
	s.SetMember(false)
	if s.IsMember() || !s.NFTOwnership() {
		t.Fatal("SetNFTOwnership must only change ownership")
	}
}
