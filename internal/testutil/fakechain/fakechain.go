// Package fakechain provides an in-memory chain backend for tests. Contract
// calls are decoded with the real ABI, routed to per-method handlers and the
// handler results are ABI-encoded back, so callers exercise the same
// Pack/Unpack path as against a node.
package fakechain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Handler answers one contract method. args are the decoded inputs; the
// returned values are encoded with the method outputs.
type Handler func(args []any) ([]any, error)

// Call records one eth_call served by the backend.
type Call struct {
	To     common.Address
	Method string
	Args   []any
}

type contract struct {
	abi      abi.ABI
	handlers map[string]Handler
}

type pendingReceipt struct {
	receipt      *types.Receipt
	err          error
	afterLookups int
	lookups      int
}

// Backend is an in-memory implementation of the chain client surface used by
// the SDK (CallContract, TransactionReceipt, ChainID, Close).
type Backend struct {
	mu        sync.Mutex
	chainID   *big.Int
	contracts map[common.Address]*contract
	receipts  map[common.Hash]*pendingReceipt
	calls     []Call
	closed    bool
}

// New returns an empty backend reporting chainID.
func New(chainID int64) *Backend {
	return &Backend{
		chainID:   big.NewInt(chainID),
		contracts: make(map[common.Address]*contract),
		receipts:  make(map[common.Hash]*pendingReceipt),
	}
}

// Register deploys a contract with the given ABI at addr.
func (b *Backend) Register(addr common.Address, rawABI string) error {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contracts[addr] = &contract{abi: parsed, handlers: make(map[string]Handler)}
	return nil
}

// Handle installs h for method on the contract at addr. Register must be called first.
func (b *Backend) Handle(addr common.Address, method string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.contracts[addr]
	if !ok {
		panic(fmt.Sprintf("fakechain: no contract registered at %s", addr.Hex()))
	}
	c.handlers[method] = h
}

// AddReceipt makes receipt available for hash once it has been looked up
// afterLookups times (0 = immediately).
func (b *Backend) AddReceipt(hash common.Hash, receipt *types.Receipt, afterLookups int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receipts[hash] = &pendingReceipt{receipt: receipt, afterLookups: afterLookups}
}

// FailReceipt makes every lookup of hash return err.
func (b *Backend) FailReceipt(hash common.Hash, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receipts[hash] = &pendingReceipt{err: err}
}

// CallContract implements ethereum.ContractCaller.
func (b *Backend) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, errors.New("fakechain: contract creation is not supported")
	}
	if len(msg.Data) < 4 {
		return nil, errors.New("fakechain: calldata too short")
	}

	b.mu.Lock()
	c, ok := b.contracts[*msg.To]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("fakechain: no contract at %s", msg.To.Hex())
	}

	method, err := c.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.calls = append(b.calls, Call{To: *msg.To, Method: method.Name, Args: args})
	h, ok := c.handlers[method.Name]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("fakechain: execution reverted: no handler for %s", method.Name)
	}

	results, err := h(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(results...)
}

// TransactionReceipt returns the receipt registered for hash, or
// ethereum.NotFound while it is still pending.
func (b *Backend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	if p.err != nil {
		return nil, p.err
	}
	p.lookups++
	if p.lookups <= p.afterLookups {
		return nil, ethereum.NotFound
	}
	return p.receipt, nil
}

// ChainID returns the configured chain ID.
func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.chainID), nil
}

// Close marks the backend closed.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Calls returns a copy of every eth_call served so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount returns how many times method was called.
func (b *Backend) CallCount(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// ReceiptLookups returns how many times the receipt of hash was requested.
func (b *Backend) ReceiptLookups(hash common.Hash) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.receipts[hash]; ok {
		return p.lookups
	}
	return 0
}
