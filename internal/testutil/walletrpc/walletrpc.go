// Package walletrpc runs an in-process JSON-RPC wallet for tests. It serves
// eth_accounts, eth_sendTransaction and personal_sign from a set of local
// keys over go-ethereum's rpc package, without any network listener.
package walletrpc

import (
	"crypto/ecdsa"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/celo-org/minipay-sdk-go/pkg/blockchain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// Tx is one transaction received through eth_sendTransaction.
type Tx struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// Wallet holds the keys served by the RPC endpoint and records what it was
// asked to do.
type Wallet struct {
	mu       sync.Mutex
	accounts []common.Address
	keys     map[common.Address]*ecdsa.PrivateKey
	sent     []Tx
	methods  []string
	failures map[string]error
	onSend   func(common.Hash, Tx)
}

// New returns a wallet exposing the accounts of keys, in order. With no keys
// the account list is empty.
func New(keys ...*ecdsa.PrivateKey) *Wallet {
	w := &Wallet{
		keys:     make(map[common.Address]*ecdsa.PrivateKey),
		failures: make(map[string]error),
	}
	for _, k := range keys {
		addr := crypto.PubkeyToAddress(k.PublicKey)
		w.accounts = append(w.accounts, addr)
		w.keys[addr] = k
	}
	return w
}

// Fail makes method (e.g. "eth_accounts") return err until cleared with a nil err.
func (w *Wallet) Fail(method string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil {
		delete(w.failures, method)
		return
	}
	w.failures[method] = err
}

// OnSend registers fn to be called with every accepted transaction.
func (w *Wallet) OnSend(fn func(common.Hash, Tx)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSend = fn
}

// Sent returns the transactions accepted so far.
func (w *Wallet) Sent() []Tx {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Tx(nil), w.sent...)
}

// Methods returns the RPC methods served so far, in call order.
func (w *Wallet) Methods() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.methods...)
}

func (w *Wallet) enter(method string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.methods = append(w.methods, method)
	return w.failures[method]
}

type ethAPI struct{ w *Wallet }

// Accounts serves eth_accounts.
func (a *ethAPI) Accounts() ([]common.Address, error) {
	if err := a.w.enter("eth_accounts"); err != nil {
		return nil, err
	}
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	return append([]common.Address{}, a.w.accounts...), nil
}

// SendTransaction serves eth_sendTransaction. The returned hash is derived
// from the sender and its send count.
func (a *ethAPI) SendTransaction(tx Tx) (common.Hash, error) {
	if err := a.w.enter("eth_sendTransaction"); err != nil {
		return common.Hash{}, err
	}
	a.w.mu.Lock()
	if _, ok := a.w.keys[tx.From]; !ok {
		a.w.mu.Unlock()
		return common.Hash{}, fmt.Errorf("unknown account %s", tx.From.Hex())
	}
	a.w.sent = append(a.w.sent, tx)
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(len(a.w.sent)))
	hash := crypto.Keccak256Hash(tx.From.Bytes(), tx.To.Bytes(), tx.Data, nonce[:])
	onSend := a.w.onSend
	a.w.mu.Unlock()

	if onSend != nil {
		onSend(hash, tx)
	}
	return hash, nil
}

type personalAPI struct{ w *Wallet }

// Sign serves personal_sign.
func (a *personalAPI) Sign(data hexutil.Bytes, account common.Address) (hexutil.Bytes, error) {
	if err := a.w.enter("personal_sign"); err != nil {
		return nil, err
	}
	a.w.mu.Lock()
	key, ok := a.w.keys[account]
	a.w.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown account %s", account.Hex())
	}
	sig, err := blockchain.SignText(data, key)
	if err != nil {
		return nil, err
	}
	return hexutil.Decode(sig)
}

// Start registers w on a new RPC server and returns an in-process client
// connected to it. Callers close both when done.
func Start(w *Wallet) (*rpc.Server, *rpc.Client, error) {
	if w == nil {
		return nil, nil, errors.New("wallet is required")
	}
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &ethAPI{w: w}); err != nil {
		srv.Stop()
		return nil, nil, err
	}
	if err := srv.RegisterName("personal", &personalAPI{w: w}); err != nil {
		srv.Stop()
		return nil, nil, err
	}
	return srv, rpc.DialInProc(srv), nil
}
