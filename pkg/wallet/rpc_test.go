package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/celo-org/minipay-sdk-go/internal/testutil/walletrpc"
	"github.com/celo-org/minipay-sdk-go/pkg/blockchain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func startWallet(t *testing.T, w *walletrpc.Wallet) *RPCProvider {
	t.Helper()
	srv, client, err := walletrpc.Start(w)
	if err != nil {
		t.Fatalf("start wallet: %v", err)
	}
	p := NewRPCProvider(client)
	t.Cleanup(func() {
		p.Close()
		srv.Stop()
	})
	return p
}

func TestRPCProviderAccounts(t *testing.T) {
	k1, _ := crypto.GenerateKey()
	k2, _ := crypto.GenerateKey()
	p := startWallet(t, walletrpc.New(k1, k2))

	accounts, err := p.Accounts(context.Background())
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0] != crypto.PubkeyToAddress(k1.PublicKey) {
		t.Fatalf("unexpected first account %s", accounts[0].Hex())
	}
}

func TestRPCProviderEmptyAccounts(t *testing.T) {
	p := startWallet(t, walletrpc.New())

	accounts, err := p.Accounts(context.Background())
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected no accounts, got %v", accounts)
	}

	_, _, err = ActiveAccount(context.Background(), Static(p))
	if !errors.Is(err, ErrNoAccounts) {
		t.Fatalf("expected ErrNoAccounts, got %v", err)
	}
}

func TestRPCProviderSendTransaction(t *testing.T) {
	key, _ := crypto.GenerateKey()
	w := walletrpc.New(key)
	p := startWallet(t, w)

	from := crypto.PubkeyToAddress(key.PublicKey)
	to := common.HexToAddress("0x874069Fa1Eb16D44d622F2e0Ca25eeA172369bC1")
	data := []byte{0xa9, 0x05, 0x9c, 0xbb, 0x01}

	hash, err := p.SendTransaction(context.Background(), from, to, data)
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if hash == (common.Hash{}) {
		t.Fatal("expected non-zero hash")
	}

	sent := w.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 sent tx, got %d", len(sent))
	}
	if sent[0].From != from || sent[0].To != to || string(sent[0].Data) != string(data) {
		t.Fatalf("unexpected tx: %+v", sent[0])
	}
}

func TestRPCProviderSignMessage(t *testing.T) {
	key, _ := crypto.GenerateKey()
	p := startWallet(t, walletrpc.New(key))
	account := crypto.PubkeyToAddress(key.PublicKey)
	msg := []byte("Hello from Celo Composer MiniPay Template!")

	sig, err := p.SignMessage(context.Background(), account, msg)
	if err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	signer, err := blockchain.RecoverText(msg, sig)
	if err != nil {
		t.Fatalf("RecoverText: %v", err)
	}
	if signer != account {
		t.Fatalf("recovered %s, want %s", signer.Hex(), account.Hex())
	}
}

func TestRPCProviderPropagatesWalletErrors(t *testing.T) {
	key, _ := crypto.GenerateKey()
	w := walletrpc.New(key)
	w.Fail("eth_accounts", errors.New("user rejected the request"))
	p := startWallet(t, w)

	_, err := p.Accounts(context.Background())
	if err == nil || !strings.Contains(err.Error(), "user rejected") {
		t.Fatalf("expected wallet error, got %v", err)
	}
}

func TestDialRPCInvalidEndpoint(t *testing.T) {
	if _, err := DialRPC(context.Background(), "unsupported://wallet"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestRPCProviderCloseNil(t *testing.T) {
	var p *RPCProvider
	p.Close()
}
