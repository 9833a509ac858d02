package blockchain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidAmount is returned when a token amount cannot be converted to
// minimal units.
var ErrInvalidAmount = errors.New("invalid amount")

// GetAddressFromPrivateKeyECDSA derives the account address from the given
// ECDSA private key. It returns nil if the key is nil or its public part cannot
// be asserted to *ecdsa.PublicKey.
func GetAddressFromPrivateKeyECDSA(privateKeyECDSA *ecdsa.PrivateKey) *common.Address {
	if privateKeyECDSA == nil {
		return nil
	}
	publicKey := privateKeyECDSA.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil
	}
	addr := crypto.PubkeyToAddress(*publicKeyECDSA)
	return &addr
}

// ParsePrivateKeyECDSA parses a hex-encoded ECDSA private key (with or without
// 0x prefix) and returns the corresponding address together with the key.
func ParsePrivateKeyECDSA(privateKey string) (common.Address, *ecdsa.PrivateKey, error) {
	privateKeyECDSA, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
	if err != nil {
		return common.Address{}, nil, err
	}

	address := GetAddressFromPrivateKeyECDSA(privateKeyECDSA)
	if address == nil {
		return common.Address{}, nil, errors.New("failed to get public key")
	}
	return *address, privateKeyECDSA, nil
}

// ToMinimalUnit converts a decimal token amount (e.g. "1.5") into the token's
// smallest unit using the given precision: amount * 10^decimals.
// Digits beyond the precision are rounded half away from zero.
// Negative or malformed amounts return ErrInvalidAmount.
func ToMinimalUnit(amount string, decimals int32) (*big.Int, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		zap.L().Error("Failed to convert string to decimal", zap.String("amount", amount), zap.Error(err))
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAmount, amount, err)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("%w %q: negative", ErrInvalidAmount, amount)
	}
	return value.Shift(decimals).Round(0).BigInt(), nil
}

// FromMinimalUnit converts an amount in minimal units back to whole tokens.
// A nil value is treated as zero.
func FromMinimalUnit(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimals)
}

// SignText produces a personal_sign (EIP-191) signature over message and
// returns it 0x-hex encoded with v in {27, 28}, as wallets do.
func SignText(message []byte, privateKeyECDSA *ecdsa.PrivateKey) (string, error) {
	if privateKeyECDSA == nil {
		return "", errors.New("private key is required for signing")
	}
	sig, err := crypto.Sign(accounts.TextHash(message), privateKeyECDSA)
	if err != nil {
		zap.L().Error("Failed to sign message", zap.Error(err))
		return "", fmt.Errorf("signing message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverText returns the address that produced signature over message with
// personal_sign. Both v encodings (0/1 and 27/28) are accepted.
func RecoverText(message []byte, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("decoding signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
