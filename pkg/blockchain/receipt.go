package blockchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// WaitForTransaction polls for the receipt of txHash every Timeouts.ReceiptPoll
// until it exists, ctx is done, or the lookup fails. Timeouts.ReceiptWait, when
// non-zero, bounds the whole wait.
//
// The receipt is returned as reported by the node; a reverted transaction is
// not turned into an error.
func (evm *EVMClient) WaitForTransaction(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := withTimeout(ctx, evm.Timeouts.ReceiptWait)
	defer cancel()

	poll := evm.Timeouts.ReceiptPoll
	if poll <= 0 {
		poll = time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		receipt, err := evm.Client.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				zap.L().Warn("transaction reverted", zap.String("tx", txHash.Hex()))
			}
			zap.L().Debug("transaction included",
				zap.String("tx", txHash.Hex()),
				zap.Stringer("block", receipt.BlockNumber))
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt error: %w", err)
		}
	}
}
