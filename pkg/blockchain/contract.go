package blockchain

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// StableTokenABI is the ERC-20 fragment used for the cUSD stable token
// (balanceOf, decimals, transfer).
//
//go:embed abi/stable_token.json
var StableTokenABI string

// MiniPayNFTABI is the fragment of the MiniPay NFT contract used by the SDK
// (balanceOf, getNFTsByAddress, safeMint, tokenURI).
//
//go:embed abi/minipay_nft.json
var MiniPayNFTABI string

// Contract is a contract handle: an address, its parsed ABI and the caller
// used for read-only calls.
type Contract struct {
	Address common.Address
	ABI     abi.ABI
	caller  ethereum.ContractCaller
}

// NewContract parses rawABI and binds it to address for reads through caller.
func NewContract(address common.Address, rawABI string, caller ethereum.ContractCaller) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("parsing ABI: %w", err)
	}
	return &Contract{Address: address, ABI: parsed, caller: caller}, nil
}

// Call performs an eth_call of method against the latest block and returns
// the unpacked outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	callData, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.Address,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}

	results, err := c.ABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	return results, nil
}

// Pack returns the calldata for a state-changing call of method.
func (c *Contract) Pack(method string, args ...any) ([]byte, error) {
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}
	return data, nil
}
