package model

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransferRequest describes a stable-token transfer from the active account.
// Amount is the decimal amount as given by the caller; Value is the same
// amount in the token's minimal units.
type TransferRequest struct {
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount string         `json:"amount"`
	Value  *big.Int       `json:"value"`
}

// MintRequest describes a MiniPay NFT mint. The recipient is always the
// active account.
type MintRequest struct {
	To  common.Address `json:"to"`
	URI string         `json:"uri"`
}

// TokenMetadata is the ERC-721 metadata document a token URI points to.
// Fields that are absent in the document are left empty.
type TokenMetadata struct {
	// URI is the token URI the metadata was read from.
	URI         string      `json:"-"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image,omitempty"`
	ExternalURL string      `json:"external_url,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

// Attribute is a single trait of an NFT. Value may be a string or a number.
type Attribute struct {
	TraitType   string `json:"trait_type,omitempty"`
	Value       any    `json:"value"`
	DisplayType string `json:"display_type,omitempty"`
}

// DecodeTokenMetadata interprets content read from uri. A JSON object is
// decoded as metadata; anything else (typically image bytes, as with the
// default MiniPay mint URI) yields metadata whose Image is uri itself.
func DecodeTokenMetadata(uri string, content []byte) *TokenMetadata {
	md := &TokenMetadata{URI: uri}
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, md) != nil {
		return &TokenMetadata{URI: uri, Image: uri}
	}
	md.URI = uri
	return md
}
