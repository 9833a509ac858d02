// Package model defines the request and metadata types exchanged by the SDK.
//
// TransferRequest and MintRequest describe the two write operations before
// they are encoded and handed to the wallet. TokenMetadata is the ERC-721
// metadata document behind a token URI, as returned by the NFT contract's
// tokenURI and resolved through the storage package:
//
//	content, _ := storage.ReadFile(ctx, uri)
//	md := model.DecodeTokenMetadata(uri, content)
//	fmt.Println(md.Name, md.Image)
//
// Token URIs do not always point to JSON. The default MiniPay mint URI is a
// plain image; DecodeTokenMetadata then reports the URI itself as the image.
package model
