// Package storage reads the content behind NFT token URIs.
//
// Token URIs returned by the MiniPay NFT contract may point to IPFS,
// Filecoin (through the Lighthouse gateway) or a plain web server. Client
// resolves all three:
//
//	client := storage.NewStorage(
//		"",                                        // optional Kubo RPC API, e.g. http://localhost:5001
//		"https://gateway.lighthouse.storage/ipfs/", // HTTP gateway
//		60*time.Second,
//	)
//
//	data, err := client.ReadFile(ctx, "ipfs://bafkrei.../1.json")
//
// # IPFS
//
// With a Kubo endpoint configured, ipfs:// URIs and bare CIDs are read with
// `ipfs cat`. The root CID is parsed with go-cid; raw-codec CIDs are verified
// by re-hashing the returned bytes, and a mismatch yields ErrContentMismatch.
// Without Kubo the same paths are requested from the Lighthouse gateway,
// which serves any IPFS content.
//
// # Lighthouse
//
// filecoin:// URIs always go through the gateway. The path after the CID is
// preserved, so directory-style URIs (<cid>/1.json) work on both backends.
//
// # HTTP
//
// http:// and https:// URIs are fetched directly. Non-2xx answers are errors.
//
// All reads honor ctx and Client.Timeout, and are capped at 16 MiB.
package storage
