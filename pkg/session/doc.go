// Package session holds the wallet state shared by the SDK: the active
// address and the membership flags derived from the MiniPay NFT balance.
//
// A Session is refreshed once when the SDK starts and on demand afterwards:
//
//	s := session.New(detect, evm)
//	<-s.Start(ctx)
//	if addr, ok := s.Address(); ok && s.IsMember() {
//		fmt.Println(addr.Hex(), "holds the NFT")
//	}
//
// Refresh and Start never return errors; failures are only logged. Use
// CheckMembership when the caller needs to see them.
package session
