package raw

import (
	"net/netip"
	"sync"
)

// LazyPrefix returns a function computing the network of addr with the given prefix length
// on first call and returning the cached value afterwards. It is safe for concurrent use.
// A negative prefixLen or an invalid addr yields an invalid prefix.
func LazyPrefix(addr netip.Addr, prefixLen int) func() netip.Prefix {
	if !addr.IsValid() || prefixLen < 0 {
		return func() netip.Prefix { return netip.Prefix{} }
	}
	return sync.OnceValue(func() netip.Prefix {
		prefix, err := addr.Prefix(prefixLen)
		if err != nil {
			return netip.Prefix{}
		}
		return prefix
	})
}
