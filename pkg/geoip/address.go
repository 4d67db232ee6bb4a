package geoip

import (
	"fmt"
	"net/netip"
)

// ParseAddress parses an IPv4 or IPv6 address. Zoned addresses are rejected.
func ParseAddress(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("%w: %q does not appear to be an IPv4 or IPv6 address", ErrInvalidAddress, s)
	}
	return addr, nil
}

// ParseNetwork parses a CIDR string and masks it to its network address.
func ParseNetwork(s string) (netip.Prefix, error) {
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %q does not appear to be an IPv4 or IPv6 network", ErrInvalidAddress, s)
	}
	return prefix.Masked(), nil
}
