// Package models contains the top-level responses of the GeoIP2 databases and web service,
// one type per lookup kind, built from a raw record and a locale preference.
package models

import (
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/TomasB/geolookup/internal/raw"
	"github.com/TomasB/geolookup/pkg/geoip"
	"github.com/TomasB/geolookup/pkg/geoip/records"
)

// Model is implemented by every response type.
type Model interface {
	// ToMap returns the plain-data projection of the model: nil values, false flags and
	// empty records are omitted, addresses and networks are strings, dates are YYYY-MM-DD.
	ToMap() map[string]any
}

// Option configures model construction.
type Option func(*options)

type options struct {
	locales   []string
	ipAddress string
	prefixLen int
}

func newOptions(m map[string]any, opts []Option) options {
	o := options{prefixLen: -1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.prefixLen < 0 {
		if n := raw.Int(m, "prefix_len"); n != nil {
			o.prefixLen = *n
		}
	}
	o.locales = records.Locales(o.locales)
	return o
}

// WithLocales sets the locale preference used by every name-bearing record.
// The default is ["en"].
func WithLocales(locales []string) Option {
	return func(o *options) { o.locales = locales }
}

// WithIPAddress sets the address the record was looked up for.
func WithIPAddress(ip string) Option {
	return func(o *options) { o.ipAddress = ip }
}

// WithPrefixLen sets the prefix length of the network that matched the lookup.
func WithPrefixLen(n int) Option {
	return func(o *options) { o.prefixLen = n }
}

func describe(name string, m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("models.%s(%v)", name, m)
	}
	return fmt.Sprintf("models.%s(%s)", name, b)
}

// lookupAddress is the address part shared by the flat models.
type lookupAddress struct {
	// IPAddress is the address used in the lookup.
	IPAddress netip.Addr

	network func() netip.Prefix
}

func newLookupAddress(m map[string]any, o options) (lookupAddress, error) {
	ip := o.ipAddress
	if ip == "" {
		if s := raw.String(m, "ip_address"); s != nil {
			ip = *s
		}
	}
	var addr netip.Addr
	if ip != "" {
		var err error
		if addr, err = geoip.ParseAddress(ip); err != nil {
			return lookupAddress{}, err
		}
	}
	network := raw.LazyPrefix(addr, o.prefixLen)
	if s := raw.String(m, "network"); s != nil {
		prefix, err := geoip.ParseNetwork(*s)
		if err != nil {
			return lookupAddress{}, err
		}
		network = func() netip.Prefix { return prefix }
	}
	return lookupAddress{IPAddress: addr, network: network}, nil
}

// Network returns the largest network in which every field besides IPAddress has the same
// value, computed on first use. It is invalid when the prefix length is unknown.
func (a lookupAddress) Network() netip.Prefix {
	if a.network == nil {
		return netip.Prefix{}
	}
	return a.network()
}

func (a lookupAddress) fill(d raw.Dict) {
	d.Addr("ip_address", a.IPAddress)
	d.Prefix("network", a.Network())
}
