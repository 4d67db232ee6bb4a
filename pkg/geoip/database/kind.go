package database

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned by ParseKind and Lookup for an unsupported lookup kind.
var ErrUnknownKind = errors.New("unknown lookup kind")

// Kind names a lookup method of the Reader.
type Kind string

const (
	KindCountry        Kind = "country"
	KindCity           Kind = "city"
	KindAnonymousIP    Kind = "anonymous_ip"
	KindAnonymousPlus  Kind = "anonymous_plus"
	KindASN            Kind = "asn"
	KindConnectionType Kind = "connection_type"
	KindDomain         Kind = "domain"
	KindEnterprise     Kind = "enterprise"
	KindISP            Kind = "isp"
)

// Kinds lists every supported lookup kind.
var Kinds = []Kind{
	KindCountry,
	KindCity,
	KindAnonymousIP,
	KindAnonymousPlus,
	KindASN,
	KindConnectionType,
	KindDomain,
	KindEnterprise,
	KindISP,
}

// databaseTypes maps each kind to the substring its database type must contain.
var databaseTypes = map[Kind]string{
	KindCountry:        "Country",
	KindCity:           "City",
	KindAnonymousIP:    "GeoIP2-Anonymous-IP",
	KindAnonymousPlus:  "GeoIP-Anonymous-Plus",
	KindASN:            "GeoLite2-ASN",
	KindConnectionType: "GeoIP2-Connection-Type",
	KindDomain:         "GeoIP2-Domain",
	KindEnterprise:     "Enterprise",
	KindISP:            "GeoIP2-ISP",
}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := databaseTypes[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }
