package models

import (
	"time"

	"github.com/TomasB/geolookup/internal/raw"
)

// ASN is the response of the GeoLite2 ASN database.
type ASN struct {
	lookupAddress

	// AutonomousSystemNumber is the autonomous system number of the address.
	AutonomousSystemNumber *uint
	// AutonomousSystemOrganization is the organization registered for the number.
	AutonomousSystemOrganization *string
}

// NewASN builds an ASN response from a raw record.
func NewASN(m map[string]any, opts ...Option) (*ASN, error) {
	a, err := newLookupAddress(m, newOptions(m, opts))
	if err != nil {
		return nil, err
	}
	return &ASN{
		lookupAddress:                a,
		AutonomousSystemNumber:       raw.Uint(m, "autonomous_system_number"),
		AutonomousSystemOrganization: raw.String(m, "autonomous_system_organization"),
	}, nil
}

func (a *ASN) fill(d raw.Dict) {
	d.Uint("autonomous_system_number", a.AutonomousSystemNumber)
	d.String("autonomous_system_organization", a.AutonomousSystemOrganization)
	a.lookupAddress.fill(d)
}

// ToMap implements Model.
func (a *ASN) ToMap() map[string]any {
	d := raw.Dict{}
	a.fill(d)
	return d
}

// Equal reports whether both responses have the same plain-data projection.
func (a *ASN) Equal(o *ASN) bool {
	if a == nil || o == nil {
		return a == o
	}
	return raw.Equal(a.ToMap(), o.ToMap())
}

func (a *ASN) String() string { return describe("ASN", a.ToMap()) }

// ISP is the response of the GeoIP2 ISP database.
type ISP struct {
	ASN

	// ISP is the name of the internet service provider.
	ISP *string
	// MobileCountryCode is the mobile country code (MCC) of the carrier.
	MobileCountryCode *string
	// MobileNetworkCode is the mobile network code (MNC) of the carrier.
	MobileNetworkCode *string
	// Organization is the name of the organization the address is assigned to.
	Organization *string
}

// NewISP builds an ISP response from a raw record.
func NewISP(m map[string]any, opts ...Option) (*ISP, error) {
	a, err := NewASN(m, opts...)
	if err != nil {
		return nil, err
	}
	return &ISP{
		ASN:               *a,
		ISP:               raw.String(m, "isp"),
		MobileCountryCode: raw.String(m, "mobile_country_code"),
		MobileNetworkCode: raw.String(m, "mobile_network_code"),
		Organization:      raw.String(m, "organization"),
	}, nil
}

// ToMap implements Model.
func (i *ISP) ToMap() map[string]any {
	d := raw.Dict{}
	i.ASN.fill(d)
	d.String("isp", i.ISP)
	d.String("mobile_country_code", i.MobileCountryCode)
	d.String("mobile_network_code", i.MobileNetworkCode)
	d.String("organization", i.Organization)
	return d
}

// Equal reports whether both responses have the same plain-data projection.
func (i *ISP) Equal(o *ISP) bool {
	if i == nil || o == nil {
		return i == o
	}
	return raw.Equal(i.ToMap(), o.ToMap())
}

func (i *ISP) String() string { return describe("ISP", i.ToMap()) }

// ConnectionType is the response of the GeoIP2 Connection-Type database.
type ConnectionType struct {
	lookupAddress

	// ConnectionType is one of "Dialup", "Cable/DSL", "Corporate", "Cellular" or
	// "Satellite". Other values may be added in the future.
	ConnectionType *string
}

// NewConnectionType builds a ConnectionType response from a raw record.
func NewConnectionType(m map[string]any, opts ...Option) (*ConnectionType, error) {
	a, err := newLookupAddress(m, newOptions(m, opts))
	if err != nil {
		return nil, err
	}
	return &ConnectionType{lookupAddress: a, ConnectionType: raw.String(m, "connection_type")}, nil
}

// ToMap implements Model.
func (c *ConnectionType) ToMap() map[string]any {
	d := raw.Dict{}
	d.String("connection_type", c.ConnectionType)
	c.lookupAddress.fill(d)
	return d
}

// Equal reports whether both responses have the same plain-data projection.
func (c *ConnectionType) Equal(o *ConnectionType) bool {
	if c == nil || o == nil {
		return c == o
	}
	return raw.Equal(c.ToMap(), o.ToMap())
}

func (c *ConnectionType) String() string { return describe("ConnectionType", c.ToMap()) }

// Domain is the response of the GeoIP2 Domain database.
type Domain struct {
	lookupAddress

	// Domain is the second level domain associated with the address, e.g. "example.com".
	Domain *string
}

// NewDomain builds a Domain response from a raw record.
func NewDomain(m map[string]any, opts ...Option) (*Domain, error) {
	a, err := newLookupAddress(m, newOptions(m, opts))
	if err != nil {
		return nil, err
	}
	return &Domain{lookupAddress: a, Domain: raw.String(m, "domain")}, nil
}

// ToMap implements Model.
func (d *Domain) ToMap() map[string]any {
	out := raw.Dict{}
	out.String("domain", d.Domain)
	d.lookupAddress.fill(out)
	return out
}

// Equal reports whether both responses have the same plain-data projection.
func (d *Domain) Equal(o *Domain) bool {
	if d == nil || o == nil {
		return d == o
	}
	return raw.Equal(d.ToMap(), o.ToMap())
}

func (d *Domain) String() string { return describe("Domain", d.ToMap()) }

// AnonymousIP is the response of the GeoIP2 Anonymous IP database.
type AnonymousIP struct {
	lookupAddress

	IsAnonymous        bool
	IsAnonymousVPN     bool
	IsHostingProvider  bool
	IsPublicProxy      bool
	IsResidentialProxy bool
	IsTorExitNode      bool
}

// NewAnonymousIP builds an AnonymousIP response from a raw record.
func NewAnonymousIP(m map[string]any, opts ...Option) (*AnonymousIP, error) {
	a, err := newLookupAddress(m, newOptions(m, opts))
	if err != nil {
		return nil, err
	}
	return &AnonymousIP{
		lookupAddress:      a,
		IsAnonymous:        raw.Bool(m, "is_anonymous"),
		IsAnonymousVPN:     raw.Bool(m, "is_anonymous_vpn"),
		IsHostingProvider:  raw.Bool(m, "is_hosting_provider"),
		IsPublicProxy:      raw.Bool(m, "is_public_proxy"),
		IsResidentialProxy: raw.Bool(m, "is_residential_proxy"),
		IsTorExitNode:      raw.Bool(m, "is_tor_exit_node"),
	}, nil
}

func (a *AnonymousIP) fill(d raw.Dict) {
	d.Bool("is_anonymous", a.IsAnonymous)
	d.Bool("is_anonymous_vpn", a.IsAnonymousVPN)
	d.Bool("is_hosting_provider", a.IsHostingProvider)
	d.Bool("is_public_proxy", a.IsPublicProxy)
	d.Bool("is_residential_proxy", a.IsResidentialProxy)
	d.Bool("is_tor_exit_node", a.IsTorExitNode)
	a.lookupAddress.fill(d)
}

// ToMap implements Model.
func (a *AnonymousIP) ToMap() map[string]any {
	d := raw.Dict{}
	a.fill(d)
	return d
}

// Equal reports whether both responses have the same plain-data projection.
func (a *AnonymousIP) Equal(o *AnonymousIP) bool {
	if a == nil || o == nil {
		return a == o
	}
	return raw.Equal(a.ToMap(), o.ToMap())
}

func (a *AnonymousIP) String() string { return describe("AnonymousIP", a.ToMap()) }

// AnonymousPlus is the response of the GeoIP Anonymous Plus database.
type AnonymousPlus struct {
	AnonymousIP

	// AnonymizerConfidence is a score from 1 to 99 of how confident MaxMind is that the
	// network is actively used for anonymizing traffic.
	AnonymizerConfidence *int
	// NetworkLastSeen is the last day the network was sighted in the analysis.
	NetworkLastSeen *time.Time
	// ProviderName is the name of the VPN provider associated with the network.
	ProviderName *string
}

// NewAnonymousPlus builds an AnonymousPlus response from a raw record.
func NewAnonymousPlus(m map[string]any, opts ...Option) (*AnonymousPlus, error) {
	a, err := NewAnonymousIP(m, opts...)
	if err != nil {
		return nil, err
	}
	lastSeen, err := raw.Date(m, "network_last_seen")
	if err != nil {
		return nil, err
	}
	return &AnonymousPlus{
		AnonymousIP:          *a,
		AnonymizerConfidence: raw.Int(m, "anonymizer_confidence"),
		NetworkLastSeen:      lastSeen,
		ProviderName:         raw.String(m, "provider_name"),
	}, nil
}

// ToMap implements Model.
func (a *AnonymousPlus) ToMap() map[string]any {
	d := raw.Dict{}
	a.AnonymousIP.fill(d)
	d.Int("anonymizer_confidence", a.AnonymizerConfidence)
	d.Date("network_last_seen", a.NetworkLastSeen)
	d.String("provider_name", a.ProviderName)
	return d
}

// Equal reports whether both responses have the same plain-data projection.
func (a *AnonymousPlus) Equal(o *AnonymousPlus) bool {
	if a == nil || o == nil {
		return a == o
	}
	return raw.Equal(a.ToMap(), o.ToMap())
}

func (a *AnonymousPlus) String() string { return describe("AnonymousPlus", a.ToMap()) }
