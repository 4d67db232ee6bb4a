package records

import (
	"net/netip"

	"github.com/TomasB/geolookup/internal/raw"
	"github.com/TomasB/geolookup/pkg/geoip"
)

// Traits are the properties of the IP address itself. IPAddress is set on every response.
type Traits struct {
	AutonomousSystemNumber       *uint
	AutonomousSystemOrganization *string
	// ConnectionType is one of Dialup, Cable/DSL, Corporate, Cellular, Satellite.
	ConnectionType *string
	// Domain is the second level domain, e.g. "example.co.uk".
	Domain *string
	// IPAddress is the address the data is for. For a "me" web service lookup it is the
	// externally routable address of the caller.
	IPAddress netip.Addr
	// IPRiskSnapshot ranges from 0.01 to 99, higher is riskier. Insights only.
	IPRiskSnapshot *float64
	// Deprecated: use the Anonymizer record of Insights.
	IsAnonymous bool
	// Deprecated: use the Anonymous IP database.
	IsAnonymousProxy bool
	// Deprecated: use the Anonymizer record of Insights.
	IsAnonymousVPN    bool
	IsAnycast         bool
	IsHostingProvider bool
	// IsLegitimateProxy is set for proxies like corporate VPNs. Enterprise only.
	IsLegitimateProxy  bool
	IsPublicProxy      bool
	IsResidentialProxy bool
	// Deprecated: very few satellite providers still serve multiple countries.
	IsSatelliteProvider bool
	IsTorExitNode       bool
	ISP                 *string
	MobileCountryCode   *string
	MobileNetworkCode   *string
	Organization        *string
	// StaticIPScore ranges from 0 to 99.99, higher means a more static association.
	StaticIPScore *float64
	// UserCount is the estimated number of users sharing the address (the /64 for IPv6).
	UserCount *int
	UserType  *string

	network func() netip.Prefix
}

// NewTraits builds the traits record. A non-empty ipAddress takes precedence over the
// "ip_address" key of m. A network is derived from the address and prefixLen on first use;
// pass a negative prefixLen when it is unknown. A "network" key in m, as sent by the web
// service, is used as is.
func NewTraits(m map[string]any, ipAddress string, prefixLen int) (Traits, error) {
	if ipAddress == "" {
		if s := raw.String(m, "ip_address"); s != nil {
			ipAddress = *s
		}
	}

	var addr netip.Addr
	if ipAddress != "" {
		var err error
		if addr, err = geoip.ParseAddress(ipAddress); err != nil {
			return Traits{}, err
		}
	}

	network := raw.LazyPrefix(addr, prefixLen)
	if s := raw.String(m, "network"); s != nil {
		prefix, err := geoip.ParseNetwork(*s)
		if err != nil {
			return Traits{}, err
		}
		network = func() netip.Prefix { return prefix }
	}

	return Traits{
		AutonomousSystemNumber:       raw.Uint(m, "autonomous_system_number"),
		AutonomousSystemOrganization: raw.String(m, "autonomous_system_organization"),
		ConnectionType:               raw.String(m, "connection_type"),
		Domain:                       raw.String(m, "domain"),
		IPAddress:                    addr,
		IPRiskSnapshot:               raw.Float(m, "ip_risk_snapshot"),
		IsAnonymous:                  raw.Bool(m, "is_anonymous"),
		IsAnonymousProxy:             raw.Bool(m, "is_anonymous_proxy"),
		IsAnonymousVPN:               raw.Bool(m, "is_anonymous_vpn"),
		IsAnycast:                    raw.Bool(m, "is_anycast"),
		IsHostingProvider:            raw.Bool(m, "is_hosting_provider"),
		IsLegitimateProxy:            raw.Bool(m, "is_legitimate_proxy"),
		IsPublicProxy:                raw.Bool(m, "is_public_proxy"),
		IsResidentialProxy:           raw.Bool(m, "is_residential_proxy"),
		IsSatelliteProvider:          raw.Bool(m, "is_satellite_provider"),
		IsTorExitNode:                raw.Bool(m, "is_tor_exit_node"),
		ISP:                          raw.String(m, "isp"),
		MobileCountryCode:            raw.String(m, "mobile_country_code"),
		MobileNetworkCode:            raw.String(m, "mobile_network_code"),
		Organization:                 raw.String(m, "organization"),
		StaticIPScore:                raw.Float(m, "static_ip_score"),
		UserCount:                    raw.Int(m, "user_count"),
		UserType:                     raw.String(m, "user_type"),
		network:                      network,
	}, nil
}

// Network returns the largest network in which every field besides IPAddress has the same
// value. The prefix is invalid when the prefix length is unknown, which is always the case
// for single-address web service lookups.
func (t Traits) Network() netip.Prefix {
	if t.network == nil {
		return netip.Prefix{}
	}
	return t.network()
}

func (t Traits) ToMap() map[string]any {
	d := raw.Dict{}
	d.Uint("autonomous_system_number", t.AutonomousSystemNumber)
	d.String("autonomous_system_organization", t.AutonomousSystemOrganization)
	d.String("connection_type", t.ConnectionType)
	d.String("domain", t.Domain)
	d.Addr("ip_address", t.IPAddress)
	d.Float("ip_risk_snapshot", t.IPRiskSnapshot)
	d.Bool("is_anonymous", t.IsAnonymous)
	d.Bool("is_anonymous_proxy", t.IsAnonymousProxy)
	d.Bool("is_anonymous_vpn", t.IsAnonymousVPN)
	d.Bool("is_anycast", t.IsAnycast)
	d.Bool("is_hosting_provider", t.IsHostingProvider)
	d.Bool("is_legitimate_proxy", t.IsLegitimateProxy)
	d.Bool("is_public_proxy", t.IsPublicProxy)
	d.Bool("is_residential_proxy", t.IsResidentialProxy)
	d.Bool("is_satellite_provider", t.IsSatelliteProvider)
	d.Bool("is_tor_exit_node", t.IsTorExitNode)
	d.String("isp", t.ISP)
	d.String("mobile_country_code", t.MobileCountryCode)
	d.String("mobile_network_code", t.MobileNetworkCode)
	d.Prefix("network", t.Network())
	d.String("organization", t.Organization)
	d.Float("static_ip_score", t.StaticIPScore)
	d.Int("user_count", t.UserCount)
	d.String("user_type", t.UserType)
	return d
}

func (t Traits) Equal(o Traits) bool { return raw.Equal(t.ToMap(), o.ToMap()) }
